//go:build !raylib

package gui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDisplayUnavailable(t *testing.T) {
	d, err := NewDisplay()
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrUnavailable)
}
