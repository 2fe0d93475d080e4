//go:build !raylib

package gui

func NewDisplay() (Display, error) { return nil, ErrUnavailable }
