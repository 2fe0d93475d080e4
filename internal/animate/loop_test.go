package animate

import (
	"context"
	"testing"
	"time"

	"github.com/san-kum/particlefield/internal/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startLoop(t *testing.T, l *Loop) (stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	return func() error {
		cancel()
		return <-errCh
	}
}

func TestLoopServesFramesOncePerTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := make(chan time.Time)
	l := NewLoop(100, 100, field.Discard, WithClock(clock))
	stop := startLoop(t, l)

	fired := 0
	var request FrameFunc
	request = func(time.Time) {
		fired++
		l.RequestFrame(request)
	}
	require.NoError(t, l.Do(func() { l.RequestFrame(request) }))

	for i := 0; i < 3; i++ {
		clock <- time.Now()
	}
	require.NoError(t, l.Do(func() {}))
	assert.Equal(t, 3, fired)

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestLoopCancelFrame(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := make(chan time.Time)
	l := NewLoop(100, 100, field.Discard, WithClock(clock))
	stop := startLoop(t, l)

	fired := false
	require.NoError(t, l.Do(func() {
		id := l.RequestFrame(func(time.Time) { fired = true })
		l.CancelFrame(id)
	}))
	clock <- time.Now()
	require.NoError(t, l.Do(func() {}))
	assert.False(t, fired)

	require.Error(t, stop())
}

func TestLoopAnimatorLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := make(chan time.Time)
	l := NewLoop(1920, 1080, field.Discard, WithClock(clock))
	stop := startLoop(t, l)

	frames := 0
	a := New(l, field.New(field.NewRand(7)), WithObserver(ObserverFunc(func(field.FrameStats) {
		frames++
	})))
	var mounted bool
	require.NoError(t, l.Do(func() { mounted = a.Mount() }))
	require.True(t, mounted)

	clock <- time.Now()
	clock <- time.Now()
	require.NoError(t, l.Resize(400, 800))

	var points, listeners, pending int
	require.NoError(t, l.Do(func() {
		points = len(a.Field().Points)
		a.Unmount()
		listeners = l.Listeners()
		pending = l.Pending()
	}))
	assert.Equal(t, 12, points)
	assert.Zero(t, listeners)
	assert.Zero(t, pending)

	before := frames
	clock <- time.Now()
	require.NoError(t, l.Do(func() {}))
	assert.Equal(t, before, frames)
	assert.Equal(t, 3, frames)

	l.Close()
	assert.NoError(t, stop())
}

func TestLoopWithoutSurface(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLoop(1920, 1080, nil, WithFPS(120))
	stop := startLoop(t, l)

	a := New(l, field.New(nil))
	var mounted bool
	require.NoError(t, l.Do(func() { mounted = a.Mount() }))
	assert.False(t, mounted)

	l.Close()
	require.NoError(t, stop())
	assert.ErrorIs(t, l.Do(func() {}), ErrLoopClosed)
}
