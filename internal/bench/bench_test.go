package bench

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/particlefield/internal/config"
)

func TestRun(t *testing.T) {
	viewports := []config.Viewport{
		*config.GetPreset("desktop"),
		*config.GetPreset("mobile"),
		{Name: "empty", Width: 0, Height: 0},
	}

	results, err := Run(context.Background(), viewports, 10, 1)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	want := []int{138, 12, 0}
	for i, r := range results {
		if r.Points != want[i] {
			t.Errorf("%s: expected %d points, got %d", r.Viewport.Name, want[i], r.Points)
		}
		if r.Frames != 10 {
			t.Errorf("%s: expected 10 frames, got %d", r.Viewport.Name, r.Frames)
		}
		if float64(r.MaxLinks) < r.MeanLinks {
			t.Errorf("%s: max links %d below mean %f", r.Viewport.Name, r.MaxLinks, r.MeanLinks)
		}
	}
}

func TestRunRejectsZeroFrames(t *testing.T) {
	if _, err := Run(context.Background(), nil, 0, 1); err == nil {
		t.Error("expected error for zero frames")
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []config.Viewport{*config.GetPreset("desktop")}, 100, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
