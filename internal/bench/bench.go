package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/particlefield/internal/config"
	"github.com/san-kum/particlefield/internal/field"
	"golang.org/x/sync/errgroup"
)

type Result struct {
	Viewport   config.Viewport
	Points     int
	Frames     int
	MeanLinks  float64
	MaxLinks   int
	PerFrame   time.Duration
	FrameRatio float64 // PerFrame as a fraction of a 60fps frame budget
}

const frameBudget = time.Second / 60

// Run simulates frames on each viewport concurrently. Each viewport gets
// its own field seeded from seed plus its index.
func Run(ctx context.Context, viewports []config.Viewport, frames int, seed int64) ([]Result, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("bench: frames must be positive, got %d", frames)
	}

	results := make([]Result, len(viewports))
	g, ctx := errgroup.WithContext(ctx)
	for i, vp := range viewports {
		g.Go(func() error {
			r, err := runOne(ctx, vp, frames, seed+int64(i))
			if err != nil {
				return fmt.Errorf("%s: %w", vp.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runOne(ctx context.Context, vp config.Viewport, frames int, seed int64) (Result, error) {
	f := field.New(field.NewRand(seed))
	f.Seed(vp.Width, vp.Height)

	total := 0
	maxLinks := 0
	start := time.Now()
	for i := 0; i < frames; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		stats := f.Draw(field.Discard)
		total += stats.Links
		maxLinks = max(maxLinks, stats.Links)
	}
	elapsed := time.Since(start)

	per := elapsed / time.Duration(frames)
	return Result{
		Viewport:   vp,
		Points:     len(f.Points),
		Frames:     frames,
		MeanLinks:  float64(total) / float64(frames),
		MaxLinks:   maxLinks,
		PerFrame:   per,
		FrameRatio: float64(per) / float64(frameBudget),
	}, nil
}
