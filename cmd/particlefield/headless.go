package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/particlefield/internal/animate"
	"github.com/san-kum/particlefield/internal/automation"
	"github.com/san-kum/particlefield/internal/config"
	"github.com/san-kum/particlefield/internal/export"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/storage"
	"github.com/san-kum/particlefield/internal/viz"
	"go.uber.org/zap"
)

var errNoFrames = errors.New("frames must be positive")

type simulation struct {
	Viewport config.Viewport
	Frames   int
	Seed     int64
	FPS      int
	Realtime bool
	Logger   *zap.Logger

	// Surface receives every frame; field.Discard when nil.
	Surface   field.Surface
	Observers []animate.Observer
}

type result struct {
	Field *field.Field
	Stats []field.FrameStats
}

func (r *result) Links() []float64 {
	links := make([]float64, len(r.Stats))
	for i, s := range r.Stats {
		links[i] = float64(s.Links)
	}
	return links
}

// simulate mounts an animator on a headless loop and returns after
// sim.Frames frames. Unless Realtime is set, the frame clock ticks as
// fast as the loop accepts ticks.
func simulate(ctx context.Context, sim simulation) (*result, error) {
	if sim.Frames <= 0 {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, errNoFrames)
	}
	surface := sim.Surface
	if surface == nil {
		surface = field.Discard
	}
	log := sim.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var opts []animate.LoopOption
	var ticks chan time.Time
	if sim.Realtime {
		opts = append(opts, animate.WithFPS(sim.FPS))
	} else {
		ticks = make(chan time.Time)
		opts = append(opts, animate.WithClock(ticks))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	loop := animate.NewLoop(sim.Viewport.Width, sim.Viewport.Height, surface, opts...)
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(runCtx) }()

	res := &result{
		Field: field.New(field.NewRand(sim.Seed)),
		Stats: make([]field.FrameStats, 0, sim.Frames),
	}
	reached := make(chan struct{})
	a := animate.New(loop, res.Field, animate.WithLogger(log))
	for _, o := range sim.Observers {
		a.AddObserver(o)
	}
	a.AddObserver(animate.ObserverFunc(func(s field.FrameStats) {
		if len(res.Stats) == sim.Frames {
			return
		}
		res.Stats = append(res.Stats, s)
		if len(res.Stats) == sim.Frames {
			// Ticks already in flight must not move the field further.
			a.SetPaused(true)
			close(reached)
		}
	}))

	if ticks != nil {
		go func() {
			for {
				select {
				case ticks <- time.Now():
				case <-reached:
					return
				case <-loop.Done():
					return
				}
			}
		}()
	}

	if err := loop.Do(func() { a.Mount() }); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	select {
	case <-reached:
	case <-ctx.Done():
	}
	_ = loop.Do(a.Unmount)
	loop.Close()
	if err := <-errc; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug("headless run finished",
		zap.String("viewport", sim.Viewport.String()),
		zap.Int("points", len(res.Field.Points)),
		zap.Int("frames", len(res.Stats)))
	return res, nil
}

// record runs sim into a GIF recorder and writes it to path.
func record(ctx context.Context, path string, sim simulation, theme viz.Theme, opaque bool) (int, error) {
	rec := export.NewRecorder(sim.Viewport.Width, sim.Viewport.Height, export.BackgroundOf(theme, opaque), sim.FPS, sim.Frames)
	sim.Surface = rec.Surface()
	sim.Observers = append(sim.Observers, rec)

	if _, err := simulate(ctx, sim); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, err
	}
	out, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := rec.Encode(out); err != nil {
		out.Close()
		return 0, err
	}
	return rec.Len(), out.Close()
}

// advance seeds a field for vp and steps it frames times without drawing.
func advance(vp config.Viewport, seed int64, frames int) *field.Field {
	f := field.New(field.NewRand(seed))
	f.Seed(vp.Width, vp.Height)
	for range frames {
		f.Step()
	}
	return f
}

func restored(meta *storage.SnapshotMetadata, points []field.Point) (*field.Field, error) {
	f := field.New(field.NewRand(meta.Seed))
	if err := f.Restore(meta.Width, meta.Height, points); err != nil {
		return nil, err
	}
	return f, nil
}

// writeFrame exports the field's current positions, choosing the format
// from the file extension. A .txt frame is the uncolored braille grid.
func writeFrame(path string, f *field.Field, theme viz.Theme, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		svg := export.FieldToSVG(f, theme, export.SVGOptions{Scale: cfg.Export.Scale, Background: cfg.Export.Background})
		return os.WriteFile(path, []byte(svg), 0644)
	case ".png":
		r := viz.NewRaster(f.Width, f.Height, export.BackgroundOf(theme, cfg.Export.Background))
		f.Render(r)
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := export.WritePNG(out, r); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	case ".txt":
		c := viz.NewCanvas(0, 0)
		c.SetCellSize(cfg.Cell.Width, cfg.Cell.Height)
		c.Resize(f.Width, f.Height)
		f.Render(c)
		return os.WriteFile(path, []byte(c.String()), 0644)
	default:
		return fmt.Errorf("%w: unsupported output format %q (want .svg, .png or .txt)", config.ErrInvalid, ext)
	}
}

func pointCount(v config.Viewport) int { return field.PointCount(v.Width, v.Height) }

func densityOf(v config.Viewport) int { return field.DensityDivisor(v.Width) }

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stepRenderer renders scenario steps. Steps without a theme or seed use
// the command's.
func stepRenderer(cfg *config.Config, theme string, log *zap.Logger) automation.Renderer {
	return automation.RendererFunc(func(ctx context.Context, step automation.Step, vp config.Viewport) (automation.Output, error) {
		name := step.Theme
		if name == "" {
			name = theme
		}
		if !viz.HasTheme(name) {
			return automation.Output{}, fmt.Errorf("%w: unknown theme %q", config.ErrInvalid, name)
		}
		t := viz.GetTheme(name)
		s := step.Seed
		if s == 0 {
			s = resolveSeed(cfg)
		}

		if step.Format() == ".gif" {
			n, err := record(ctx, step.Out, simulation{
				Viewport: vp,
				Frames:   step.Frames,
				Seed:     s,
				FPS:      cfg.FPS,
				Logger:   log,
			}, t, cfg.Export.Background)
			return automation.Output{Points: pointCount(vp), Frames: n}, err
		}

		f := advance(vp, s, step.Frames)
		if err := writeFrame(step.Out, f, t, cfg); err != nil {
			return automation.Output{}, err
		}
		return automation.Output{Points: len(f.Points), Links: f.Links(), Frames: step.Frames}, nil
	})
}
