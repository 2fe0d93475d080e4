package main

import (
	"github.com/san-kum/particlefield/internal/animate"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/gui"
	"github.com/san-kum/particlefield/internal/storage"
	"github.com/san-kum/particlefield/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func openWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	vp, err := viewportArg(args)
	if err != nil {
		return err
	}
	d, err := gui.NewDisplay()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	theme := resolveTheme(cmd, cfg, storage.New(cfg.DataDir))
	w := gui.New(d, viz.GetTheme(theme).Paper())
	w.Open(vp.Width, vp.Height, "particlefield", cfg.FPS)
	defer w.Close()

	a := windowAnimator(w, theme, resolveSeed(cfg), log)
	defer a.Unmount()
	log.Info("window opened", zap.String("viewport", vp.String()), zap.String("theme", theme))
	return w.Run(cmd.Context())
}

// windowAnimator mounts a field on w and binds the live view's keys.
func windowAnimator(w *gui.Window, theme string, seed int64, log *zap.Logger) *animate.Animator {
	a := animate.New(w, field.New(field.NewRand(seed)), animate.WithLogger(log))
	w.OnIdle(func(s field.Surface) { a.Field().Render(s) })
	w.Bind(' ', func() { a.SetPaused(!a.Paused()) })
	w.Bind('R', a.Reseed)
	w.Bind('T', func() {
		theme = viz.Toggle(theme)
		w.SetPaper(viz.GetTheme(theme).Paper())
	})
	a.Mount()
	return a
}
