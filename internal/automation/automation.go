package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/particlefield/internal/config"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScenario = errors.New("scenario has no steps")
	ErrInvalidStep   = errors.New("invalid scenario step")
)

// Scenario is a scripted batch of renders.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step renders one output. Frames is how far the field advances before
// an .svg, .png or .txt is written, or how many frames a .gif records.
type Step struct {
	Viewport string `yaml:"viewport"`
	Frames   int    `yaml:"frames"`
	Seed     int64  `yaml:"seed"`
	Theme    string `yaml:"theme"`
	Out      string `yaml:"out"`
}

var formats = map[string]bool{".svg": true, ".png": true, ".txt": true, ".gif": true}

func (s Step) Format() string { return strings.ToLower(filepath.Ext(s.Out)) }

func (s Step) Validate() error {
	if _, err := config.ParseViewport(s.Viewport); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStep, err)
	}
	if s.Out == "" {
		return fmt.Errorf("%w: out is empty", ErrInvalidStep)
	}
	if !formats[s.Format()] {
		return fmt.Errorf("%w: unsupported output %q", ErrInvalidStep, s.Out)
	}
	if s.Frames < 0 || (s.Format() == ".gif" && s.Frames == 0) {
		return fmt.Errorf("%w: frames %d for %s", ErrInvalidStep, s.Frames, s.Out)
	}
	return nil
}

// LoadScenario reads and validates a scenario. Relative output paths are
// resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}

	dir := filepath.Dir(path)
	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if !filepath.IsAbs(step.Out) {
			step.Out = filepath.Join(dir, step.Out)
		}
	}
	return &scenario, nil
}

// Output describes a finished step.
type Output struct {
	Step   int
	Path   string
	Points int
	Links  int
	Frames int
}

type Renderer interface {
	Render(ctx context.Context, step Step, vp config.Viewport) (Output, error)
}

type RendererFunc func(ctx context.Context, step Step, vp config.Viewport) (Output, error)

func (f RendererFunc) Render(ctx context.Context, step Step, vp config.Viewport) (Output, error) {
	return f(ctx, step, vp)
}

// RunScenario renders every step in order and stops at the first error,
// returning the outputs finished so far.
func RunScenario(ctx context.Context, scenario *Scenario, r Renderer, log *zap.Logger) ([]Output, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]Output, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		vp, err := config.ParseViewport(step.Viewport)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		out, err := r.Render(ctx, step, vp)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		out.Step = i + 1
		if out.Path == "" {
			out.Path = step.Out
		}
		results = append(results, out)

		log.Info("scenario step done",
			zap.String("scenario", scenario.Name),
			zap.Int("step", out.Step),
			zap.String("viewport", vp.String()),
			zap.String("out", out.Path))
	}

	return results, nil
}
