package export

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"

	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/viz"
)

// BackgroundOf returns the opaque theme background, or transparent.
func BackgroundOf(theme viz.Theme, opaque bool) color.RGBA {
	if !opaque {
		return color.RGBA{}
	}
	r, g, b := theme.Paper().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func WritePNG(w io.Writer, r *viz.Raster) error {
	return png.Encode(w, r.Image())
}

// Recorder captures every frame drawn into its raster as a GIF frame.
// Attach Surface to the animator's surface fan-out and the Recorder
// itself as an observer.
type Recorder struct {
	raster *viz.Raster
	frames []*image.Paletted
	delay  int
	limit  int
}

// NewRecorder records at fps, keeping at most limit frames (0 for no limit).
func NewRecorder(width, height int, bg color.RGBA, fps, limit int) *Recorder {
	delay := 2
	if fps > 0 {
		delay = max(1, 100/fps)
	}
	return &Recorder{
		raster: viz.NewRaster(width, height, bg),
		delay:  delay,
		limit:  limit,
	}
}

func (r *Recorder) Surface() field.Surface { return r.raster }

func (r *Recorder) Len() int { return len(r.frames) }

// Full reports whether the frame limit has been reached.
func (r *Recorder) Full() bool { return r.limit > 0 && len(r.frames) >= r.limit }

func (r *Recorder) OnFrame(field.FrameStats) {
	if r.Full() {
		return
	}
	src := r.raster.Image()
	frame := image.NewPaletted(src.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(frame, src.Bounds(), src, image.Point{})
	r.frames = append(r.frames, frame)
}

func (r *Recorder) Encode(w io.Writer) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}
