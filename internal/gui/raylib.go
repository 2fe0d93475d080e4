//go:build raylib

package gui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type raylibDisplay struct{}

// NewDisplay returns the raylib window backend.
func NewDisplay() (Display, error) { return raylibDisplay{}, nil }

func (raylibDisplay) Open(width, height int, title string, fps int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(width), int32(height), title)
	rl.SetTargetFPS(int32(fps))
}

func (raylibDisplay) Close() { rl.CloseWindow() }

func (raylibDisplay) Size() (int, int) { return rl.GetScreenWidth(), rl.GetScreenHeight() }

func (raylibDisplay) Resized() bool { return rl.IsWindowResized() }

func (raylibDisplay) ShouldClose() bool { return rl.WindowShouldClose() }

func (raylibDisplay) NextKey() rune { return rune(rl.GetKeyPressed()) }

func (raylibDisplay) Begin() { rl.BeginDrawing() }

func (raylibDisplay) End() { rl.EndDrawing() }

func (raylibDisplay) Clear(c color.RGBA) { rl.ClearBackground(c) }

func (raylibDisplay) Circle(x, y, r float32, c color.RGBA) {
	rl.DrawCircleV(rl.NewVector2(x, y), r, c)
}

func (raylibDisplay) Line(x0, y0, x1, y1, width float32, c color.RGBA) {
	rl.DrawLineEx(rl.NewVector2(x0, y0), rl.NewVector2(x1, y1), width, c)
}
