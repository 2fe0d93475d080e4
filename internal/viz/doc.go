// Package viz provides the drawing surfaces and palettes for the field.
//
//   - [Canvas]: braille canvas for the terminal, 2x4 dots per cell
//   - [Raster]: RGBA image with source-over blending, for PNG and GIF
//   - [MultiSurface]: fans one frame out to several surfaces
//
// # Themes
//
// Light is the default; dark mirrors the accent-on-navy palette. Toggle
// flips between the two, and the extra palettes can be picked by name.
// A theme sets the paper and the panel colors only; the field always
// draws in field.Accent.
//
// # Ink
//
// Surfaces receive the ink color and alpha of every disc and line. The
// canvas keeps the strongest alpha per cell and maps it to one of a few
// blend levels between background and ink when rendered.
package viz
