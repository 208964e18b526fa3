package codeviz

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is handed to Ebitengine or written
// into a PixelBuffer.
type Color struct {
	R, G, B, A float64
}

var (
	// ColorWhite is the default tint (no color modification).
	ColorWhite = Color{1, 1, 1, 1}

	// ColorCodeBackground is the translucent navy fill behind rasterized code.
	ColorCodeBackground = Color{10.0 / 255, 25.0 / 255, 47.0 / 255, 0.9}

	// ColorCodeForeground is the glyph color (#64ffda).
	ColorCodeForeground = Color{0x64 / 255.0, 0xff / 255.0, 0xda / 255.0, 1}

	// ColorEmissive tints the geometry (#00f0c0) so the texture glows slightly.
	ColorEmissive = Color{0, 0xf0 / 255.0, 0xc0 / 255.0, 1}

	// ColorClear is the window background.
	ColorClear = Color{0, 0, 0, 1}
)

// Vec2 is a 2D vector used for outlines and screen positions.
type Vec2 struct {
	X, Y float64
}

// Mode selects where DisplayText comes from.
type Mode uint8

const (
	ModeAuto   Mode = iota // endless stream from the text source
	ModePrompt             // one-shot completions requested from the prompt bar
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModePrompt:
		return "prompt"
	default:
		return "unknown"
	}
}

// whitePixel is a lazily created 1x1 white image used for HUD panels.
// No sync.Once: the visualizer is single-threaded.
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(ColorWhite.toRGBA())
	}
	return whitePixel
}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// toNRGBA converts a Color to a straight-alpha color.NRGBA.
func (c Color) toNRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
