package codeviz

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"math/bits"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// MaxTextureHeight caps PixelBuffer growth. Text that would need a taller
	// buffer loses its oldest lines.
	MaxTextureHeight = 8192

	// LineHeightFactor converts font size to line advance.
	LineHeightFactor = 1.3

	textMarginX      = 20
	textMarginBottom = 40
	tabWidth         = 4
)

// TextureLayout describes how a shape wants its code texture laid out.
type TextureLayout struct {
	Width         int     // fixed buffer width in pixels
	InitialHeight int     // starting height, rounded up to a power of two
	FontSize      float64 // glyph size in pixels
	ScrollRate    float64 // texture scroll per second in UV units; 0 disables
	Reveal        bool    // apply the reveal-progress alpha mask
}

// DefaultTextureLayout is used for zero-valued layout fields.
var DefaultTextureLayout = TextureLayout{
	Width:         2048,
	InitialHeight: 2048,
	FontSize:      48,
	ScrollRate:    0.03,
}

func (l TextureLayout) withDefaults() TextureLayout {
	if l.Width <= 0 {
		l.Width = DefaultTextureLayout.Width
	}
	if l.InitialHeight <= 0 {
		l.InitialHeight = DefaultTextureLayout.InitialHeight
	}
	if l.FontSize <= 0 {
		l.FontSize = DefaultTextureLayout.FontSize
	}
	return l
}

// PixelBuffer is the rasterized code texture: fixed width, power-of-two
// height that never shrinks. Pixels are premultiplied RGBA.
type PixelBuffer struct {
	img   *image.RGBA
	dirty bool
}

func newPixelBuffer(w, h int) *PixelBuffer {
	return &PixelBuffer{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Image returns the backing image. Callers must treat it as read-only.
func (pb *PixelBuffer) Image() *image.RGBA {
	return pb.img
}

// Width returns the buffer width in pixels.
func (pb *PixelBuffer) Width() int {
	return pb.img.Rect.Dx()
}

// Height returns the buffer height in pixels.
func (pb *PixelBuffer) Height() int {
	return pb.img.Rect.Dy()
}

// Dirty reports whether the buffer was redrawn since the last TakeDirty.
func (pb *PixelBuffer) Dirty() bool {
	return pb.dirty
}

// TakeDirty reports whether the buffer was redrawn and clears the flag, so
// each redraw is consumed (uploaded) exactly once.
func (pb *PixelBuffer) TakeDirty() bool {
	d := pb.dirty
	pb.dirty = false
	return d
}

// grow reallocates to height h. Smaller heights are ignored.
func (pb *PixelBuffer) grow(h int) bool {
	if h <= pb.Height() {
		return false
	}
	pb.img = image.NewRGBA(image.Rect(0, 0, pb.Width(), h))
	return true
}

// RenderStats describes the most recent Render call.
type RenderStats struct {
	Lines        int  // lines drawn
	ClippedLines int  // oldest lines dropped to respect MaxTextureHeight
	Height       int  // buffer height after the call
	Grown        bool // buffer was reallocated
}

// Rasterizer draws multi-line text into a PixelBuffer with a fixed
// monospace face.
type Rasterizer struct {
	layout     TextureLayout
	face       font.Face
	lineHeight float64
	maxLines   int
	buf        *PixelBuffer
	stats      RenderStats
	warned     bool
}

// monoFont is parsed once on first use. No sync.Once: rasterizers are
// created on the render goroutine.
var monoFont *opentype.Font

func loadMonoFont() (*opentype.Font, error) {
	if monoFont != nil {
		return monoFont, nil
	}
	f, err := opentype.Parse(gomonobold.TTF)
	if err != nil {
		return nil, err
	}
	monoFont = f
	return f, nil
}

// NewRasterizer creates a rasterizer and its initial buffer.
func NewRasterizer(layout TextureLayout) (*Rasterizer, error) {
	layout = layout.withDefaults()
	f, err := loadMonoFont()
	if err != nil {
		return nil, fmt.Errorf("codeviz: parse monospace font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    layout.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("codeviz: create font face: %w", err)
	}

	lh := layout.FontSize * LineHeightFactor
	h := min(nextPowerOfTwo(layout.InitialHeight), MaxTextureHeight)
	r := &Rasterizer{
		layout:     layout,
		face:       face,
		lineHeight: lh,
		maxLines:   int((MaxTextureHeight - textMarginBottom) / lh),
		buf:        newPixelBuffer(layout.Width, h),
	}
	r.clear()
	return r, nil
}

// Layout returns the layout the rasterizer was created with (defaults filled).
func (r *Rasterizer) Layout() TextureLayout {
	return r.layout
}

// LineHeight returns the line advance in pixels.
func (r *Rasterizer) LineHeight() float64 {
	return r.lineHeight
}

// Buffer returns the current pixel buffer.
func (r *Rasterizer) Buffer() *PixelBuffer {
	return r.buf
}

// Stats returns statistics for the most recent Render call.
func (r *Rasterizer) Stats() RenderStats {
	return r.stats
}

// LineCount returns the number of lines drawn by the most recent Render call.
func (r *Rasterizer) LineCount() int {
	return r.stats.Lines
}

// RequiredHeight returns the unrounded height needed for n lines.
func (r *Rasterizer) RequiredHeight(n int) int {
	return int(math.Ceil(float64(n)*r.lineHeight + textMarginBottom))
}

// Render redraws the buffer from text: one line per line break, left-aligned
// at a fixed margin, no wrapping. The buffer grows to the next power of two
// that fits the text and is marked dirty.
func (r *Rasterizer) Render(text string) *PixelBuffer {
	lines := splitLines(text)

	clipped := 0
	if len(lines) > r.maxLines {
		clipped = len(lines) - r.maxLines
		lines = lines[clipped:]
		if !r.warned {
			r.warned = true
			warnf("texture height capped at %d px; dropping %d oldest lines", MaxTextureHeight, clipped)
		}
	}

	required := r.RequiredHeight(len(lines))
	grown := false
	if required > r.buf.Height() {
		grown = r.buf.grow(min(nextPowerOfTwo(required), MaxTextureHeight))
	}

	r.clear()
	d := font.Drawer{
		Dst:  r.buf.img,
		Src:  image.NewUniform(ColorCodeForeground.toNRGBA()),
		Face: r.face,
	}
	for i, line := range lines {
		if line == "" {
			continue
		}
		d.Dot = fixed.Point26_6{
			X: fixed.I(textMarginX),
			Y: fixed.Int26_6(float64(i+1) * r.lineHeight * 64),
		}
		d.DrawString(line)
	}

	r.buf.dirty = true
	r.stats = RenderStats{
		Lines:        len(lines),
		ClippedLines: clipped,
		Height:       r.buf.Height(),
		Grown:        grown,
	}
	return r.buf
}

// clear fills the whole buffer with the code background.
func (r *Rasterizer) clear() {
	img := r.buf.img
	draw.Draw(img, img.Bounds(), image.NewUniform(ColorCodeBackground.toNRGBA()), image.Point{}, draw.Src)
}

// Close releases the font face.
func (r *Rasterizer) Close() error {
	return r.face.Close()
}

// splitLines splits text on line breaks and expands tabs.
func splitLines(text string) []string {
	if strings.Contains(text, "\r") {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.IndexByte(line, '\t') >= 0 {
			lines[i] = expandTabs(line)
		}
	}
	return lines
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(line string) string {
	var b strings.Builder
	b.Grow(len(line) + tabWidth)
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// nextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
