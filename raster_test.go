package codeviz

import (
	"image/color"
	"strings"
	"testing"
)

func testLayout() TextureLayout {
	return TextureLayout{Width: 256, InitialHeight: 64, FontSize: 16}
}

func newTestRasterizer(t *testing.T) *Rasterizer {
	t.Helper()
	r, err := NewRasterizer(testLayout())
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func lines(n int, s string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s
	}
	return strings.Join(parts, "\n")
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func TestRasterizerHeightIsPowerOfTwoAndNeverShrinks(t *testing.T) {
	r := newTestRasterizer(t)
	counts := []int{1, 10, 3, 40, 2, 120, 1}
	prev := 0
	for _, n := range counts {
		pb := r.Render(lines(n, "x := 1"))
		h := pb.Height()
		if !isPowerOfTwo(h) {
			t.Errorf("%d lines: height %d is not a power of two", n, h)
		}
		if h < prev {
			t.Errorf("%d lines: height shrank from %d to %d", n, prev, h)
		}
		if need := r.RequiredHeight(n); h < need {
			t.Errorf("%d lines: height %d < required %d", n, h, need)
		}
		prev = h
	}
}

func TestRasterizerGrowsToNextPowerOfTwo(t *testing.T) {
	r := newTestRasterizer(t)
	if h := r.Buffer().Height(); h != 64 {
		t.Fatalf("initial height = %d, want 64", h)
	}
	// 10 lines at 20.8px plus the bottom margin needs 248px.
	pb := r.Render(lines(10, "a"))
	if pb.Height() != 256 {
		t.Errorf("height = %d, want 256", pb.Height())
	}
	if !r.Stats().Grown {
		t.Error("expected Grown after reallocation")
	}
	r.Render("a")
	if r.Stats().Grown {
		t.Error("Grown set without reallocation")
	}
}

func TestRasterizerCapsHeightAndDropsOldestLines(t *testing.T) {
	r := newTestRasterizer(t)
	text := "first\n" + lines(999, "later")
	pb := r.Render(text)
	if pb.Height() != MaxTextureHeight {
		t.Errorf("height = %d, want %d", pb.Height(), MaxTextureHeight)
	}
	st := r.Stats()
	if st.ClippedLines == 0 {
		t.Fatal("expected clipped lines")
	}
	if st.Lines+st.ClippedLines != 1000 {
		t.Errorf("Lines + ClippedLines = %d, want 1000", st.Lines+st.ClippedLines)
	}
	if r.RequiredHeight(st.Lines) > MaxTextureHeight {
		t.Errorf("kept %d lines needing %dpx", st.Lines, r.RequiredHeight(st.Lines))
	}
}

func TestRasterizerDirtyOncePerRender(t *testing.T) {
	r := newTestRasterizer(t)
	pb := r.Render("hello")
	if !pb.TakeDirty() {
		t.Fatal("expected dirty after Render")
	}
	if pb.TakeDirty() {
		t.Error("dirty flag should be consumed")
	}
	r.Render("hello")
	if !pb.Dirty() {
		t.Error("expected dirty after second Render")
	}
}

func TestRasterizerPixels(t *testing.T) {
	r := newTestRasterizer(t)
	pb := r.Render("MMMMMMMM")
	img := pb.Image()

	want := color.RGBAModel.Convert(ColorCodeBackground.toNRGBA()).(color.RGBA)
	if got := img.RGBAAt(pb.Width()-1, pb.Height()-1); got != want {
		t.Errorf("background = %v, want %v", got, want)
	}
	if got := img.RGBAAt(2, 2); got != want {
		t.Errorf("left margin = %v, want %v", got, want)
	}

	// Some glyph pixel in the first line must carry the foreground green.
	lh := int(r.LineHeight())
	found := false
	for y := 0; y < lh && !found; y++ {
		for x := textMarginX; x < pb.Width(); x++ {
			if img.RGBAAt(x, y).G > 200 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no foreground pixels in the first line")
	}
}

func TestRasterizerLineCount(t *testing.T) {
	r := newTestRasterizer(t)
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"a", 1},
		{"a\nb", 2},
		{"a\r\nb\r\nc", 3},
		{"a\n", 2},
	}
	for _, tt := range tests {
		r.Render(tt.text)
		if got := r.LineCount(); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestExpandTabs(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"\tx", "    x"},
		{"ab\tc", "ab  c"},
		{"abcd\te", "abcd    e"},
		{"none", "none"},
	}
	for _, tt := range tests {
		if got := expandTabs(tt.in); got != tt.want {
			t.Errorf("expandTabs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {1024, 1024}, {1025, 2048}, {8173, 8192},
	}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTextureLayoutDefaults(t *testing.T) {
	l := TextureLayout{}.withDefaults()
	if l != DefaultTextureLayout {
		t.Errorf("withDefaults = %+v, want %+v", l, DefaultTextureLayout)
	}
}
