package codeviz

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"sphere", "sphere"},
		{"block-letter", "block-letter"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"special!@#", "special___"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	copy(src.Pix, []uint8{50, 100, 0, 128, 10, 20, 30, 255})
	got := unpremultiply(src)
	if p := got.NRGBAAt(0, 0); p.R != 99 || p.G != 199 || p.A != 128 {
		t.Errorf("half-alpha pixel = %v", p)
	}
	if p := got.NRGBAAt(1, 0); p.R != 10 || p.G != 20 || p.B != 30 || p.A != 255 {
		t.Errorf("opaque pixel = %v", p)
	}
}

func TestSnapshotTextureWritesPNG(t *testing.T) {
	r := newTestRasterizer(t)
	pb := r.Render("func main() {}")

	dir := filepath.Join(t.TempDir(), "out")
	path, err := SnapshotTexture(dir, "block letter", pb)
	if err != nil {
		t.Fatalf("SnapshotTexture: %v", err)
	}
	if !strings.HasSuffix(path, "_block_letter.png") {
		t.Errorf("path = %q", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != pb.Width() || img.Bounds().Dy() != pb.Height() {
		t.Errorf("png size = %v, want %dx%d", img.Bounds(), pb.Width(), pb.Height())
	}
	if !pb.Dirty() {
		t.Error("snapshot must not consume the dirty flag")
	}
}

func TestSnapshotTextureNilBuffer(t *testing.T) {
	if _, err := SnapshotTexture(t.TempDir(), "x", nil); err == nil {
		t.Error("expected error for nil buffer")
	}
}
