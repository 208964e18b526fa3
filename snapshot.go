package codeviz

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SnapshotTexture writes pb to dir as a timestamped PNG and returns the path.
func SnapshotTexture(dir, label string, pb *PixelBuffer) (string, error) {
	if pb == nil {
		return "", fmt.Errorf("codeviz: snapshot: no texture")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("codeviz: snapshot: mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
	if err := writePNG(path, unpremultiply(pb.img)); err != nil {
		return "", err
	}
	return path, nil
}

// unpremultiply converts premultiplied RGBA to straight-alpha NRGBA.
func unpremultiply(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		s := src.Pix[y*src.Stride : y*src.Stride+4*w]
		d := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for i := 0; i < len(s); i += 4 {
			r, g, bl, a := s[i], s[i+1], s[i+2], s[i+3]
			if a > 0 && a < 255 {
				r = uint8(min(int(r)*255/int(a), 255))
				g = uint8(min(int(g)*255/int(a), 255))
				bl = uint8(min(int(bl)*255/int(a), 255))
			}
			d[i], d[i+1], d[i+2], d[i+3] = r, g, bl, a
		}
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("codeviz: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("codeviz: encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
