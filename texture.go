package codeviz

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Texture is the GPU-side copy of a PixelBuffer. It is owned by the
// visualizer and re-uploaded only when the buffer reports a redraw.
type Texture struct {
	image   *ebiten.Image
	w, h    int
	uploads int
}

// NewTexture creates an empty texture. The GPU image is allocated on the
// first Upload.
func NewTexture() *Texture {
	return &Texture{}
}

// Image returns the underlying *ebiten.Image, or nil before the first upload.
func (t *Texture) Image() *ebiten.Image {
	return t.image
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int {
	return t.w
}

// Height returns the texture height in pixels.
func (t *Texture) Height() int {
	return t.h
}

// Uploads returns how many times pixels were written to the GPU.
func (t *Texture) Uploads() int {
	return t.uploads
}

// Upload copies pb to the GPU if it was redrawn since the previous upload.
// The image is reallocated when the buffer size changed. Reports whether an
// upload happened.
func (t *Texture) Upload(pb *PixelBuffer) bool {
	if pb == nil || !pb.TakeDirty() {
		return false
	}
	w, h := pb.Width(), pb.Height()
	if t.image == nil || t.w != w || t.h != h {
		t.Resize(w, h)
	}
	t.image.WritePixels(pb.img.Pix)
	t.uploads++
	return true
}

// Resize deallocates the old image and creates a new one at the given
// dimensions. The image is unmanaged so it never lands in an atlas, which
// keeps repeat addressing valid for texture scrolling.
func (t *Texture) Resize(width, height int) {
	if t.image != nil {
		t.image.Deallocate()
	}
	t.image = ebiten.NewImageWithOptions(image.Rect(0, 0, width, height), &ebiten.NewImageOptions{
		Unmanaged: true,
	})
	t.w = width
	t.h = height
}

// Dispose deallocates the underlying image. The Texture may be reused; the
// next Upload allocates again.
func (t *Texture) Dispose() {
	if t.image != nil {
		t.image.Deallocate()
		t.image = nil
	}
	t.w, t.h = 0, 0
}
