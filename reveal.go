package codeviz

import (
	"image"
	"math"

	"github.com/tanema/gween/ease"
)

const (
	// LinesPerSecond is the reveal reading speed.
	LinesPerSecond = 10

	// RevealPadLines is added to the line count so the reveal band runs past
	// the last line before wrapping to the top.
	RevealPadLines = 30

	// RevealBand is the height, as a fraction of the mask, of the soft
	// falloff above the reveal edge.
	RevealBand = 0.2

	// EpochResetLines is the line-count change between two text updates that
	// restarts the reveal from the top.
	EpochResetLines = 50

	// DefaultMaskHeight is the height of the AlphaMask in pixels.
	DefaultMaskHeight = 4096
)

// RevealAnimator computes the scrolling "reading" reveal: a vertical alpha
// mask that is opaque from the top down to the current progress and hidden
// below it.
type RevealAnimator struct {
	// Ease shapes the falloff band. Called as Ease(t, 1, -1, 1) with t in
	// [0, 1]; ease.Linear reproduces a plain linear gradient.
	Ease ease.TweenFunc

	lines    int
	epoch    float64
	epochSet bool
	progress float64
	mask     *image.Gray
}

// NewRevealAnimator creates an animator with a 1-pixel-wide mask of the
// given height (DefaultMaskHeight when <= 0).
func NewRevealAnimator(maskHeight int) *RevealAnimator {
	if maskHeight <= 0 {
		maskHeight = DefaultMaskHeight
	}
	return &RevealAnimator{
		Ease: ease.Linear,
		mask: image.NewGray(image.Rect(0, 0, 1, maskHeight)),
	}
}

// SetLineCount records the line count of the latest text update. A change
// of more than EpochResetLines lines clears the epoch so the next Tick starts
// a fresh reveal. Reports whether the epoch was cleared.
func (a *RevealAnimator) SetLineCount(n int) bool {
	old := a.lines
	a.lines = n
	d := n - old
	if d < 0 {
		d = -d
	}
	if d > EpochResetLines {
		a.epochSet = false
		return true
	}
	return false
}

// LineCount returns the last recorded line count.
func (a *RevealAnimator) LineCount() int {
	return a.lines
}

// ResetEpoch makes the next Tick the start of a new reveal.
func (a *RevealAnimator) ResetEpoch() {
	a.epochSet = false
}

// Epoch returns the elapsed time at which the current reveal started and
// whether it has been established.
func (a *RevealAnimator) Epoch() (float64, bool) {
	return a.epoch, a.epochSet
}

// TotalLines returns the animation length in lines.
func (a *RevealAnimator) TotalLines() int {
	return max(1, a.lines+RevealPadLines)
}

// Period returns the time in seconds for one full reveal cycle.
func (a *RevealAnimator) Period() float64 {
	return float64(a.TotalLines()) / LinesPerSecond
}

// Progress returns the reveal edge in [0, 1) at the given elapsed time. An
// unset epoch counts as starting now.
func (a *RevealAnimator) Progress(elapsed float64) float64 {
	epoch := a.epoch
	if !a.epochSet {
		epoch = elapsed
	}
	total := float64(a.TotalLines())
	t := elapsed - epoch
	if t < 0 {
		t = 0
	}
	return math.Mod(t*LinesPerSecond, total) / total
}

// Tick establishes the epoch if needed, computes progress, and regenerates
// the mask. The returned mask is owned by the animator and overwritten on
// the next Tick.
func (a *RevealAnimator) Tick(elapsed float64) *image.Gray {
	if !a.epochSet {
		a.epoch = elapsed
		a.epochSet = true
	}
	a.progress = a.Progress(elapsed)
	a.fillMask()
	return a.mask
}

// LastProgress returns the progress computed by the most recent Tick.
func (a *RevealAnimator) LastProgress() float64 {
	return a.progress
}

// Mask returns the most recently generated mask.
func (a *RevealAnimator) Mask() *image.Gray {
	return a.mask
}

// Alpha samples the mask at normalized height v (0 = top, 1 = bottom).
func (a *RevealAnimator) Alpha(v float64) float64 {
	h := len(a.mask.Pix)
	i := int(v * float64(h))
	if i < 0 {
		i = 0
	}
	if i >= h {
		i = h - 1
	}
	return float64(a.mask.Pix[i]) / 255
}

func (a *RevealAnimator) fillMask() {
	end := a.progress
	start := math.Max(0, end-RevealBand)
	fn := a.Ease
	if fn == nil {
		fn = ease.Linear
	}
	h := len(a.mask.Pix)
	for y := range h {
		pos := (float64(y) + 0.5) / float64(h)
		var alpha float64
		switch {
		case pos <= start:
			alpha = 1
		case pos >= end:
			alpha = 0
		default:
			t := (pos - start) / (end - start)
			alpha = clamp01(float64(fn(float32(t), 1, -1, 1)))
		}
		a.mask.Pix[y] = uint8(alpha*255 + 0.5)
	}
}
