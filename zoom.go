package codeviz

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	MinZoomDistance = 10
	MaxZoomDistance = 50

	zoomStep     = 2.5
	zoomDuration = 0.25
)

// Zoom eases the camera distance toward a wheel-controlled target.
//
// There is no global animation manager; the visualizer calls Update itself.
type Zoom struct {
	Enabled bool
	Ease    ease.TweenFunc

	distance float64
	target   float64
	tween    *gween.Tween
}

// NewZoom creates a zoom resting at distance (clamped to the zoom range).
func NewZoom(distance float64, enabled bool) *Zoom {
	d := clamp(distance, MinZoomDistance, MaxZoomDistance)
	return &Zoom{Enabled: enabled, Ease: ease.OutCubic, distance: d, target: d}
}

// Scroll moves the target by one step per wheel notch. Positive wheel values
// move the camera closer. Ignored while zoom is disabled.
func (z *Zoom) Scroll(wheelY float64) {
	if !z.Enabled || wheelY == 0 {
		return
	}
	z.SetTarget(z.target - wheelY*zoomStep)
}

// SetTarget starts a tween from the current distance to d (clamped).
func (z *Zoom) SetTarget(d float64) {
	d = clamp(d, MinZoomDistance, MaxZoomDistance)
	if d == z.target && z.tween == nil {
		return
	}
	z.target = d
	fn := z.Ease
	if fn == nil {
		fn = ease.OutCubic
	}
	z.tween = gween.New(float32(z.distance), float32(d), zoomDuration, fn)
}

// Update advances the tween by dt seconds.
func (z *Zoom) Update(dt float64) {
	if z.tween == nil {
		return
	}
	val, finished := z.tween.Update(float32(dt))
	z.distance = float64(val)
	if finished {
		z.distance = z.target
		z.tween = nil
	}
}

// Distance returns the current camera distance.
func (z *Zoom) Distance() float64 {
	return z.distance
}

// Target returns the distance the tween is heading to.
func (z *Zoom) Target() float64 {
	return z.target
}

// Animating reports whether a tween is in progress.
func (z *Zoom) Animating() bool {
	return z.tween != nil
}
