package codeviz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AxisWeights scales the rotation speed per axis.
type AxisWeights struct {
	Yaw, Pitch, Roll float64
}

// Orientation holds accumulated rotation angles in radians and the texture
// scroll offset in UV units.
type Orientation struct {
	Pitch, Yaw, Roll float64
	Scroll           float64
}

// Matrix returns the rotation as a homogeneous matrix, applied X then Y then
// Z (intrinsic XYZ Euler order).
func (o Orientation) Matrix() mgl64.Mat4 {
	return mgl64.HomogRotate3DX(o.Pitch).
		Mul4(mgl64.HomogRotate3DY(o.Yaw)).
		Mul4(mgl64.HomogRotate3DZ(o.Roll))
}

// OrientationIntegrator advances an Orientation every tick.
type OrientationIntegrator struct {
	Weights    AxisWeights
	ScrollRate float64

	Orientation
}

// NewOrientationIntegrator creates an integrator at rest.
func NewOrientationIntegrator(w AxisWeights, scrollRate float64) *OrientationIntegrator {
	return &OrientationIntegrator{Weights: w, ScrollRate: scrollRate}
}

// Tick adds delta*speed*weight to each angle and delta*ScrollRate to the
// scroll offset. Scrolling ignores speed. Non-positive or non-finite deltas
// are ignored.
func (o *OrientationIntegrator) Tick(delta, speed float64) {
	if !(delta > 0) || math.IsInf(delta, 0) {
		return
	}
	step := delta * speed
	o.Yaw += step * o.Weights.Yaw
	o.Pitch += step * o.Weights.Pitch
	o.Roll += step * o.Weights.Roll
	o.Scroll += delta * o.ScrollRate
	// Keep the offset small; the texture repeats every 1.0.
	if o.Scroll >= 1 {
		o.Scroll -= math.Floor(o.Scroll)
	}
}

// Reset zeroes all angles and the scroll offset.
func (o *OrientationIntegrator) Reset() {
	o.Orientation = Orientation{}
}
