package codeviz

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind selects the geometry the code texture is mapped onto.
type ShapeKind uint8

const (
	ShapeLetter      ShapeKind = iota // extruded block letter Z
	ShapeBlockLetter                  // thicker, deeper Z
	ShapeKnot                         // (2,3) torus knot
	ShapeSphere                       // UV sphere with reveal mask
	ShapeCube                         // cube, texture on every face
	ShapePyramid                      // square pyramid
	ShapeComposite                    // Z, E and N side by side
	shapeCount
)

var shapeNames = [shapeCount]string{
	ShapeLetter:      "letter",
	ShapeBlockLetter: "block",
	ShapeKnot:        "knot",
	ShapeSphere:      "sphere",
	ShapeCube:        "cube",
	ShapePyramid:     "pyramid",
	ShapeComposite:   "zen",
}

// Additional names accepted by ParseShape.
var shapeAliases = map[string]ShapeKind{
	"z":         ShapeLetter,
	"blockz":    ShapeBlockLetter,
	"torusknot": ShapeKnot,
	"composite": ShapeComposite,
}

// String returns the shape's canonical name.
func (k ShapeKind) String() string {
	if k < shapeCount {
		return shapeNames[k]
	}
	return fmt.Sprintf("ShapeKind(%d)", k)
}

// ParseShape resolves a case-insensitive shape name or alias.
func ParseShape(name string) (ShapeKind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for k, n := range shapeNames {
		if n == key {
			return ShapeKind(k), nil
		}
	}
	if k, ok := shapeAliases[key]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("codeviz: unknown shape %q", name)
}

// Shapes returns every shape in menu order.
func Shapes() []ShapeKind {
	out := make([]ShapeKind, shapeCount)
	for i := range out {
		out[i] = ShapeKind(i)
	}
	return out
}

// Next returns the following shape in menu order, wrapping around. A
// negative step moves backwards.
func (k ShapeKind) Next(step int) ShapeKind {
	n := int(shapeCount)
	return ShapeKind(((int(k)+step)%n + n) % n)
}

// ShapeDescriptor is everything the visualizer needs to show a shape: how to
// build it, how fast each axis turns, and how its texture is laid out.
type ShapeDescriptor struct {
	Kind     ShapeKind
	Name     string
	Geometry func() *Geometry
	Weights  AxisWeights
	Layout   TextureLayout
}

var (
	defaultWeights   = AxisWeights{Yaw: 1, Pitch: 0.33, Roll: 0.13}
	compositeWeights = AxisWeights{Yaw: 1, Pitch: 0.33, Roll: 0.15}
	sphereWeights    = AxisWeights{Yaw: 1, Pitch: 0.33}
)

var descriptors = [shapeCount]ShapeDescriptor{
	ShapeLetter: {
		Geometry: func() *Geometry { return Extrude(letterZOutline(8, 3), 2).Center() },
		Weights:  defaultWeights,
		Layout:   TextureLayout{Width: 1024, InitialHeight: 2048, FontSize: 48, ScrollRate: 0.03},
	},
	ShapeBlockLetter: {
		Geometry: func() *Geometry { return Extrude(letterZOutline(7, 4), 4).Center() },
		Weights:  defaultWeights,
		Layout:   TextureLayout{Width: 2048, InitialHeight: 2048, FontSize: 48, ScrollRate: 0.03},
	},
	ShapeKnot: {
		Geometry: func() *Geometry { return TorusKnot(6, 1.8, 128, 16, 2, 3) },
		Weights:  defaultWeights,
		Layout:   TextureLayout{Width: 2048, InitialHeight: 2048, FontSize: 48, ScrollRate: 0.03},
	},
	ShapeSphere: {
		Geometry: func() *Geometry { return Sphere(7, 64, 64) },
		Weights:  sphereWeights,
		Layout:   TextureLayout{Width: 2048, InitialHeight: 4096, FontSize: 40, Reveal: true},
	},
	ShapeCube: {
		Geometry: func() *Geometry { return Box(10) },
		Weights:  defaultWeights,
		Layout:   TextureLayout{Width: 2048, InitialHeight: 2048, FontSize: 48, ScrollRate: 0.03},
	},
	ShapePyramid: {
		Geometry: func() *Geometry { return Cone(8, 12, 4) },
		Weights:  defaultWeights,
		Layout:   TextureLayout{Width: 2048, InitialHeight: 2048, FontSize: 48, ScrollRate: 0.03},
	},
	ShapeComposite: {
		Geometry: func() *Geometry {
			const s, t = 4, 2
			return Merge(
				Extrude(letterZOutline(s, t), 2).Translate(mgl64.Vec3{-9.5, 0, 0}),
				Extrude(letterEOutline(s, t), 2),
				Extrude(letterNOutline(s, t), 2).Translate(mgl64.Vec3{9.5, 0, 0}),
			).Center()
		},
		Weights: compositeWeights,
		Layout:  TextureLayout{Width: 2048, InitialHeight: 4096, FontSize: 48, ScrollRate: 0.03},
	},
}

// Describe returns the descriptor for k. Unknown kinds fall back to
// ShapeLetter.
func Describe(k ShapeKind) ShapeDescriptor {
	if k >= shapeCount {
		k = ShapeLetter
	}
	d := descriptors[k]
	d.Kind = k
	d.Name = shapeNames[k]
	return d
}
