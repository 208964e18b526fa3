package codeviz

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// DefaultCameraDistance is the camera's distance from the origin.
	DefaultCameraDistance = 25

	// DefaultFOV is the vertical field of view in degrees.
	DefaultFOV = 50

	ambientLight = 0.55
	diffuseLight = 0.45
)

// Camera looks at the origin from +Z.
type Camera struct {
	Distance  float64
	FOV       float64 // vertical, degrees
	Near, Far float64
}

// DefaultCamera returns the camera used by the visualizer.
func DefaultCamera() Camera {
	return Camera{Distance: DefaultCameraDistance, FOV: DefaultFOV, Near: 0.1, Far: 1000}
}

// ViewProjection returns projection * view for the given aspect ratio.
func (c Camera) ViewProjection(aspect float64) mgl64.Mat4 {
	proj := mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
	view := mgl64.LookAtV(mgl64.Vec3{0, 0, c.Distance}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

// ProjectParams configures one MeshBatch.Project call.
type ProjectParams struct {
	Model     mgl64.Mat4
	Camera    Camera
	ViewportW float64
	ViewportH float64
	TextureW  float64
	TextureH  float64
	Scroll    float64 // texture scroll in UV units
	Tint      Color
	// Mask returns vertex opacity for a normalized texture height (0 = top).
	// Nil means fully opaque.
	Mask func(v float64) float64
}

// MeshBatch turns 3D geometry into screen-space triangles for
// ebiten.Image.DrawTriangles. Buffers follow a high-water-mark strategy and
// are reused between frames.
type MeshBatch struct {
	Vertices []ebiten.Vertex
	Indices  []uint16

	points []projectedPoint
	tris   []projectedTri
}

type projectedPoint struct {
	x, y  float64
	depth float64
	world mgl64.Vec3
	ok    bool
}

type projectedTri struct {
	a, b, c uint16
	depth   float64
	shade   float64
}

// maxBatchTriangles keeps emitted indices within uint16 range.
const maxBatchTriangles = 65535 / 3

// lightDir is the normalized key light direction in world space.
var lightDir = mgl64.Vec3{10, 10, 10}.Normalize()

// Project fills Vertices and Indices with the triangles of g as seen by the
// camera. Triangles are sorted far to near so DrawTriangles paints them
// back to front; both faces are drawn. Triangles with a vertex behind the
// near plane are dropped.
func (b *MeshBatch) Project(g *Geometry, p ProjectParams) {
	b.Vertices = b.Vertices[:0]
	b.Indices = b.Indices[:0]
	b.tris = b.tris[:0]
	if g == nil || p.ViewportW <= 0 || p.ViewportH <= 0 {
		return
	}

	mvp := p.Camera.ViewProjection(p.ViewportW / p.ViewportH).Mul4(p.Model)

	if cap(b.points) < len(g.Vertices) {
		b.points = make([]projectedPoint, len(g.Vertices))
	}
	b.points = b.points[:len(g.Vertices)]
	for i, v := range g.Vertices {
		pos := v.Pos.Vec4(1)
		clip := mvp.Mul4x1(pos)
		pt := &b.points[i]
		pt.world = p.Model.Mul4x1(pos).Vec3()
		pt.ok = clip[3] > p.Camera.Near
		if !pt.ok {
			continue
		}
		nx := clip[0] / clip[3]
		ny := clip[1] / clip[3]
		pt.x = (nx*0.5 + 0.5) * p.ViewportW
		pt.y = (0.5 - ny*0.5) * p.ViewportH
		pt.depth = clip[3]
	}

	for i := 0; i+2 < len(g.Indices); i += 3 {
		ia, ib, ic := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		pa, pb, pc := &b.points[ia], &b.points[ib], &b.points[ic]
		if !pa.ok || !pb.ok || !pc.ok {
			continue
		}
		n := pb.world.Sub(pa.world).Cross(pc.world.Sub(pa.world))
		shade := ambientLight
		if l := n.Len(); l > 0 {
			shade += diffuseLight * math.Abs(n.Mul(1/l).Dot(lightDir))
		}
		b.tris = append(b.tris, projectedTri{
			a: ia, b: ib, c: ic,
			depth: (pa.depth + pb.depth + pc.depth) / 3,
			shade: shade,
		})
		if len(b.tris) == maxBatchTriangles {
			break
		}
	}

	slices.SortFunc(b.tris, func(x, y projectedTri) int {
		switch {
		case x.depth > y.depth:
			return -1
		case x.depth < y.depth:
			return 1
		default:
			return 0
		}
	})

	tint := p.Tint
	if tint == (Color{}) {
		tint = ColorWhite
	}
	for _, t := range b.tris {
		base := uint16(len(b.Vertices))
		for _, vi := range [3]uint16{t.a, t.b, t.c} {
			b.Vertices = append(b.Vertices, b.vertex(g.Vertices[vi], &b.points[vi], t.shade, tint, p))
		}
		b.Indices = append(b.Indices, base, base+1, base+2)
	}
}

// TriangleCount returns the number of triangles emitted by the last Project.
func (b *MeshBatch) TriangleCount() int {
	return len(b.Indices) / 3
}

// vertex builds one premultiplied ebiten.Vertex.
func (b *MeshBatch) vertex(v Vertex3, pt *projectedPoint, shade float64, tint Color, p ProjectParams) ebiten.Vertex {
	top := 1 - v.V
	alpha := tint.A
	if p.Mask != nil {
		alpha *= clamp01(p.Mask(top))
	}
	return ebiten.Vertex{
		DstX:   float32(pt.x),
		DstY:   float32(pt.y),
		SrcX:   float32(v.U * p.TextureW),
		SrcY:   float32((top + p.Scroll) * p.TextureH),
		ColorR: float32(tint.R * shade * alpha),
		ColorG: float32(tint.G * shade * alpha),
		ColorB: float32(tint.B * shade * alpha),
		ColorA: float32(alpha),
	}
}

// DrawOptions returns the triangle options matching Project's output:
// premultiplied vertex colors and repeat addressing for texture scrolling.
func (b *MeshBatch) DrawOptions() *ebiten.DrawTrianglesOptions {
	return &ebiten.DrawTrianglesOptions{
		Address:        ebiten.AddressRepeat,
		Filter:         ebiten.FilterLinear,
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
	}
}
