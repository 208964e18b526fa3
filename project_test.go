package codeviz

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func triangleAt(z, u float64) *Geometry {
	return &Geometry{
		Vertices: []Vertex3{
			{Pos: mgl64.Vec3{-1, -1, z}, U: u},
			{Pos: mgl64.Vec3{1, -1, z}, U: u},
			{Pos: mgl64.Vec3{0, 1, z}, U: u, V: 1},
		},
		Indices: []uint16{0, 1, 2},
	}
}

func testParams() ProjectParams {
	return ProjectParams{
		Model:     mgl64.Ident4(),
		Camera:    DefaultCamera(),
		ViewportW: 100,
		ViewportH: 100,
		TextureW:  256,
		TextureH:  512,
	}
}

func TestProjectMapsToScreen(t *testing.T) {
	var b MeshBatch
	b.Project(triangleAt(0, 0), testParams())
	if b.TriangleCount() != 1 || len(b.Vertices) != 3 {
		t.Fatalf("got %d triangles, %d vertices", b.TriangleCount(), len(b.Vertices))
	}
	top := b.Vertices[2]
	if !approxEqual(float64(top.DstX), 50, 1e-3) {
		t.Errorf("apex X = %f, want 50", top.DstX)
	}
	if top.DstY >= 50 {
		t.Errorf("apex Y = %f, want above center", top.DstY)
	}
	left, right := b.Vertices[0], b.Vertices[1]
	if !(left.DstX < 50 && right.DstX > 50) {
		t.Errorf("base X = %f, %f", left.DstX, right.DstX)
	}
	// V=1 samples the top row of the texture.
	if top.SrcY != 0 || left.SrcY != 512 {
		t.Errorf("SrcY = %f (top), %f (bottom)", top.SrcY, left.SrcY)
	}
}

func TestProjectCullsBehindCamera(t *testing.T) {
	var b MeshBatch
	b.Project(triangleAt(DefaultCameraDistance+5, 0), testParams())
	if b.TriangleCount() != 0 {
		t.Errorf("triangle behind the camera was emitted")
	}
}

func TestProjectSortsFarToNear(t *testing.T) {
	near := triangleAt(2, 0)
	far := triangleAt(-5, 0.5)
	var b MeshBatch
	b.Project(Merge(near, far), testParams())
	if b.TriangleCount() != 2 {
		t.Fatalf("got %d triangles", b.TriangleCount())
	}
	if b.Vertices[0].SrcX != 128 {
		t.Errorf("first triangle SrcX = %f, want the far triangle (128)", b.Vertices[0].SrcX)
	}
	if b.Vertices[3].SrcX != 0 {
		t.Errorf("second triangle SrcX = %f, want the near triangle (0)", b.Vertices[3].SrcX)
	}
}

func TestProjectShadingAndMask(t *testing.T) {
	p := testParams()
	p.Mask = func(v float64) float64 {
		if v < 0.5 {
			return 1
		}
		return 0
	}
	var b MeshBatch
	b.Project(triangleAt(0, 0), p)

	top, bottom := b.Vertices[2], b.Vertices[0]
	if top.ColorA != 1 {
		t.Errorf("top alpha = %f, want 1", top.ColorA)
	}
	if bottom.ColorA != 0 || bottom.ColorR != 0 {
		t.Errorf("masked vertex = %+v, want transparent", bottom)
	}
	shade := float64(top.ColorR)
	want := ambientLight + diffuseLight*math.Abs(mgl64.Vec3{0, 0, 1}.Dot(lightDir))
	if !approxEqual(shade, want, 1e-5) {
		t.Errorf("shade = %f, want %f", shade, want)
	}
}

func TestProjectScroll(t *testing.T) {
	p := testParams()
	p.Scroll = 0.25
	var b MeshBatch
	b.Project(triangleAt(0, 0), p)
	if got := b.Vertices[2].SrcY; got != 128 {
		t.Errorf("scrolled SrcY = %f, want 128", got)
	}
}

func TestProjectReusesBuffers(t *testing.T) {
	var b MeshBatch
	g := Box(10)
	b.Project(g, testParams())
	first := cap(b.Vertices)
	b.Project(g, testParams())
	if cap(b.Vertices) != first {
		t.Errorf("vertex buffer reallocated: %d -> %d", first, cap(b.Vertices))
	}
	b.Project(nil, testParams())
	if b.TriangleCount() != 0 {
		t.Error("nil geometry should emit nothing")
	}
}
