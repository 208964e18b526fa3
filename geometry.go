package codeviz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex3 is a model-space vertex with texture coordinates. V runs bottom to
// top (V=1 is the top edge of the texture).
type Vertex3 struct {
	Pos  mgl64.Vec3
	U, V float64
}

// Geometry is an indexed triangle list.
type Geometry struct {
	Vertices []Vertex3
	Indices  []uint16
}

// TriangleCount returns len(Indices)/3.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (g *Geometry) Bounds() (lo, hi mgl64.Vec3) {
	if len(g.Vertices) == 0 {
		return
	}
	lo = g.Vertices[0].Pos
	hi = lo
	for _, v := range g.Vertices[1:] {
		for i := range 3 {
			lo[i] = math.Min(lo[i], v.Pos[i])
			hi[i] = math.Max(hi[i], v.Pos[i])
		}
	}
	return lo, hi
}

// Translate moves every vertex by d and returns g.
func (g *Geometry) Translate(d mgl64.Vec3) *Geometry {
	for i := range g.Vertices {
		g.Vertices[i].Pos = g.Vertices[i].Pos.Add(d)
	}
	return g
}

// Center translates g so its bounding box is centered on the origin.
func (g *Geometry) Center() *Geometry {
	lo, hi := g.Bounds()
	return g.Translate(lo.Add(hi).Mul(-0.5))
}

// Merge concatenates geometries into one. Indices are rebased.
func Merge(parts ...*Geometry) *Geometry {
	out := &Geometry{}
	for _, p := range parts {
		base := uint16(len(out.Vertices))
		out.Vertices = append(out.Vertices, p.Vertices...)
		for _, idx := range p.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}

// Sphere builds a UV sphere.
func Sphere(radius float64, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(3, widthSegments)
	heightSegments = max(2, heightSegments)
	g := &Geometry{}
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			phi := u * 2 * math.Pi
			theta := v * math.Pi
			g.Vertices = append(g.Vertices, Vertex3{
				Pos: mgl64.Vec3{
					-radius * math.Cos(phi) * math.Sin(theta),
					radius * math.Cos(theta),
					radius * math.Sin(phi) * math.Sin(theta),
				},
				U: u,
				V: 1 - v,
			})
		}
	}
	row := widthSegments + 1
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint16(iy*row + ix + 1)
			b := uint16(iy*row + ix)
			c := uint16((iy+1)*row + ix)
			d := uint16((iy+1)*row + ix + 1)
			// The pole rows collapse to a point; skip their degenerate halves.
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// Box builds an axis-aligned cube with the full texture on every face.
func Box(size float64) *Geometry {
	h := size / 2
	// normal, right, up for each face
	faces := [6][3]mgl64.Vec3{
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	}
	g := &Geometry{}
	for _, f := range faces {
		n, r, up := f[0].Mul(h), f[1].Mul(h), f[2].Mul(h)
		base := uint16(len(g.Vertices))
		g.Vertices = append(g.Vertices,
			Vertex3{Pos: n.Sub(r).Sub(up), U: 0, V: 0},
			Vertex3{Pos: n.Add(r).Sub(up), U: 1, V: 0},
			Vertex3{Pos: n.Add(r).Add(up), U: 1, V: 1},
			Vertex3{Pos: n.Sub(r).Add(up), U: 0, V: 1},
		)
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// Cone builds a closed cone with its apex up. Four radial segments give a
// square pyramid.
func Cone(radius, height float64, radialSegments int) *Geometry {
	radialSegments = max(3, radialSegments)
	half := height / 2
	g := &Geometry{}

	// Side: row 0 is the apex (repeated per segment), row 1 the base ring.
	for y := 0; y <= 1; y++ {
		v := float64(y)
		r := v * radius
		for x := 0; x <= radialSegments; x++ {
			u := float64(x) / float64(radialSegments)
			theta := u * 2 * math.Pi
			g.Vertices = append(g.Vertices, Vertex3{
				Pos: mgl64.Vec3{r * math.Sin(theta), -v*height + half, r * math.Cos(theta)},
				U:   u,
				V:   1 - v,
			})
		}
	}
	row := uint16(radialSegments + 1)
	for x := uint16(0); x < uint16(radialSegments); x++ {
		b := row + x
		c := row + x + 1
		d := x + 1
		g.Indices = append(g.Indices, b, c, d)
	}

	// Base cap.
	for x := 0; x < radialSegments; x++ {
		t0 := float64(x) / float64(radialSegments) * 2 * math.Pi
		t1 := float64(x+1) / float64(radialSegments) * 2 * math.Pi
		base := uint16(len(g.Vertices))
		g.Vertices = append(g.Vertices,
			Vertex3{Pos: mgl64.Vec3{0, -half, 0}, U: 0.5, V: 0.5},
			Vertex3{Pos: mgl64.Vec3{radius * math.Sin(t0), -half, radius * math.Cos(t0)}, U: math.Cos(t0)*0.5 + 0.5, V: -math.Sin(t0)*0.5 + 0.5},
			Vertex3{Pos: mgl64.Vec3{radius * math.Sin(t1), -half, radius * math.Cos(t1)}, U: math.Cos(t1)*0.5 + 0.5, V: -math.Sin(t1)*0.5 + 0.5},
		)
		g.Indices = append(g.Indices, base, base+2, base+1)
	}
	return g
}

// TorusKnot builds a (p, q) torus knot tube.
func TorusKnot(radius, tube float64, tubularSegments, radialSegments, p, q int) *Geometry {
	tubularSegments = max(3, tubularSegments)
	radialSegments = max(3, radialSegments)
	g := &Geometry{}
	fp, fq := float64(p), float64(q)

	curve := func(u float64) mgl64.Vec3 {
		qu := fq / fp * u
		cs := math.Cos(qu)
		return mgl64.Vec3{
			radius * (2 + cs) * 0.5 * math.Cos(u),
			radius * (2 + cs) * 0.5 * math.Sin(u),
			radius * math.Sin(qu) * 0.5,
		}
	}

	for i := 0; i <= tubularSegments; i++ {
		u := float64(i) / float64(tubularSegments) * fp * 2 * math.Pi
		p1 := curve(u)
		p2 := curve(u + 0.01)
		t := p2.Sub(p1)
		n := p2.Add(p1)
		b := t.Cross(n)
		n = b.Cross(t)
		b = b.Normalize()
		n = n.Normalize()
		for j := 0; j <= radialSegments; j++ {
			v := float64(j) / float64(radialSegments) * 2 * math.Pi
			cx := -tube * math.Cos(v)
			cy := tube * math.Sin(v)
			g.Vertices = append(g.Vertices, Vertex3{
				Pos: p1.Add(n.Mul(cx)).Add(b.Mul(cy)),
				U:   float64(i) / float64(tubularSegments),
				V:   float64(j) / float64(radialSegments),
			})
		}
	}
	row := radialSegments + 1
	for j := 1; j <= tubularSegments; j++ {
		for i := 1; i <= radialSegments; i++ {
			a := uint16(row*(j-1) + (i - 1))
			b := uint16(row*j + (i - 1))
			c := uint16(row*j + i)
			d := uint16(row*(j-1) + i)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// Extrude builds a prism from a simple polygon outline: front and back caps
// triangulated by ear clipping plus one quad per outline edge. Caps are
// mapped planar over the outline bounds; walls wrap the texture once around
// the perimeter.
func Extrude(outline []Vec2, depth float64) *Geometry {
	g := &Geometry{}
	n := len(outline)
	if n < 3 {
		return g
	}
	tris := Triangulate(outline)

	minX, minY := outline[0].X, outline[0].Y
	maxX, maxY := minX, minY
	for _, p := range outline[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}

	// Caps: back at z=0, front at z=depth.
	for _, z := range [2]float64{0, depth} {
		for _, p := range outline {
			g.Vertices = append(g.Vertices, Vertex3{
				Pos: mgl64.Vec3{p.X, p.Y, z},
				U:   (p.X - minX) / span,
				V:   (p.Y - minY) / span,
			})
		}
	}
	front := uint16(n)
	for i := 0; i+2 < len(tris); i += 3 {
		a, b, c := uint16(tris[i]), uint16(tris[i+1]), uint16(tris[i+2])
		g.Indices = append(g.Indices, c, b, a)
		g.Indices = append(g.Indices, front+a, front+b, front+c)
	}

	// Walls.
	var perimeter float64
	for i := range n {
		perimeter += edgeLength(outline[i], outline[(i+1)%n])
	}
	var walked float64
	for i := range n {
		p0, p1 := outline[i], outline[(i+1)%n]
		l := edgeLength(p0, p1)
		u0 := walked / perimeter
		u1 := (walked + l) / perimeter
		walked += l
		base := uint16(len(g.Vertices))
		dv := depth / span
		g.Vertices = append(g.Vertices,
			Vertex3{Pos: mgl64.Vec3{p0.X, p0.Y, 0}, U: u0, V: 0},
			Vertex3{Pos: mgl64.Vec3{p1.X, p1.Y, 0}, U: u1, V: 0},
			Vertex3{Pos: mgl64.Vec3{p1.X, p1.Y, depth}, U: u1, V: dv},
			Vertex3{Pos: mgl64.Vec3{p0.X, p0.Y, depth}, U: u0, V: dv},
		)
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

func edgeLength(a, b Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Block-letter outlines with half-size s and stroke thickness t, centered on
// the origin. Each is a simple (non-self-intersecting) polygon.

func letterZOutline(s, t float64) []Vec2 {
	return []Vec2{
		{s, s}, {-s, s}, {-s, s - t}, {s - t, -s + t}, {-s, -s + t},
		{-s, -s}, {s, -s}, {s, -s + t}, {-s + t, s - t}, {s, s - t},
	}
}

func letterEOutline(s, t float64) []Vec2 {
	mid := t * 0.5
	return []Vec2{
		{-s, -s}, {s, -s}, {s, -s + t}, {-s + t, -s + t}, {-s + t, -mid},
		{s, -mid}, {s, mid}, {-s + t, mid}, {-s + t, s - t}, {s, s - t},
		{s, s}, {-s, s},
	}
}

func letterNOutline(s, t float64) []Vec2 {
	return []Vec2{
		{-s, -s}, {-s, s}, {-s + t, s}, {s - t, -s + t}, {s - t, s},
		{s, s}, {s, -s}, {s - t, -s}, {-s + t, s - t}, {-s + t, -s},
	}
}
