package codeviz

// Triangulate splits a simple polygon into triangles by ear clipping and
// returns indices into poly, three per triangle, counter-clockwise. Either
// input winding is accepted. Collinear vertices are dropped.
func Triangulate(poly []Vec2) []int {
	n := len(poly)
	if n < 3 {
		return nil
	}

	idx := make([]int, n)
	if signedArea(poly) >= 0 {
		for i := range idx {
			idx[i] = i
		}
	} else {
		for i := range idx {
			idx[i] = n - 1 - i
		}
	}

	out := make([]int, 0, (n-2)*3)
	for len(idx) > 3 {
		m := len(idx)
		clipped := false
		for i := 0; i < m; i++ {
			prev, cur, next := idx[(i+m-1)%m], idx[i], idx[(i+1)%m]
			a, b, c := poly[prev], poly[cur], poly[next]
			if cross(a, b, c) <= 0 {
				continue
			}
			if earBlocked(poly, idx, prev, cur, next) {
				continue
			}
			out = append(out, prev, cur, next)
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if clipped {
			continue
		}
		// No convex ear: drop a collinear vertex if there is one, otherwise
		// the polygon is not simple and we stop with what we have.
		dropped := false
		for i := 0; i < m; i++ {
			prev, cur, next := idx[(i+m-1)%m], idx[i], idx[(i+1)%m]
			if cross(poly[prev], poly[cur], poly[next]) == 0 {
				idx = append(idx[:i], idx[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			return out
		}
	}
	if cross(poly[idx[0]], poly[idx[1]], poly[idx[2]]) > 0 {
		out = append(out, idx[0], idx[1], idx[2])
	}
	return out
}

// earBlocked reports whether any remaining vertex other than the ear's own
// lies inside or on the triangle (prev, cur, next).
func earBlocked(poly []Vec2, idx []int, prev, cur, next int) bool {
	a, b, c := poly[prev], poly[cur], poly[next]
	for _, j := range idx {
		if j == prev || j == cur || j == next {
			continue
		}
		p := poly[j]
		if p == a || p == b || p == c {
			continue
		}
		if pointInTriangle(p, a, b, c) {
			return true
		}
	}
	return false
}

// signedArea returns the polygon area, positive for counter-clockwise winding.
func signedArea(poly []Vec2) float64 {
	var s float64
	n := len(poly)
	for i := range n {
		p, q := poly[i], poly[(i+1)%n]
		s += p.X*q.Y - q.X*p.Y
	}
	return s / 2
}

// cross returns the z component of (b-a) x (c-b); positive for a left turn.
func cross(a, b, c Vec2) float64 {
	return (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
}

// pointInTriangle reports whether p lies inside or on the CCW triangle abc.
func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	d2 := (c.X-b.X)*(p.Y-b.Y) - (c.Y-b.Y)*(p.X-b.X)
	d3 := (a.X-c.X)*(p.Y-c.Y) - (a.Y-c.Y)*(p.X-c.X)
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}
