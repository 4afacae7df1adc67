package geo

import "goquakemap/vec"

// Triangulate ear-clips f's (possibly concave, CSG-produced) boundary
// into a fan of index triples referencing f.Vertices. Convex brush faces
// could use the cheaper fan triangulation, but a CSG-clipped face is not
// guaranteed convex, so every post-CSG face goes through the general
// algorithm.
func (f *Face) Triangulate() [][3]int {
	n := len(f.Vertices)
	if n < 3 {
		return nil
	}
	if n == 3 {
		return [][3]int{{0, 1, 2}}
	}

	axis := dropAxis(f.Plane.Normal)
	// Dropping an axis shows a polygon wound counter-clockwise around the
	// normal as clockwise in 2D when the normal points down that axis
	// (or up the Y axis, whose remaining (x,z) pair is left-handed);
	// mirror those so isConvex's counter-clockwise test holds for all.
	flip := f.Plane.Normal[axis] < 0
	if axis == 1 {
		flip = !flip
	}
	proj := make([]vec.Vec2, n)
	for i, v := range f.Vertices {
		proj[i] = project2D(v, axis)
		if flip {
			proj[i][0] = -proj[i][0]
		}
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var tris [][3]int
	loopLimit := 2 * n
	attempts := 0
	for len(idx) > 3 && attempts < loopLimit {
		attempts++
		earFound := false
		m := len(idx)
		for i := 0; i < m; i++ {
			ip := idx[(i-1+m)%m]
			ic := idx[i]
			in := idx[(i+1)%m]
			if !isConvex(proj[ip], proj[ic], proj[in]) {
				continue
			}
			if anyPointInTriangle(proj, idx, ip, ic, in) {
				continue
			}
			tris = append(tris, [3]int{ip, ic, in})
			idx = append(idx[:i], idx[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			// Degenerate polygon (collinear runs, numerical noise):
			// fall back to a fan from the first remaining vertex rather
			// than looping forever.
			break
		}
	}
	if len(idx) >= 3 {
		for i := 1; i < len(idx)-1; i++ {
			tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
		}
	}
	return tris
}

// dropAxis picks the world axis most parallel to n so the polygon can be
// projected into the other two for a 2D ear-clip test.
func dropAxis(n vec.Vec3) int {
	ax, ay, az := absf(n[0]), absf(n[1]), absf(n[2])
	switch {
	case az >= ax && az >= ay:
		return 2
	case ax >= ay:
		return 0
	default:
		return 1
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func project2D(v vec.Vec3, drop int) vec.Vec2 {
	switch drop {
	case 0:
		return vec.Vec2{v[1], v[2]}
	case 1:
		return vec.Vec2{v[0], v[2]}
	default:
		return vec.Vec2{v[0], v[1]}
	}
}

func cross2(a, b vec.Vec2) float32 {
	return a[0]*b[1] - a[1]*b[0]
}

func isConvex(prev, cur, next vec.Vec2) bool {
	e1 := vec.Vec2{cur[0] - prev[0], cur[1] - prev[1]}
	e2 := vec.Vec2{next[0] - cur[0], next[1] - cur[1]}
	return cross2(e1, e2) >= 0
}

func pointInTriangle(p, a, b, c vec.Vec2) bool {
	d1 := cross2(vec.Vec2{b[0] - a[0], b[1] - a[1]}, vec.Vec2{p[0] - a[0], p[1] - a[1]})
	d2 := cross2(vec.Vec2{c[0] - b[0], c[1] - b[1]}, vec.Vec2{p[0] - b[0], p[1] - b[1]})
	d3 := cross2(vec.Vec2{a[0] - c[0], a[1] - c[1]}, vec.Vec2{p[0] - c[0], p[1] - c[1]})
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func anyPointInTriangle(proj []vec.Vec2, idx []int, ip, ic, in int) bool {
	for _, other := range idx {
		if other == ip || other == ic || other == in {
			continue
		}
		if pointInTriangle(proj[other], proj[ip], proj[ic], proj[in]) {
			return true
		}
	}
	return false
}
