package geo

import (
	"sort"

	"github.com/chewxy/math32"

	"goquakemap/vec"
)

// CSG runs the full entity-level pipeline: subtract every other solid
// brush from each brush in turn (so faces hidden inside neighboring
// brushes are removed), then weld coincident vertices, repair
// T-junctions the subtraction may have introduced, and drop collinear
// boundary vertices. A brush with no SOLID face is copied through
// unclipped. e.Faces holds the final exposed surface afterward as
// untriangulated polygons; Face.Triangulate turns each into triangles
// when render meshes are built.
func (e *SolidEntity) CSG() {
	var faces []*Face
	for i, b := range e.Brushes {
		if b.IsNonsolid {
			faces = append(faces, cloneFaces(b.Faces)...)
			continue
		}
		exposed := cloneFaces(b.Faces)
		for j, other := range e.Brushes {
			if i == j || other.IsNonsolid {
				continue
			}
			if !aabbOverlap(b, other) {
				continue
			}
			if b.IsBlockVolume || other.IsBlockVolume {
				continue
			}
			var next []*Face
			for _, f := range exposed {
				if f.SurfaceType != SurfaceSolid {
					next = append(next, f)
					continue
				}
				cf := clipToBrush(f, other, i < j)
				if cf != nil && len(cf.Vertices) >= 3 {
					next = append(next, cf)
				}
			}
			exposed = next
		}
		faces = append(faces, exposed...)
	}

	weldVertices(faces)
	fixTJunctions(faces)
	removeCollinearVertices(faces)
	e.Faces = faces
}

func cloneFaces(faces []*Face) []*Face {
	out := make([]*Face, len(faces))
	for i, f := range faces {
		out[i] = f.Copy()
	}
	return out
}

func aabbOverlap(a, b *Brush) bool {
	for i := 0; i < 3; i++ {
		if a.Maxs[i] < b.Mins[i] || a.Mins[i] > b.Maxs[i] {
			return false
		}
	}
	return true
}

// weldVertices merges vertex positions within vec.EpsilonWeld across all
// faces, in place, by sorting every vertex reference by X coordinate
// (sweep) and merging runs that fall within epsilon on every axis. This
// only ever reduces positional drift between faces that were meant to
// share an edge; it does not touch per-face attribute data.
func weldVertices(faces []*Face) {
	type ref struct {
		face *Face
		idx  int
	}
	var refs []ref
	for _, f := range faces {
		for i := range f.Vertices {
			refs = append(refs, ref{f, i})
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].face.Vertices[refs[i].idx][0] < refs[j].face.Vertices[refs[j].idx][0]
	})
	for i := range refs {
		pi := refs[i].face.Vertices[refs[i].idx]
		for j := i + 1; j < len(refs); j++ {
			pj := refs[j].face.Vertices[refs[j].idx]
			if pj[0]-pi[0] > vec.EpsilonWeld {
				break
			}
			if vec.NearlyEqual(pi, pj, vec.EpsilonWeld) {
				refs[j].face.Vertices[refs[j].idx] = pi
			}
		}
	}
}

// fixTJunctions inserts an interpolated vertex into any face edge that
// another face's vertex lies on (within vec.EpsilonEdge) but that edge
// doesn't already pass through. CSG subtraction routinely produces
// exactly this pattern: a neighboring face's corner sits partway along a
// longer, unsplit edge, and without repair the renderer sees a crack.
func fixTJunctions(faces []*Face) {
	var allPoints []vec.Vec3
	seen := map[[3]int32]bool{}
	key := func(v vec.Vec3) [3]int32 {
		q := func(f float32) int32 { return int32(math32.Round(f / vec.EpsilonEdge)) }
		return [3]int32{q(v[0]), q(v[1]), q(v[2])}
	}
	for _, f := range faces {
		for _, v := range f.Vertices {
			k := key(v)
			if !seen[k] {
				seen[k] = true
				allPoints = append(allPoints, v)
			}
		}
	}

	for _, f := range faces {
		n := len(f.Vertices)
		if n < 2 {
			continue
		}
		var rebuilt []vec.Vec3
		for i := 0; i < n; i++ {
			a := f.Vertices[i]
			b := f.Vertices[(i+1)%n]
			rebuilt = append(rebuilt, a)
			inserts := collectOnSegment(a, b, allPoints)
			rebuilt = append(rebuilt, inserts...)
		}
		f.Vertices = rebuilt
	}
}

func collectOnSegment(a, b vec.Vec3, points []vec.Vec3) []vec.Vec3 {
	ab := b.Sub(a)
	length := ab.Len()
	if length < vec.EpsilonEdge {
		return nil
	}
	dir := ab.Mul(1 / length)

	type found struct {
		t float32
		p vec.Vec3
	}
	var hits []found
	for _, p := range points {
		ap := p.Sub(a)
		t := ap.Dot(dir)
		if t <= vec.EpsilonEdge || t >= length-vec.EpsilonEdge {
			continue
		}
		proj := a.Add(dir.Mul(t))
		if vec.NearlyEqual(proj, p, vec.EpsilonEdge) {
			hits = append(hits, found{t, p})
		}
	}
	if len(hits) == 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })
	out := make([]vec.Vec3, len(hits))
	for i, h := range hits {
		out[i] = h.p
	}
	return out
}

// removeCollinearVertices drops boundary vertices whose neighboring
// edges are (nearly) parallel, which both T-junction repair and the
// CSG clip itself can introduce. The test compares the unit tangents of
// the two edges meeting at a vertex: a cross product near zero means the
// vertex adds no shape information.
func removeCollinearVertices(faces []*Face) {
	const collinearEps = 1e-3
	for _, f := range faces {
		changed := true
		for changed {
			changed = false
			n := len(f.Vertices)
			if n <= 3 {
				break
			}
			for i := 0; i < n; i++ {
				prev := f.Vertices[(i-1+n)%n]
				cur := f.Vertices[i]
				next := f.Vertices[(i+1)%n]
				t1 := cur.Sub(prev)
				t2 := next.Sub(cur)
				if t1.Len() < vec.EpsilonEdge || t2.Len() < vec.EpsilonEdge {
					continue
				}
				t1 = t1.Normalize()
				t2 = t2.Normalize()
				if t1.Cross(t2).Len() < collinearEps {
					f.Vertices = append(f.Vertices[:i], f.Vertices[i+1:]...)
					changed = true
					break
				}
			}
		}
	}
}
