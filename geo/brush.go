package geo

import (
	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/mat"

	"goquakemap/vec"
)

// PlaneDef is one half-space of a brush as read from a MAP file: the
// boundary plane plus everything needed to compute that face's render
// attributes once its polygon is generated.
type PlaneDef struct {
	Plane              Plane
	TextureName        string
	Projection         UVProjection
	LightmapProjection UVProjection
	SurfaceType        SurfaceType
}

// Brush is a convex solid described by the intersection of its faces'
// half-spaces.
type Brush struct {
	Faces         []*Face
	IsBlockVolume bool
	IsNonsolid    bool

	// Index identifies this brush within its owning entity; it is the
	// coplanar tie-break during CSG clipping, replacing the raw pointer
	// comparison the original C++ used (Go brushes aren't pinned to a
	// stable address once stored in a slice).
	Index int

	Mins, Maxs vec.Vec3
}

// NewBrush builds a convex brush from its bounding half-spaces:
//  1. generatePolygons intersects every ordered triple of distinct
//     planes and keeps the point where it is legal (inside every other
//     half-space), assigning it to all three contributing faces.
//  2. each face is wound into a proper CCW polygon boundary.
//  3. the brush's AABB is derived from the finished vertex set.
func NewBrush(index int, defs []PlaneDef) *Brush {
	b := &Brush{Index: index}
	b.Faces = make([]*Face, len(defs))
	for i, d := range defs {
		b.Faces[i] = &Face{
			Plane:              d.Plane,
			TextureName:        d.TextureName,
			Projection:         d.Projection,
			LightmapProjection: d.LightmapProjection,
			SurfaceType:        d.SurfaceType,
			BrushIndex:         index,
		}
	}
	b.classifySurfaces()
	b.generatePolygons()
	for _, f := range b.Faces {
		f.Wind()
	}
	b.calculateAABB()
	return b
}

// classifySurfaces derives the brush's is_block_volume / is_nonsolid flags
// from its faces' configured surface types: a CLIP face marks the brush a
// block volume, and a brush with no SOLID face at all is nonsolid.
func (b *Brush) classifySurfaces() {
	b.IsNonsolid = true
	for _, f := range b.Faces {
		if f.SurfaceType == SurfaceClip {
			b.IsBlockVolume = true
		}
		if f.SurfaceType == SurfaceSolid {
			b.IsNonsolid = false
		}
	}
}

// generatePolygons visits every ORDERED triple (i,j,k) of distinct plane
// indices, not merely every unordered combination. A shared brush corner
// touches exactly three planes; which of those three plays the role of
// "the face receiving this vertex" changes across permutations of the
// same triple, so only the exhaustive ordered walk appends the corner to
// all three owning faces. An unordered-combination walk (each triple
// visited once) would assign the corner to a single face and leave the
// other two open.
func (b *Brush) generatePolygons() {
	n := len(b.Faces)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			for k := 0; k < n; k++ {
				if k == i || k == j {
					continue
				}
				pt, ok := intersectPlanes(b.Faces[i].Plane, b.Faces[j].Plane, b.Faces[k].Plane)
				if !ok {
					continue
				}
				if !b.isLegal(pt) {
					continue
				}
				face := b.Faces[k]
				v := vec.Vec3(pt)
				if !containsPoint(face.Vertices, v) {
					face.Vertices = append(face.Vertices, v)
				}
			}
		}
	}
}

func containsPoint(list []vec.Vec3, p vec.Vec3) bool {
	for _, v := range list {
		if vec.NearlyEqual(v, p, vec.EpsilonDedup) {
			return true
		}
	}
	return false
}

// isLegal reports whether pt lies within (or on) every one of the
// brush's half-spaces, i.e. it is actually a vertex of the solid rather
// than an intersection point that falls outside it.
func (b *Brush) isLegal(pt vec.Vec3) bool {
	for _, f := range b.Faces {
		if f.Plane.Distance(pt) > vec.EpsilonLegal {
			return false
		}
	}
	return true
}

// intersectPlanes solves the 3x3 linear system given by three plane
// equations via gonum's LU-backed solve, returning the unique point they
// all pass through. ok is false when the planes are parallel/degenerate
// (near-singular system, guarded by vec.EpsilonDet).
func intersectPlanes(a, b, c Plane) (vec.Vec3, bool) {
	A := mat.NewDense(3, 3, []float64{
		float64(a.Normal[0]), float64(a.Normal[1]), float64(a.Normal[2]),
		float64(b.Normal[0]), float64(b.Normal[1]), float64(b.Normal[2]),
		float64(c.Normal[0]), float64(c.Normal[1]), float64(c.Normal[2]),
	})
	det := mat.Det(A)
	if math32.Abs(float32(det)) < vec.EpsilonDet {
		return vec.Vec3{}, false
	}
	rhs := mat.NewVecDense(3, []float64{float64(a.Dist), float64(b.Dist), float64(c.Dist)})
	var x mat.VecDense
	if err := x.SolveVec(A, rhs); err != nil {
		return vec.Vec3{}, false
	}
	return vec.Vec3{float32(x.AtVec(0)), float32(x.AtVec(1)), float32(x.AtVec(2))}, true
}

func (b *Brush) calculateAABB() {
	first := true
	for _, f := range b.Faces {
		for _, v := range f.Vertices {
			if first {
				b.Mins, b.Maxs = v, v
				first = false
				continue
			}
			mn, _ := vec.MinMax(b.Mins, v)
			_, mx := vec.MinMax(b.Maxs, v)
			b.Mins, b.Maxs = mn, mx
		}
	}
}

// TriangulateFan produces the index triples of a convex, wound polygon
// via simple fan triangulation. Only valid for faces that are still
// convex (true of a freshly built brush face; CSG-clipped faces use the
// ear-clip triangulator instead since subtraction can leave concavities).
func (f *Face) TriangulateFan() [][3]int {
	n := len(f.Vertices)
	if n < 3 {
		return nil
	}
	tris := make([][3]int, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}
