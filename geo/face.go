package geo

import (
	"github.com/chewxy/math32"

	"goquakemap/vec"
)

// SurfaceType classifies a face for rendering/collision purposes,
// mirroring the taxonomy a BSP compiler assigns to a texture name.
type SurfaceType int

const (
	SurfaceSolid SurfaceType = iota
	SurfaceClip
	SurfaceSkip
	SurfaceNoDraw
)

// Face is a single planar polygon of a brush: a boundary plane, its
// wound boundary vertices, and everything needed to derive render
// attributes for those vertices.
type Face struct {
	Plane       Plane
	Vertices    []vec.Vec3
	TextureName string
	Projection  UVProjection
	LightmapProjection UVProjection
	SurfaceType SurfaceType

	// BrushIndex identifies the owning brush; used as the coplanar
	// tie-break during CSG clipping in place of the original's raw
	// pointer comparison, which Go has no equivalent of once brushes
	// are value-identified rather than heap-pinned.
	BrushIndex int
}

// Copy returns a deep copy of f; CSG clipping mutates vertex lists in
// place and must never alias another face's slice.
func (f *Face) Copy() *Face {
	nf := *f
	nf.Vertices = append([]vec.Vec3(nil), f.Vertices...)
	return &nf
}

// ClassifyPoint reports which side of the face's plane pt lies on.
func (f *Face) ClassifyPoint(pt vec.Vec3) Side {
	return f.Plane.ClassifyPoint(pt)
}

// Classify reports the overall relationship of f to plane p: every
// vertex on one side is a clean Front/Back, any straddle is Spanning,
// and a face coplanar with p (within epsilon) reports ClassCoplanar.
type FaceClass int

const (
	ClassFront FaceClass = iota
	ClassBack
	ClassSpanning
	ClassCoplanar
)

func (f *Face) Classify(p Plane) FaceClass {
	if f.Vertices == nil {
		return ClassCoplanar
	}
	sawFront, sawBack := false, false
	for _, v := range f.Vertices {
		switch p.ClassifyPoint(v) {
		case SideFront:
			sawFront = true
		case SideBack:
			sawBack = true
		}
	}
	switch {
	case sawFront && sawBack:
		return ClassSpanning
	case sawFront:
		return ClassFront
	case sawBack:
		return ClassBack
	default:
		return ClassCoplanar
	}
}

// Split cuts f against plane p, returning the portion in front of and
// behind p. A side is nil when it would have fewer than three vertices;
// a face lying on p comes back whole on both sides.
func (f *Face) Split(p Plane) (front, back *Face) {
	n := len(f.Vertices)
	if n == 0 {
		return nil, nil
	}
	var frontPts, backPts []vec.Vec3
	for i := 0; i < n; i++ {
		cur := f.Vertices[i]
		next := f.Vertices[(i+1)%n]
		curSide := p.ClassifyPoint(cur)
		nextSide := p.ClassifyPoint(next)

		switch curSide {
		case SideFront:
			frontPts = append(frontPts, cur)
		case SideBack:
			backPts = append(backPts, cur)
		default:
			frontPts = append(frontPts, cur)
			backPts = append(backPts, cur)
		}

		if curSide == SideOn || nextSide == SideOn || curSide == nextSide {
			continue
		}
		ip, _, ok := p.GetIntersection(cur, next)
		if !ok {
			continue
		}
		frontPts = append(frontPts, ip)
		backPts = append(backPts, ip)
	}
	if len(frontPts) >= 3 {
		nf := f.Copy()
		nf.Vertices = frontPts
		front = nf
	}
	if len(backPts) >= 3 {
		nb := f.Copy()
		nb.Vertices = backPts
		back = nb
	}
	return front, back
}

// Wind sorts f's vertices into counter-clockwise order around its plane
// normal by angle, the way a brush face's vertex cloud (populated in
// arbitrary triple-intersection order) is turned into a proper polygon
// boundary.
func (f *Face) Wind() {
	n := len(f.Vertices)
	if n < 3 {
		return
	}
	center := vec.Vec3{}
	for _, v := range f.Vertices {
		center = center.Add(v)
	}
	center = center.Mul(1 / float32(n))

	normal := f.Plane.Normal
	ref := f.Vertices[0].Sub(center)
	if ref.Len() < vec.EpsilonSplit {
		ref = pickTangent(normal)
	}
	ref = ref.Normalize()
	up := normal.Cross(ref).Normalize()

	angle := func(v vec.Vec3) float32 {
		d := v.Sub(center)
		x := d.Dot(ref)
		y := d.Dot(up)
		return math32.Atan2(y, x)
	}

	verts := f.Vertices
	// simple insertion sort: face vertex counts are tiny (brush faces
	// rarely exceed a few dozen verts after CSG), so O(n^2) here is
	// never the bottleneck and keeps the comparator obviously stable.
	for i := 1; i < len(verts); i++ {
		j := i
		for j > 0 && angle(verts[j-1]) > angle(verts[j]) {
			verts[j-1], verts[j] = verts[j], verts[j-1]
			j--
		}
	}
}

func pickTangent(n vec.Vec3) vec.Vec3 {
	if math32.Abs(n[0]) < 0.9 {
		return vec.Vec3{1, 0, 0}.Cross(n)
	}
	return vec.Vec3{0, 1, 0}.Cross(n)
}

// GetIntersection exposes the plane/segment intersection primitive on
// the face's own plane, so a caller can test a segment against a face
// without reaching into Plane directly.
func (f *Face) GetIntersection(start, end vec.Vec3) (vec.Vec3, float32, bool) {
	return f.Plane.GetIntersection(start, end)
}
