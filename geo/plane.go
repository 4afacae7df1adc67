// Package geo implements the MAP source to polygon mesh pipeline: brush
// construction from half-space planes, CSG subtraction between brushes,
// vertex welding, T-junction repair, collinear vertex removal and
// ear-clip triangulation.
package geo

import (
	"github.com/chewxy/math32"

	"goquakemap/vec"
)

// Plane is a half-space boundary in Hesse normal form: a point p lies on
// the plane when dot(Normal, p) == Dist. Points with dot(Normal, p) > Dist
// are in front of (outside) the plane.
type Plane struct {
	Normal vec.Vec3
	Dist   float32
}

// PlaneFromPoints builds a plane through three counter-clockwise-wound
// points, matching Quake's brush-face convention.
func PlaneFromPoints(a, b, c vec.Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a))
	n = n.Normalize()
	return Plane{Normal: n, Dist: n.Dot(a)}
}

// Side classifies a point against the plane using vec.EpsilonClassify.
type Side int

const (
	SideOn Side = iota
	SideFront
	SideBack
)

func (p Plane) ClassifyPoint(pt vec.Vec3) Side {
	d := p.Normal.Dot(pt) - p.Dist
	switch {
	case d > vec.EpsilonClassify:
		return SideFront
	case d < -vec.EpsilonClassify:
		return SideBack
	default:
		return SideOn
	}
}

// Distance returns the signed distance from pt to the plane.
func (p Plane) Distance(pt vec.Vec3) float32 {
	return p.Normal.Dot(pt) - p.Dist
}

// GetIntersection returns the point where the segment start-end crosses
// the plane, along with the interpolation parameter t. ok is false when
// the segment is parallel to the plane.
func (p Plane) GetIntersection(start, end vec.Vec3) (point vec.Vec3, t float32, ok bool) {
	dir := end.Sub(start)
	denom := p.Normal.Dot(dir)
	if math32.Abs(denom) < vec.EpsilonSplit {
		return vec.Vec3{}, 0, false
	}
	t = (p.Dist - p.Normal.Dot(start)) / denom
	return vec.Lerp(start, end, t), t, true
}
