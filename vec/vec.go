// Package vec collects the vector math primitives shared by every level
// format package. It wraps github.com/go-gl/mathgl/mgl32 rather than
// hand-rolling vector arithmetic: mgl32.Vec2/Vec3/Vec4 are plain
// [N]float32 arrays, so they support both index access (mins[int(axis)])
// and named accessors (.X()/.Y()/.Z()), which is what the rest of this
// module needs from a plane/AABB axis lookup.
package vec

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type (
	Vec2 = mgl32.Vec2
	Vec3 = mgl32.Vec3
	Vec4 = mgl32.Vec4
)

// Epsilon policy. These are deliberately not unified into a single value:
// each guards a different geometric decision and was tuned independently.
const (
	EpsilonClassify = 1e-3  // point-vs-plane classification (on/front/back)
	EpsilonSplit    = 1e-5  // degenerate-split rejection during face clipping
	EpsilonDet      = 0.008 // triple-plane determinant near-zero rejection
	EpsilonLegal    = 8e-4  // brush-vertex legality test against face half-spaces
	EpsilonWeld     = 5e-3  // position-only vertex welding
	EpsilonEdge     = 5e-2  // T-junction edge-containment test
	EpsilonDedup    = 1e-3  // per-face "merge with earlier face" vertex dedup
)

// MinMax returns the componentwise min and max of a and b.
func MinMax(a, b Vec3) (Vec3, Vec3) {
	min := func(x, y float32) float32 {
		if x < y {
			return x
		}
		return y
	}
	max := func(x, y float32) float32 {
		if x > y {
			return x
		}
		return y
	}
	return Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])},
		Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// Lerp returns the weighted average of a and b, frac in [0,1].
func Lerp(a, b Vec3, frac float32) Vec3 {
	return a.Mul(1 - frac).Add(b.Mul(frac))
}

// NearlyEqual reports whether a and b are within eps of each other on
// every axis.
func NearlyEqual(a, b Vec3, eps float32) bool {
	return math32.Abs(a[0]-b[0]) <= eps &&
		math32.Abs(a[1]-b[1]) <= eps &&
		math32.Abs(a[2]-b[2]) <= eps
}

// NearlyEqual2 is the Vec2 analogue of NearlyEqual, used for UV welding.
func NearlyEqual2(a, b Vec2, eps float32) bool {
	return math32.Abs(a[0]-b[0]) <= eps && math32.Abs(a[1]-b[1]) <= eps
}

// QuakeToRender converts a point from Quake's coordinate system
// (X forward, Y left, Z up) to the render convention used by this module
// (X right, Y up, Z forward).
func QuakeToRender(v Vec3) Vec3 {
	return Vec3{v[0], v[2], -v[1]}
}

// QuakeAngleToRender adjusts a yaw angle (degrees) for the same
// handedness flip QuakeToRender applies to positions.
func QuakeAngleToRender(yaw float32) float32 {
	return AngleMod(yaw + 180)
}
