package geo

import (
	"github.com/chewxy/math32"

	"goquakemap/vec"
)

// TextureBounds is supplied by a consumer so the parser can turn texture-
// space offsets into normalized [0,1] UVs; the parser itself never opens
// image files (that is an external-collaborator concern).
type TextureBounds interface {
	TextureBounds(name string) (width, height int, ok bool)
}

// UVProjection is the tagged union of the two MAP texture-alignment
// formats. Go has no sum types, so the two formats are realized as
// distinct implementations of a common interface rather than as a
// discriminated struct.
type UVProjection interface {
	// project returns the texture-space (unnormalized) UV of pt on a
	// face whose plane normal is n.
	project(pt, n vec.Vec3) vec.Vec2
	scale() (float32, float32)
}

// StandardUV is the "Standard-100" alignment format: offset, rotation
// and independent axis scale relative to the base-axis projection.
type StandardUV struct {
	OffsetU, OffsetV   float32
	Rotation           float32
	ScaleU, ScaleV     float32
}

func (s StandardUV) scale() (float32, float32) { return s.ScaleU, s.ScaleV }

// calcStandardTangent picks the (u, v) world-axis basis used to flatten a
// face normal into texture space, matching the axis table in
// calcStandardUV (RIGHT_VEC=(0,1,0), FORWARD_VEC=(1,0,0), UP_VEC=(0,0,1)):
// the dominant axis of n selects the other two world axes as (u, v), with
// v always the negated axis.
func calcStandardTangent(n vec.Vec3) (uAxis, vAxis vec.Vec3) {
	rightVec := vec.Vec3{0, 1, 0}
	forwardVec := vec.Vec3{1, 0, 0}
	upVec := vec.Vec3{0, 0, 1}

	ax, ay, az := math32.Abs(n[0]), math32.Abs(n[1]), math32.Abs(n[2])
	switch {
	case az >= ax && az >= ay:
		return forwardVec, rightVec.Mul(-1) // Z dominant -> (x, -y)
	case ax >= ay:
		return rightVec, upVec.Mul(-1) // X dominant -> (y, -z)
	default:
		return forwardVec, upVec.Mul(-1) // Y dominant -> (x, -z)
	}
}

func (s StandardUV) project(pt, n vec.Vec3) vec.Vec2 {
	uAxis, vAxis := calcStandardTangent(n)

	rot := s.Rotation * math32.Pi / 180
	sin, cos := math32.Sincos(rot)

	ru := uAxis.Dot(pt)
	rv := vAxis.Dot(pt)
	u := ru*cos - rv*sin
	v := ru*sin + rv*cos

	su := s.ScaleU
	if su == 0 {
		su = 1
	}
	sv := s.ScaleV
	if sv == 0 {
		sv = 1
	}
	return vec.Vec2{u/su + s.OffsetU, v/sv + s.OffsetV}
}

// ValveUV is the "Valve-220" alignment format: the two texture axes are
// stored explicitly in the map file rather than derived from the face
// normal, which is what lets Valve-format maps be edited without texture
// axes flipping on rotation.
type ValveUV struct {
	UAxis            vec.Vec3
	VAxis            vec.Vec3
	OffsetU, OffsetV float32
	ScaleU, ScaleV   float32
}

func (v ValveUV) scale() (float32, float32) { return v.ScaleU, v.ScaleV }

func (val ValveUV) project(pt, n vec.Vec3) vec.Vec2 {
	su := val.ScaleU
	if su == 0 {
		su = 1
	}
	sv := val.ScaleV
	if sv == 0 {
		sv = 1
	}
	u := val.UAxis.Dot(pt)/su + val.OffsetU
	v := val.VAxis.Dot(pt)/sv + val.OffsetV
	return vec.Vec2{u, v}
}

// AtlasProjection wraps another projection with a fixed pixel offset,
// letting the lightmap packer bake a chart's atlas placement into a
// face's lightmap projection without geo needing to know anything about
// atlas packing itself.
type AtlasProjection struct {
	Inner          UVProjection
	OffsetX, OffsetY float32
}

func NewAtlasProjection(inner UVProjection, offsetX, offsetY float32) AtlasProjection {
	return AtlasProjection{Inner: inner, OffsetX: offsetX, OffsetY: offsetY}
}

func (a AtlasProjection) scale() (float32, float32) { return 1, 1 }

func (a AtlasProjection) project(pt, n vec.Vec3) vec.Vec2 {
	uv := CalcUV(a.Inner, pt, n, LightmapLuxelSize, LightmapLuxelSize)
	return vec.Vec2{uv[0]*LightmapLuxelSize + a.OffsetX, uv[1]*LightmapLuxelSize + a.OffsetY}
}

// CalcUV converts a texture-space projection into a normalized [0,1] UV
// given the texture's pixel dimensions.
func CalcUV(proj UVProjection, pt, n vec.Vec3, texW, texH int) vec.Vec2 {
	tv := proj.project(pt, n)
	w := float32(texW)
	h := float32(texH)
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return vec.Vec2{tv[0] / w, tv[1] / h}
}
