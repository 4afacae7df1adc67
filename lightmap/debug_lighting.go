package lightmap

import (
	"goquakemap/geo"
	"goquakemap/vec"
)

// PointLight is a minimal light source description for CalculateLighting.
type PointLight struct {
	Origin    vec.Vec3
	Intensity float32
}

// CalculateLighting fills a chart's atlas region with a flat ambient
// term plus unoccluded inverse-square falloff from every light — no
// ray casting against geometry, so it is not a substitute for a real
// lightmap baker (explicitly out of scope). It exists so the packer has
// a non-checkerboard placeholder to test against and so a caller can see
// roughly where their lights land before wiring in a real bake pass.
func CalculateLighting(c Chart, ambient float32, lights []PointLight) [][]float32 {
	out := make([][]float32, c.Height)
	for y := 0; y < c.Height; y++ {
		out[y] = make([]float32, c.Width)
		for x := 0; x < c.Width; x++ {
			world := luxelWorldPos(c.Face, x, y)
			v := ambient
			for _, l := range lights {
				d := l.Origin.Sub(world).Len()
				if d < 1 {
					d = 1
				}
				v += l.Intensity / (d * d)
			}
			if v > 1 {
				v = 1
			}
			out[y][x] = v
		}
	}
	return out
}

// luxelWorldPos approximates a luxel's world position via the face's
// plane and its first vertex as an anchor, offsetting along the face's
// tangent basis by one luxel per pixel. It's an approximation good
// enough for the debug fill above; it does not invert the face's actual
// lightmap projection.
func luxelWorldPos(f *geo.Face, x, y int) vec.Vec3 {
	if len(f.Vertices) == 0 {
		return vec.Vec3{}
	}
	anchor := f.Vertices[0]
	right, up := tangentBasis(f.Plane.Normal)
	return anchor.Add(right.Mul(float32(x) * geo.LightmapLuxelSize)).Add(up.Mul(float32(y) * geo.LightmapLuxelSize))
}

func tangentBasis(n vec.Vec3) (right, up vec.Vec3) {
	ref := vec.Vec3{0, 0, 1}
	if n[2] > 0.9 || n[2] < -0.9 {
		ref = vec.Vec3{1, 0, 0}
	}
	right = n.Cross(ref).Normalize()
	up = n.Cross(right).Normalize()
	return right, up
}
