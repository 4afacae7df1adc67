package geo

import "goquakemap/vec"

// LightmapLuxelSize is the world-units-per-luxel Quake used for surface
// lighting; lightmap UVs are computed at this resolution before the
// lightmap package packs and renormalizes them into an atlas.
const LightmapLuxelSize = 16

// BuildVertices derives the final per-corner Vertex data for f's
// boundary loop (post-CSG, pre-triangulation): texture UV from the
// face's projection and the texture's pixel size, lightmap UV at
// LightmapLuxelSize resolution, and the face's flat normal. Tangents are
// filled in by UpdateNormals once triangle winding is known.
func (f *Face) BuildVertices(bounds TextureBounds) []Vertex {
	texW, texH := 1, 1
	if bounds != nil {
		if w, h, ok := bounds.TextureBounds(f.TextureName); ok && w > 0 && h > 0 {
			texW, texH = w, h
		}
	}
	out := make([]Vertex, len(f.Vertices))
	for i, p := range f.Vertices {
		uv := vec.Vec2{}
		if f.Projection != nil {
			uv = CalcUV(f.Projection, p, f.Plane.Normal, texW, texH)
		}
		lm := vec.Vec2{}
		if f.LightmapProjection != nil {
			lm = CalcUV(f.LightmapProjection, p, f.Plane.Normal, LightmapLuxelSize, LightmapLuxelSize)
		}
		out[i] = Vertex{
			Point:      p,
			Normal:     f.Plane.Normal,
			UV:         uv,
			LightmapUV: lm,
		}
	}
	return out
}

// UpdateNormals recomputes a per-triangle flat normal and tangent for
// verts/tris and writes it to every vertex of each triangle. Where two
// triangles share a vertex, the later triangle in tris wins: this
// matches a flat-shaded render mesh, where a shared position legitimately
// carries a different normal depending on which face it came from, and
// there is no blending pass here (a consumer wanting smooth shading uses
// EntityAttributes.HasPhongShading and welds normals itself).
func UpdateNormals(verts []Vertex, tris [][3]int) {
	for _, t := range tris {
		a, b, c := verts[t[0]].Point, verts[t[1]].Point, verts[t[2]].Point
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()

		tangent := vec.Vec4{}
		duv1 := verts[t[1]].UV.Sub(verts[t[0]].UV)
		duv2 := verts[t[2]].UV.Sub(verts[t[0]].UV)
		denom := duv1[0]*duv2[1] - duv2[0]*duv1[1]
		if absf(denom) > vec.EpsilonSplit {
			r := 1 / denom
			e1, e2 := b.Sub(a), c.Sub(a)
			tvec := e1.Mul(duv2[1]*r).Sub(e2.Mul(duv1[1] * r))
			tvec = tvec.Normalize()
			tangent = vec.Vec4{tvec[0], tvec[1], tvec[2], 1}
		}

		for _, idx := range t {
			verts[idx].Normal = n
			verts[idx].Tangent = tangent
		}
	}
}
