// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"goquakemap/provider"
	"goquakemap/vec"
)

type solidRef struct {
	entity   *Entity
	submodel int
}

// Provider adapts Model to the shared provider.Provider surface.
type Provider struct {
	*Model
	cfg Config

	solids     []solidRef
	points     []*Entity
	worldspawn int

	atlas *LightmapAtlas
}

func NewProvider(cfg Config) *Provider {
	return &Provider{Model: &Model{}, cfg: cfg, worldspawn: -1}
}

func (p *Provider) Load(path string) error {
	if err := p.Model.Load(path, p.cfg); err != nil {
		return err
	}
	p.classify()
	p.atlas = nil
	return nil
}

func (p *Provider) LoadBuffer(data []byte, sourceName string) error {
	if err := p.Model.LoadBuffer(data, sourceName, p.cfg); err != nil {
		return err
	}
	p.classify()
	p.atlas = nil
	return nil
}

// classify splits the loaded Entities lump into solid entities (a
// worldspawn, or any entity whose "model" attribute names a submodel by
// index) and point entities, mirroring the classifying callback the
// reference loader this is grounded on passes to its entity parser.
func (p *Provider) classify() {
	p.solids = p.solids[:0]
	p.points = p.points[:0]
	p.worldspawn = -1
	for _, e := range p.Model.Entities {
		name, _ := e.Name()
		if name == "worldspawn" {
			p.worldspawn = len(p.solids)
			p.solids = append(p.solids, solidRef{entity: e, submodel: 0})
			continue
		}
		if modelAttr, ok := e.Property("model"); ok {
			if n, ok := parseSubmodelIndex(modelAttr); ok {
				p.solids = append(p.solids, solidRef{entity: e, submodel: n})
				continue
			}
		}
		p.points = append(p.points, e)
	}
}

// parseSubmodelIndex parses a solid entity's "model" attribute of the
// form "*N", the classic id-software convention for referencing one of
// a BSP's compiled submodels by index.
func parseSubmodelIndex(s string) (int, bool) {
	if !strings.HasPrefix(s, "*") {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SetTextureBoundsSource is a no-op: a BSP's TEXTURES lump already
// carries every referenced texture's pixel dimensions, unlike a MAP
// source which names textures only by string and needs an external
// bounds lookup (see qmap.Provider).
func (p *Provider) SetTextureBoundsSource(src provider.TextureBoundsSource) {}

func (p *Provider) SolidEntities() []provider.SolidEntityInfo {
	out := make([]provider.SolidEntityInfo, len(p.solids))
	for i, sr := range p.solids {
		out[i] = provider.SolidEntityInfo{
			Attributes:   entityAttrs{sr.entity},
			IsWorldspawn: i == p.worldspawn,
		}
	}
	return out
}

func (p *Provider) PointEntities() []provider.PointEntityInfo {
	out := make([]provider.PointEntityInfo, len(p.points))
	for i, e := range p.points {
		attrs := entityAttrs{e}
		origin, _ := attrs.AttrVec3("origin")
		angle, _ := attrs.AttrFloat("angle")
		out[i] = provider.PointEntityInfo{Attributes: attrs, Origin: origin, Angle: angle}
	}
	return out
}

func (p *Provider) Worldspawn() (provider.SolidEntityInfo, bool) {
	if p.worldspawn < 0 {
		return provider.SolidEntityInfo{}, false
	}
	return provider.SolidEntityInfo{
		Attributes:   entityAttrs{p.solids[p.worldspawn].entity},
		IsWorldspawn: true,
	}, true
}

// GenerateGeometry packs the combined lightmap atlas every EntityMeshes
// call needs for its per-vertex lightmap UVs. Unlike qmap's CSG pass,
// the polygons themselves need no work: a BSP's faces are already
// compiled, so the only "generation" left is this derived render
// resource.
func (p *Provider) GenerateGeometry() error {
	if p.atlas != nil {
		return nil
	}
	atlas, err := p.Model.PackLightmaps(defaultLightStyles(), false)
	if err != nil {
		return err
	}
	p.atlas = atlas
	return nil
}

func surfaceTypeOf(s *Surface) provider.SurfaceType {
	switch {
	case s.Flags&SurfaceDrawSky != 0:
		return provider.SurfaceSky
	case s.Flags&(SurfaceDrawWater|SurfaceDrawLava|SurfaceDrawSlime|SurfaceDrawTele) != 0:
		return provider.SurfaceWater
	default:
		return provider.SurfaceSolid
	}
}

// EntityMeshes fan-triangulates every face of the given solid entity's
// submodel, grouped into one batch per texture and surface type. Unlike
// qmap's post-CSG faces, a BSP face's vertices never need welding
// across faces: they were already shared and de-duplicated by the map
// compiler that produced the file.
func (p *Provider) EntityMeshes(entityIndex int) ([]provider.RenderMesh, error) {
	if entityIndex < 0 || entityIndex >= len(p.solids) {
		return nil, provider.NewLoadError(provider.ErrInvalidReference, p.Model.Name(),
			fmt.Errorf("entity index %d out of range", entityIndex))
	}
	if p.atlas == nil {
		if err := p.GenerateGeometry(); err != nil {
			return nil, err
		}
	}
	sub := p.solids[entityIndex].submodel
	if sub < 0 || sub >= len(p.Model.Submodels) {
		return nil, provider.NewLoadError(provider.ErrInvalidReference, p.Model.Name(),
			fmt.Errorf("submodel %d out of range", sub))
	}
	sm := p.Model.Submodels[sub]

	type batchKey struct {
		tex string
		st  provider.SurfaceType
	}
	batches := map[batchKey]*provider.RenderMesh{}
	var order []batchKey

	for i := sm.FirstFace; i < sm.FirstFace+sm.FaceCount; i++ {
		if i < 0 || i >= len(p.Model.Surfaces) {
			continue
		}
		s := p.Model.Surfaces[i]
		if s.TexInfo == nil || s.Plane == nil {
			continue
		}
		texName := ""
		width, height := 0, 0
		if s.TexInfo.Texture != nil {
			texName = s.TexInfo.Texture.Name()
			width, height = s.TexInfo.Texture.Width, s.TexInfo.Texture.Height
		}
		key := batchKey{texName, surfaceTypeOf(s)}
		mesh, ok := batches[key]
		if !ok {
			mesh = &provider.RenderMesh{TextureName: texName, Width: width, Height: height, SurfaceType: key.st}
			batches[key] = mesh
			order = append(order, key)
		}

		base := uint32(len(mesh.Vertices))
		n := 0
		for k := 0; k < s.NumEdges; k++ {
			e := p.Model.SurfaceEdges[s.FirstEdge+k]
			var vIdx int
			if e >= 0 {
				vIdx = p.Model.Edges[e].V[0]
			} else {
				vIdx = p.Model.Edges[-e].V[1]
			}
			if vIdx < 0 || vIdx >= len(p.Model.Vertexes) {
				continue
			}
			point := p.Model.Vertexes[vIdx].Position
			var uv vec.Vec2
			if width > 0 && height > 0 {
				uv[0] = (point.Dot(s.TexInfo.Vecs[0].Pos) + s.TexInfo.Vecs[0].Offset) / float32(width)
				uv[1] = (point.Dot(s.TexInfo.Vecs[1].Pos) + s.TexInfo.Vecs[1].Offset) / float32(height)
			}
			mesh.Vertices = append(mesh.Vertices, provider.MeshVertex{
				Position:   point,
				Normal:     s.Plane.Normal,
				UV:         uv,
				LightmapUV: p.atlas.VertexUV(s, point),
			})
			n++
		}
		for k := 2; k < n; k++ {
			mesh.Indices = append(mesh.Indices, base, base+uint32(k-1), base+uint32(k))
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].tex < order[j].tex })
	out := make([]provider.RenderMesh, len(order))
	for i, k := range order {
		out[i] = *batches[k]
	}
	return out, nil
}

func (p *Provider) TextureNames() []string {
	names := make([]string, 0, len(p.Model.Textures))
	for _, t := range p.Model.Textures {
		if t == nil {
			continue
		}
		names = append(names, t.Name())
	}
	return names
}

// TextureData decodes a wall texture's indexed pixels through the
// configured palette. The packed lightmap atlas is a separate resource,
// returned by GetLightmapData instead.
func (p *Provider) TextureData(name string) (provider.TextureData, bool) {
	if p.cfg.Palette == nil {
		return provider.TextureData{}, false
	}
	for _, t := range p.Model.Textures {
		if t == nil || t.Name() != name || len(t.Indices) == 0 {
			continue
		}
		return provider.TextureData{Width: t.Width, Height: t.Height, RGBA: p.cfg.Palette.ToRGBA(t.Indices)}, true
	}
	return provider.TextureData{}, false
}

// RequiredWads is always empty: a BSP embeds every texture it uses
// directly in its TEXTURES lump, unlike a MAP source which references
// external WAD archives by name.
func (p *Provider) RequiredWads() []string {
	return nil
}

// GetLightmapData returns the packed static lightmap atlas, the
// BSP-only counterpart to TextureData: a MAP source has no precomputed
// lightmap of its own to hand back this way (see the lightmap package's
// Packer for that pipeline's chart packing instead).
func (p *Provider) GetLightmapData() (provider.TextureData, bool) {
	if p.atlas == nil {
		return provider.TextureData{}, false
	}
	return provider.TextureData{Width: p.atlas.Width, Height: p.atlas.Height, RGBA: p.atlas.RGBA}, true
}
