package qmap

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"goquakemap/geo"
	"goquakemap/mapfile"
	"goquakemap/provider"
	"goquakemap/vec"
)

// QMap is the in-memory representation of one parsed and (optionally)
// geometry-generated MAP file.
type QMap struct {
	config Config

	textures  *TextureTable
	overrides *faceTypeOverrides
	bounds    provider.TextureBoundsSource

	solids []*geo.SolidEntity
	points []*geo.PointEntity

	worldspawn int // index into solids, -1 if none
}

func New(cfg Config) *QMap {
	return &QMap{
		config:     cfg,
		textures:   NewTextureTable(),
		overrides:  newFaceTypeOverrides(),
		worldspawn: -1,
	}
}

func (q *QMap) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return provider.NewLoadError(provider.ErrIoError, path, errors.Wrap(err, "reading map file"))
	}
	return q.LoadBuffer(data, path)
}

func (q *QMap) LoadBuffer(data []byte, sourceName string) error {
	entities, err := mapfile.ParseEntities(data)
	if err != nil {
		return provider.NewLoadError(provider.ErrMalformed, sourceName, errors.Wrap(err, "parsing entities"))
	}
	for _, pe := range entities {
		if pe.IsSolid() {
			se, err := q.buildSolidEntity(pe)
			if err != nil {
				return provider.NewLoadError(provider.ErrMalformed, sourceName, err).WithLine(0)
			}
			if se.ClassName() == "worldspawn" {
				se.IsWorldspawn = true
				q.worldspawn = len(q.solids)
			}
			q.solids = append(q.solids, se)
		} else {
			q.points = append(q.points, q.buildPointEntity(pe))
		}
	}
	slog.Info("qmap: loaded map", "source", sourceName, "solids", len(q.solids), "points", len(q.points), "textures", len(q.textures.Names()))
	return nil
}

func (q *QMap) buildPointEntity(pe *mapfile.ParsedEntity) *geo.PointEntity {
	attrs := geo.NewEntityAttributes(pe.Attributes)
	origin, _ := attrs.AttrVec3("origin")
	angle, _ := attrs.AttrFloat("angle")
	if q.config.ConvertCoordToOGL {
		origin = vec.QuakeToRender(origin)
		angle = vec.QuakeAngleToRender(angle)
	}
	return &geo.PointEntity{EntityAttributes: attrs, Origin: origin, Angle: angle}
}

func (q *QMap) buildSolidEntity(pe *mapfile.ParsedEntity) (*geo.SolidEntity, error) {
	se := &geo.SolidEntity{EntityAttributes: geo.NewEntityAttributes(pe.Attributes)}
	for bi, pb := range pe.Brushes {
		defs := make([]geo.PlaneDef, len(pb.Faces))
		for fi, pf := range pb.Faces {
			plane := geo.PlaneFromPoints(pf.P1, pf.P2, pf.P3)
			q.textures.GetOrAdd(pf.TextureName)
			defs[fi] = geo.PlaneDef{
				Plane:       plane,
				TextureName: pf.TextureName,
				Projection:  q.faceProjection(pf),
				SurfaceType: q.surfaceTypeFor(pf.TextureName),
			}
			defs[fi].LightmapProjection = defs[fi].Projection
		}
		b := geo.NewBrush(bi, defs)
		se.Brushes = append(se.Brushes, b)
	}
	return se, nil
}

func (q *QMap) faceProjection(pf mapfile.ParsedFace) geo.UVProjection {
	if pf.Valve {
		return geo.ValveUV{
			UAxis: pf.UAxis, VAxis: pf.VAxis,
			OffsetU: pf.ValveOffsetU, OffsetV: pf.ValveOffsetV,
			ScaleU: pf.ScaleU, ScaleV: pf.ScaleV,
		}
	}
	return geo.StandardUV{
		OffsetU: pf.OffsetU, OffsetV: pf.OffsetV,
		Rotation: pf.Rotation,
		ScaleU:   pf.ScaleU, ScaleV: pf.ScaleV,
	}
}

func (q *QMap) surfaceTypeFor(textureName string) geo.SurfaceType {
	if v, ok := q.overrides.lookup(textureName); ok {
		return geo.SurfaceType(v)
	}
	lower := strings.ToLower(textureName)
	switch {
	case strings.HasPrefix(lower, "clip"):
		return geo.SurfaceClip
	case strings.HasPrefix(lower, "skip"):
		return geo.SurfaceSkip
	case lower == "null" || lower == "nodraw":
		return geo.SurfaceNoDraw
	default:
		return geo.SurfaceSolid
	}
}

// SetFaceTypeByTextureID forces every face using textureName (matched
// case-insensitively) to surfaceType, overriding the name-prefix
// heuristic in surfaceTypeFor.
func (q *QMap) SetFaceTypeByTextureID(textureName string, surfaceType provider.SurfaceType) {
	q.overrides.set(textureName, int(surfaceType))
}

func (q *QMap) RegisterTextureBoundsSource(src provider.TextureBoundsSource) {
	q.bounds = src
}

func (q *QMap) TextureName(id int) (string, bool) {
	return q.textures.Name(id)
}

func (q *QMap) TextureNames() []string {
	return q.textures.Names()
}

func (q *QMap) Worldspawn() (*geo.SolidEntity, bool) {
	if q.worldspawn < 0 {
		return nil, false
	}
	return q.solids[q.worldspawn], true
}

func (q *QMap) SolidEntities() []*geo.SolidEntity { return q.solids }
func (q *QMap) PointEntities() []*geo.PointEntity { return q.points }

// boundsAdapter lets geo call a provider.TextureBoundsSource through the
// narrower interface the geo package actually needs.
type boundsAdapter struct{ src provider.TextureBoundsSource }

func (b boundsAdapter) TextureBounds(name string) (int, int, bool) {
	if b.src == nil {
		return 0, 0, false
	}
	return b.src.TextureBounds(name)
}

// GenerateGeometry runs CSG for every solid entity. Entities are
// independent (no face reference crosses an entity boundary), so work
// is fanned out across a bounded worker pool and written into a
// pre-sized slice by index, preserving entity order in the result
// regardless of completion order.
func (q *QMap) GenerateGeometry() error {
	n := len(q.solids)
	if n == 0 {
		return nil
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				func() {
					defer func() {
						if r := recover(); r != nil {
							errMu.Lock()
							if firstErr == nil {
								firstErr = fmt.Errorf("qmap: panic generating geometry for entity %d: %v", idx, r)
							}
							errMu.Unlock()
						}
					}()
					q.solids[idx].CSG()
				}()
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// EntityMeshes returns the welded, per-texture render batches for the
// given solid entity index, built from its post-CSG faces.
func (q *QMap) EntityMeshes(entityIndex int) ([]provider.RenderMesh, error) {
	if entityIndex < 0 || entityIndex >= len(q.solids) {
		return nil, provider.NewLoadError(provider.ErrInvalidReference, "", fmt.Errorf("entity index %d out of range", entityIndex))
	}
	se := q.solids[entityIndex]
	bounds := boundsAdapter{q.bounds}

	type batchKey struct {
		tex string
		st  geo.SurfaceType
	}
	batches := map[batchKey]*provider.RenderMesh{}
	var order []batchKey

	for _, f := range se.Faces {
		key := batchKey{f.TextureName, f.SurfaceType}
		mesh, ok := batches[key]
		if !ok {
			w, h, _ := bounds.TextureBounds(f.TextureName)
			mesh = &provider.RenderMesh{
				TextureName: f.TextureName,
				Width:       w,
				Height:      h,
				SurfaceType: provider.SurfaceType(f.SurfaceType),
			}
			batches[key] = mesh
			order = append(order, key)
		}

		verts := f.BuildVertices(bounds)
		tris := f.Triangulate()
		geo.UpdateNormals(verts, tris)

		base := uint32(len(mesh.Vertices))
		for _, v := range verts {
			mv := provider.MeshVertex{
				Position: v.Point, Normal: v.Normal, UV: v.UV, LightmapUV: v.LightmapUV, Tangent: v.Tangent,
			}
			if q.config.ConvertCoordToOGL {
				mv.Position = vec.QuakeToRender(v.Point)
				mv.Normal = vec.QuakeToRender(v.Normal)
				tan := vec.QuakeToRender(vec.Vec3{v.Tangent[0], v.Tangent[1], v.Tangent[2]})
				mv.Tangent = vec.Vec4{tan[0], tan[1], tan[2], v.Tangent[3]}
			}
			mesh.Vertices = append(mesh.Vertices, mv)
		}
		for _, t := range tris {
			mesh.Indices = append(mesh.Indices, base+uint32(t[0]), base+uint32(t[1]), base+uint32(t[2]))
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].tex < order[j].tex })
	out := make([]provider.RenderMesh, len(order))
	for i, k := range order {
		weldBatch(batches[k])
		out[i] = *batches[k]
	}
	return out, nil
}

// weldBatch merges vertices within a single render batch that match on
// position, UV, lightmap UV and normal (all four, within epsilon) and
// rewrites the index buffer to point at the surviving vertex. This is
// the real implementation of the per-batch weld the original source's
// GetEntityMeshes disables with an early skip; skipping it would leave
// every CSG-adjacent face with its own duplicate seam vertices.
func weldBatch(mesh *provider.RenderMesh) {
	const posEps = vec.EpsilonWeld
	const uvEps = 1e-4

	remap := make([]uint32, len(mesh.Vertices))
	var kept []provider.MeshVertex
	for i, v := range mesh.Vertices {
		found := -1
		for j, k := range kept {
			if vec.NearlyEqual(v.Position, k.Position, posEps) &&
				vec.NearlyEqual2(v.UV, k.UV, uvEps) &&
				vec.NearlyEqual2(v.LightmapUV, k.LightmapUV, uvEps) &&
				vec.NearlyEqual(v.Normal, k.Normal, uvEps) {
				found = j
				break
			}
		}
		if found == -1 {
			kept = append(kept, v)
			found = len(kept) - 1
		}
		remap[i] = uint32(found)
	}
	mesh.Vertices = kept
	for i, idx := range mesh.Indices {
		mesh.Indices[i] = remap[idx]
	}
}

// GatherPolygons returns every post-CSG face across all solid entities,
// restored from the original's debug/editor query helper of the same
// name — useful for a consumer doing a one-off scan (e.g. collision mesh
// export) that doesn't want to walk entities and RenderMesh batches
// itself.
func (q *QMap) GatherPolygons() []*geo.Face {
	var out []*geo.Face
	for _, se := range q.solids {
		out = append(out, se.Faces...)
	}
	return out
}

// PolygonsByTexture groups GatherPolygons's result by texture name.
func (q *QMap) PolygonsByTexture() map[string][]*geo.Face {
	out := map[string][]*geo.Face{}
	for _, f := range q.GatherPolygons() {
		out[f.TextureName] = append(out[f.TextureName], f)
	}
	return out
}

// RequiredWads parses the worldspawn "wad" attribute (a semicolon- or
// comma-separated path list) into individual archive names.
func (q *QMap) RequiredWads() []string {
	ws, ok := q.Worldspawn()
	if !ok {
		return nil
	}
	raw, ok := ws.AttrString("wad")
	if !ok || raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ";", ",")
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// Keep just the base file name; the original paths are
		// typically absolute editor-machine paths that don't resolve
		// on a different machine.
		if idx := strings.LastIndexAny(p, `/\`); idx >= 0 {
			p = p[idx+1:]
		}
		out = append(out, p)
	}
	return out
}
