// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"goquakemap/filesystem"
	"goquakemap/palette"
	"goquakemap/vec"
)

// BSPVERSION and BSPVERSION2 are the only two header versions
// original Quake tools ever wrote; both share the same wire layout
// (16-bit node/leaf/edge indices). Later community extensions (2PSB,
// BSP2) widen those fields to 32 bits for maps beyond the original
// leaf/node budget; this loader does not decode them, since nothing
// in the reference implementation this module is grounded on produces
// or consumes that layout.
const (
	BSPVERSION  = 29
	BSPVERSION2 = 30
)

const qlit uint32 = 0x54494C51 // "QLIT" read as a little-endian uint32

// Config holds BSP load-time options.
type Config struct {
	// ConvertCoordToOGL converts every loaded position and entity
	// origin from Quake's coordinate system to the render convention,
	// matching qmap.Config's option of the same name.
	ConvertCoordToOGL bool

	// Palette decodes a wall texture's indexed pixels into RGBA when
	// TextureData is called. Left nil, TextureData always reports
	// false: a BSP's TEXTURES lump carries indexed pixels only, and
	// this module does not assume which game's palette.lmp applies.
	Palette *palette.Palette
}

func readLumpBytes(data []byte, d directory, name string) ([]byte, error) {
	if d.Size == 0 {
		return nil, nil
	}
	start, end := int64(d.Offset), int64(d.Offset)+int64(d.Size)
	if start < 0 || end > int64(len(data)) {
		return nil, errors.Errorf("bsp: %s lump out of range", name)
	}
	return data[start:end], nil
}

func readLumpStruct[T any](data []byte, d directory, name string) ([]T, error) {
	raw, err := readLumpBytes(data, d, name)
	if err != nil {
		return nil, err
	}
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, errors.Errorf("bsp: %s element has no fixed size", name)
	}
	if len(raw)%size != 0 {
		return nil, errors.Errorf("bsp: %s lump size %d not a multiple of %d", name, len(raw), size)
	}
	count := len(raw) / size
	out := make([]T, count)
	r := bytes.NewReader(raw)
	if err := binary.Read(r, binary.LittleEndian, &out); err != nil {
		return nil, errors.Wrapf(err, "bsp: decoding %s", name)
	}
	return out, nil
}

// Load reads and decodes a BSP file, resolving a companion .lit file
// alongside it if present.
func (m *Model) Load(path string, cfg Config) error {
	data, err := filesystem.GetFileContents(path)
	if err != nil {
		return err
	}
	if err := m.LoadBuffer(data, path, cfg); err != nil {
		return err
	}
	litPath := strings.TrimSuffix(path, ".bsp") + ".lit"
	if lit, err := filesystem.GetFileContents(litPath); err == nil {
		m.loadLitBuffer(lit)
	}
	return nil
}

// LoadBuffer decodes a BSP file already read into memory. sourceName
// is used only for diagnostics (it has no filesystem role once data is
// in hand) and as the model's Name().
func (m *Model) LoadBuffer(data []byte, sourceName string, cfg Config) error {
	if len(data) < binary.Size(header{}) {
		return errors.New("bsp: file too short for header")
	}
	var h header
	if err := binary.Read(bytes.NewReader(data[:binary.Size(header{})]), binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "bsp: reading header")
	}
	if h.Version != BSPVERSION && h.Version != BSPVERSION2 {
		return errors.Errorf("bsp: unsupported version %d", h.Version)
	}

	*m = Model{name: sourceName}

	rawVerts, err := readLumpStruct[vertex](data, h.Vertexes, "vertexes")
	if err != nil {
		return err
	}
	rawEdges, err := readLumpStruct[edgeV0](data, h.Edges, "edges")
	if err != nil {
		return err
	}
	rawFaces, err := readLumpStruct[faceV0](data, h.Faces, "faces")
	if err != nil {
		return err
	}
	rawTexInfo, err := readLumpStruct[surface](data, h.Texinfo, "texinfo")
	if err != nil {
		return err
	}
	rawSurfEdges, err := readLumpStruct[int32](data, h.SurfaceEdges, "surfedges")
	if err != nil {
		return err
	}
	rawModels, err := readLumpStruct[model](data, h.Models, "models")
	if err != nil {
		return err
	}
	rawPlanes, err := readLumpStruct[plane](data, h.Planes, "planes")
	if err != nil {
		return err
	}
	rawNodes, err := readLumpStruct[nodeV0](data, h.Nodes, "nodes")
	if err != nil {
		return err
	}
	rawLeafs, err := readLumpStruct[leafV0](data, h.Leafs, "leafs")
	if err != nil {
		return err
	}
	rawClipNodes, err := readLumpStruct[clipNodeV0](data, h.ClipNodes, "clipnodes")
	if err != nil {
		return err
	}
	rawMarkSurfaces, err := readLumpStruct[uint16](data, h.MarkSurfaces, "marksurfaces")
	if err != nil {
		return err
	}

	m.VisData, err = readLumpBytes(data, h.Visibility, "visibility")
	if err != nil {
		return err
	}
	m.lightData, err = readLumpBytes(data, h.Lighting, "lighting")
	if err != nil {
		return err
	}
	entityText, err := readLumpBytes(data, h.Entities, "entities")
	if err != nil {
		return err
	}

	if err := m.loadTextures(data, h.Textures, cfg.Palette); err != nil {
		return err
	}

	m.Planes = make([]*Plane, len(rawPlanes))
	for i, p := range rawPlanes {
		normal := vec.Vec3{float32(p.Normal[0]), float32(p.Normal[1]), float32(p.Normal[2])}
		m.Planes[i] = &Plane{
			Normal:   normal,
			Dist:     p.Distance,
			Type:     byte(p.Type),
			SignBits: signBitsOf(normal),
		}
	}

	m.Vertexes = make([]*MVertex, len(rawVerts))
	for i, v := range rawVerts {
		m.Vertexes[i] = &MVertex{Position: vec.Vec3{v.X, v.Y, v.Z}}
	}

	m.Edges = make([]*MEdge, len(rawEdges))
	for i, e := range rawEdges {
		m.Edges[i] = &MEdge{V: [2]int{int(e.Vertex0), int(e.Vertex1)}}
	}
	m.SurfaceEdges = rawSurfEdges

	m.TexInfos = make([]*TexInfo, len(rawTexInfo))
	for i, s := range rawTexInfo {
		ti := &TexInfo{
			Vecs: [2]TexInfoPos{
				{Pos: vec.Vec3{s.VectorS[0], s.VectorS[1], s.VectorS[2]}, Offset: s.DistS},
				{Pos: vec.Vec3{s.VectorT[0], s.VectorT[1], s.VectorT[2]}, Offset: s.DistT},
			},
			Flags: s.Animated,
		}
		if int(s.TextureID) < len(m.Textures) {
			ti.Texture = m.Textures[s.TextureID]
		}
		m.TexInfos[i] = ti
	}

	m.Surfaces = make([]*Surface, len(rawFaces))
	for i, f := range rawFaces {
		m.Surfaces[i] = m.buildSurface(f)
	}
	m.litRGB = promoteMonochromeToRGB(m.lightData)
	m.rebuildLightSamples()

	m.ClipNodes = make([]*ClipNode, len(rawClipNodes))
	for i, c := range rawClipNodes {
		// A clip node's children are either another clip node index
		// (>=0) or a CONTENTS_* constant sign-extended from the wire
		// uint16, never a ~leaf-index like a draw node's children.
		cn := &ClipNode{Children: [2]int{int(int16(c.Children[0])), int(int16(c.Children[1]))}}
		if int(c.PlaneNumber) < len(m.Planes) {
			cn.Plane = m.Planes[c.PlaneNumber]
		}
		m.ClipNodes[i] = cn
	}

	m.MarkSurfaces = make([]*Surface, len(rawMarkSurfaces))
	for i, idx := range rawMarkSurfaces {
		if int(idx) < len(m.Surfaces) {
			m.MarkSurfaces[i] = m.Surfaces[idx]
		}
	}

	m.buildNodeTree(rawNodes, rawLeafs)

	m.Submodels = make([]*Submodel, len(rawModels))
	for i, sm := range rawModels {
		m.Submodels[i] = &Submodel{
			Mins:         vec.Vec3{sm.BoundingBox[0], sm.BoundingBox[1], sm.BoundingBox[2]},
			Maxs:         vec.Vec3{sm.BoundingBox[3], sm.BoundingBox[4], sm.BoundingBox[5]},
			Origin:       vec.Vec3{sm.Origin[0], sm.Origin[1], sm.Origin[2]},
			HeadNode:     [4]int{int(sm.HeadNode[0]), int(sm.HeadNode[1]), int(sm.HeadNode[2]), int(sm.HeadNode[3])},
			VisLeafCount: int(sm.VisLeafCount),
			FirstFace:    int(sm.FirstFace),
			FaceCount:    int(sm.FaceCount),
		}
	}
	if len(m.Submodels) > 0 {
		m.mins, m.maxs = m.Submodels[0].Mins, m.Submodels[0].Maxs
		lastClip := len(m.ClipNodes) - 1
		for hull := 1; hull < MaxMapHulls; hull++ {
			m.Hulls[hull] = Hull{
				ClipNodes:     m.ClipNodes,
				Planes:        m.Planes,
				FirstClipNode: m.Submodels[0].HeadNode[hull],
				LastClipNode:  lastClip,
			}
		}
	}

	m.Entities = ParseEntities(entityText)

	if cfg.ConvertCoordToOGL {
		m.convertToRenderCoords()
	}

	return nil
}

func signBitsOf(n vec.Vec3) byte {
	var s byte
	for i := 0; i < 3; i++ {
		if n[i] < 0 {
			s |= 1 << uint(i)
		}
	}
	return s
}

func (m *Model) buildSurface(f faceV0) *Surface {
	s := &Surface{FirstEdge: int(f.ListEdgeID), NumEdges: int(f.ListEdgeNumber)}
	if int(f.PlaneID) < len(m.Planes) {
		p := *m.Planes[f.PlaneID]
		if f.Side != 0 {
			p.Normal = p.Normal.Mul(-1)
			p.Dist = -p.Dist
		}
		s.Plane = &p
	}
	if int(f.TexInfoID) < len(m.TexInfos) {
		s.TexInfo = m.TexInfos[f.TexInfoID]
	}
	s.Styles = f.LightStyle
	s.lightMapOfs = f.LightMap

	name := ""
	if s.TexInfo != nil && s.TexInfo.Texture != nil {
		name = s.TexInfo.Texture.Name()
	}
	switch {
	case strings.HasPrefix(name, "sky"):
		s.Flags |= SurfaceDrawSky
	case strings.HasPrefix(name, "{"):
		s.Flags |= SurfaceDrawFence
	case strings.HasPrefix(name, "*lava"):
		s.Flags |= SurfaceDrawLava
	case strings.HasPrefix(name, "*slime"):
		s.Flags |= SurfaceDrawSlime
	case strings.HasPrefix(name, "*tele"):
		s.Flags |= SurfaceDrawTele
	case strings.HasPrefix(name, "*"):
		s.Flags |= SurfaceDrawWater | SurfaceDrawTurb
	}

	if s.Plane != nil && s.TexInfo != nil {
		m.calcSurfaceExtents(s)
	}
	return s
}

// promoteMonochromeToRGB expands a one-byte-per-luxel LIGHTING lump into
// an RGB triple buffer (R=G=B), the same layout a .lit file's payload
// already has, so every surface's LightSamples can be sliced uniformly
// regardless of which one backs it.
func promoteMonochromeToRGB(mono []byte) []byte {
	out := make([]byte, len(mono)*3)
	for i, d := range mono {
		out[i*3] = d
		out[i*3+1] = d
		out[i*3+2] = d
	}
	return out
}

// rebuildLightSamples re-slices every surface's LightSamples from the
// current litRGB buffer. Called once after the initial monochrome
// promotion, and again if a companion .lit file replaces it.
func (m *Model) rebuildLightSamples() {
	for _, s := range m.Surfaces {
		s.LightSamples = nil
		if s.lightMapOfs < 0 || len(m.litRGB) == 0 {
			continue
		}
		smax := (s.extents[S] >> 4) + 1
		tmax := (s.extents[T] >> 4) + 1
		start := int(s.lightMapOfs) * 3
		if start >= len(m.litRGB) {
			continue
		}
		end := start + smax*tmax*3
		if end > len(m.litRGB) {
			end = len(m.litRGB)
		}
		s.LightSamples = m.litRGB[start:end]
	}
}

// calcSurfaceExtents finds the S/T bounding box of a surface's vertex
// loop in texture space, the basis every lightmap luxel offset and
// render-time UV is measured against.
func (m *Model) calcSurfaceExtents(s *Surface) {
	const maxFloat = 1 << 30
	mins := [2]float32{maxFloat, maxFloat}
	maxs := [2]float32{-maxFloat, -maxFloat}
	for i := 0; i < s.NumEdges; i++ {
		e := m.SurfaceEdges[s.FirstEdge+i]
		var vIdx int
		if e >= 0 {
			vIdx = m.Edges[e].V[0]
		} else {
			vIdx = m.Edges[-e].V[1]
		}
		if vIdx >= len(m.Vertexes) {
			continue
		}
		p := m.Vertexes[vIdx].Position
		for j := 0; j < 2; j++ {
			val := p.Dot(s.TexInfo.Vecs[j].Pos) + s.TexInfo.Vecs[j].Offset
			if val < mins[j] {
				mins[j] = val
			}
			if val > maxs[j] {
				maxs[j] = val
			}
		}
	}
	for i := 0; i < 2; i++ {
		bmin := int(mins[i] / 16)
		bmax := int(maxs[i]/16 + 1)
		s.textureMins[i] = bmin * 16
		s.extents[i] = (bmax - bmin) * 16
	}
}

func (m *Model) buildNodeTree(rawNodes []nodeV0, rawLeafs []leafV0) {
	m.Leafs = make([]*MLeaf, len(rawLeafs))
	for i, l := range rawLeafs {
		leaf := &MLeaf{
			NodeBase:          NewNodeBase(int(l.Type), 0, [6]float32{}),
			Key:               i,
			AmbientSoundLevel: l.Ambients,
		}
		if l.VisOfs >= 0 && int(l.VisOfs) < len(m.VisData) {
			leaf.CompressedVis = m.VisData[l.VisOfs:]
		}
		if int(l.FirstMarkSurface)+int(l.MarkSurfaceCount) <= len(m.MarkSurfaces) {
			leaf.MarkSurfaces = m.MarkSurfaces[l.FirstMarkSurface : l.FirstMarkSurface+l.MarkSurfaceCount]
		}
		m.Leafs[i] = leaf
	}

	m.Nodes = make([]*MNode, len(rawNodes))
	for i := range rawNodes {
		m.Nodes[i] = &MNode{NodeBase: NewNodeBase(0, 0, [6]float32{})}
	}
	childOf := func(v int16) Node {
		if v >= 0 {
			if int(v) < len(m.Nodes) {
				return m.Nodes[v]
			}
			return nil
		}
		idx := ^int(v)
		if idx < len(m.Leafs) {
			return m.Leafs[idx]
		}
		return nil
	}
	for i, n := range rawNodes {
		mn := m.Nodes[i]
		if int(n.PlaneID) < len(m.Planes) {
			mn.Plane = m.Planes[n.PlaneID]
		}
		mn.Children = [2]Node{childOf(int16(n.Children[0])), childOf(int16(n.Children[1]))}
		if int(n.FirstSurface)+int(n.SurfaceCount) <= len(m.Surfaces) {
			mn.Surfaces = m.Surfaces[n.FirstSurface : n.FirstSurface+n.SurfaceCount]
		}
	}
	if len(m.Nodes) > 0 {
		m.Node = m.Nodes[0]
	} else if len(m.Leafs) > 0 {
		m.Node = m.Leafs[0]
	}
}

func (m *Model) loadTextures(data []byte, d directory, pal *palette.Palette) error {
	raw, err := readLumpBytes(data, d, "textures")
	if err != nil || len(raw) < 4 {
		return err
	}
	numTex := int(int32(binary.LittleEndian.Uint32(raw[0:4])))
	if numTex <= 0 {
		return nil
	}
	offsets := make([]int32, numTex)
	for i := 0; i < numTex; i++ {
		start := 4 + i*4
		if start+4 > len(raw) {
			return errors.New("bsp: textures mip header truncated")
		}
		offsets[i] = int32(binary.LittleEndian.Uint32(raw[start : start+4]))
	}

	m.Textures = make([]*Texture, numTex)
	for i, off := range offsets {
		if off < 0 || int(off)+40 > len(raw) {
			continue
		}
		var mt mipTexture
		if err := binary.Read(bytes.NewReader(raw[off:off+40]), binary.LittleEndian, &mt); err != nil {
			slog.Error("bsp: decoding miptex", "index", i, "error", err)
			continue
		}
		name := string(bytes.TrimRight(mt.Name[:], "\x00"))
		tex := &Texture{Width: int(mt.Width), Height: int(mt.Height), name: name}

		if mt.Offset[0] != 0 {
			pixStart := int(off) + int(mt.Offset[0])
			pixLen := int(mt.Width) * int(mt.Height)
			if pixStart >= 0 && pixStart+pixLen <= len(raw) {
				pixels := raw[pixStart : pixStart+pixLen]
				if strings.HasPrefix(name, "sky") && mt.Width == 256 && mt.Height == 128 {
					tex.loadSkyTexture(pixels, pal)
				} else {
					tex.loadBspTexture(pixels, name)
				}
			}
		}
		m.Textures[i] = tex
	}
	return nil
}

// loadLitBuffer replaces the monochrome-promoted lighting buffer with a
// companion .lit file's higher-fidelity RGB data, if its magic checks
// out, and re-slices every surface's LightSamples to match.
func (m *Model) loadLitBuffer(data []byte) {
	if len(data) < 8 {
		return
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != qlit {
		slog.Warn("bsp: .lit file has wrong magic, ignoring")
		return
	}
	m.litRGB = data[4:]
	m.rebuildLightSamples()
}

func (m *Model) convertToRenderCoords() {
	for _, v := range m.Vertexes {
		v.Position = vec.QuakeToRender(v.Position)
	}
	for _, sm := range m.Submodels {
		sm.Origin = vec.QuakeToRender(sm.Origin)
		sm.Mins = vec.QuakeToRender(sm.Mins)
		sm.Maxs = vec.QuakeToRender(sm.Maxs)
	}
	for _, p := range m.Planes {
		p.Normal = vec.QuakeToRender(p.Normal)
	}
	for _, e := range m.Entities {
		originStr, ok := e.Property("origin")
		if !ok {
			continue
		}
		v, ok := parseEntityVec3(originStr)
		if !ok {
			continue
		}
		v = vec.QuakeToRender(v)
		e.properties["origin"] = formatVec3(v)
	}
}

func parseEntityVec3(s string) (vec.Vec3, bool) {
	var v vec.Vec3
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return v, false
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, false
		}
		v[i] = float32(f)
	}
	return v, true
}

func formatVec3(v vec.Vec3) string {
	return strconv.FormatFloat(float64(v[0]), 'g', -1, 32) + " " +
		strconv.FormatFloat(float64(v[1]), 'g', -1, 32) + " " +
		strconv.FormatFloat(float64(v[2]), 'g', -1, 32)
}

// Load is the package-level convenience entry point: it builds a fresh
// Model and loads path into it.
func Load(path string, cfg Config) (*Model, error) {
	m := &Model{}
	if err := m.Load(path, cfg); err != nil {
		return nil, err
	}
	return m, nil
}
