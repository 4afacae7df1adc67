// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// testBSP assembles a minimal but complete in-memory BSP29 buffer: a
// single axial quad face on one texture, one leaf, one submodel, and a
// worldspawn entity. It exercises the same lump layout readLumpStruct
// decodes from a real file, just built by hand instead of read off
// disk.
type testBSP struct {
	buf    bytes.Buffer
	dirs   map[string]directory
	header header
}

func newTestBSP() *testBSP {
	t := &testBSP{dirs: make(map[string]directory)}
	t.buf.Write(make([]byte, binary.Size(header{})))
	return t
}

func (t *testBSP) writeLump(name string, v any) {
	start := t.buf.Len()
	if err := binary.Write(&t.buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
	t.dirs[name] = directory{Offset: int32(start), Size: int32(t.buf.Len() - start)}
}

func (t *testBSP) writeBytes(name string, data []byte) {
	start := t.buf.Len()
	t.buf.Write(data)
	t.dirs[name] = directory{Offset: int32(start), Size: int32(len(data))}
}

func (t *testBSP) finish(version int32) []byte {
	h := header{
		Version:      version,
		Entities:     t.dirs["entities"],
		Planes:       t.dirs["planes"],
		Textures:     t.dirs["textures"],
		Vertexes:     t.dirs["vertexes"],
		Visibility:   t.dirs["visibility"],
		Nodes:        t.dirs["nodes"],
		Texinfo:      t.dirs["texinfo"],
		Faces:        t.dirs["faces"],
		Lighting:     t.dirs["lighting"],
		ClipNodes:    t.dirs["clipnodes"],
		Leafs:        t.dirs["leafs"],
		MarkSurfaces: t.dirs["marksurfaces"],
		Edges:        t.dirs["edges"],
		SurfaceEdges: t.dirs["surfedges"],
		Models:       t.dirs["models"],
	}
	out := t.buf.Bytes()
	var hbuf bytes.Buffer
	if err := binary.Write(&hbuf, binary.LittleEndian, h); err != nil {
		panic(err)
	}
	copy(out, hbuf.Bytes())
	return out
}

// buildQuadBSP builds a single 64x64 axial quad on the XY plane (Z=0),
// textured by "wall", with no real lightmap data (LightMap == -1).
func buildQuadBSP() []byte {
	t := newTestBSP()

	t.writeLump("vertexes", []vertex{
		{X: 0, Y: 0, Z: 0},
		{X: 64, Y: 0, Z: 0},
		{X: 64, Y: 64, Z: 0},
		{X: 0, Y: 64, Z: 0},
	})

	// Edge 0 is always unused.
	t.writeLump("edges", []edgeV0{
		{Vertex0: 0, Vertex1: 0},
		{Vertex0: 0, Vertex1: 1},
		{Vertex0: 1, Vertex1: 2},
		{Vertex0: 2, Vertex1: 3},
		{Vertex0: 3, Vertex1: 0},
	})
	t.writeLump("surfedges", []int32{1, 2, 3, 4})

	t.writeLump("planes", []plane{
		{Normal: [3]float32{0, 0, 1}, Distance: 0, Type: 2},
	})

	t.writeLump("texinfo", []surface{
		{VectorS: [3]float32{1, 0, 0}, DistS: 0, VectorT: [3]float32{0, 1, 0}, DistT: 0, TextureID: 0, Animated: 0},
	})

	t.writeLump("faces", []faceV0{
		{PlaneID: 0, Side: 0, ListEdgeID: 0, ListEdgeNumber: 4, TexInfoID: 0, LightStyle: [4]uint8{0, 255, 255, 255}, LightMap: -1},
	})

	// textures: header (numtex + offsets) followed by one mipTexture,
	// no pixel data (Offset[0] == 0).
	var texBuf bytes.Buffer
	binary.Write(&texBuf, binary.LittleEndian, int32(1))
	binary.Write(&texBuf, binary.LittleEndian, int32(8)) // header(4) + 1 offset(4)
	var name [16]byte
	copy(name[:], "wall")
	binary.Write(&texBuf, binary.LittleEndian, mipTexture{Name: name, Width: 64, Height: 64})
	t.writeBytes("textures", texBuf.Bytes())

	t.writeBytes("visibility", nil)
	t.writeBytes("lighting", nil)
	t.writeLump("nodes", []nodeV0{})
	t.writeLump("leafs", []leafV0{
		{Type: int32(LeafTypeEmpty), VisOfs: -1, FirstMarkSurface: 0, MarkSurfaceCount: 0},
	})
	t.writeLump("marksurfaces", []uint16{})
	t.writeLump("clipnodes", []clipNodeV0{})

	t.writeLump("models", []model{
		{
			BoundingBox:  [6]float32{0, 0, 0, 64, 64, 0},
			Origin:       [3]float32{0, 0, 0},
			HeadNode:     [4]int32{0, 0, 0, 0},
			VisLeafCount: 0,
			FirstFace:    0,
			FaceCount:    1,
		},
	})

	ents := "{\n\"classname\" \"worldspawn\"\n\"wad\" \"gfx/base.wad\"\n}\n"
	t.writeBytes("entities", append([]byte(ents), 0))

	return t.finish(BSPVERSION)
}

func TestLoadBufferDecodesQuad(t *testing.T) {
	data := buildQuadBSP()
	m := &Model{}
	if err := m.LoadBuffer(data, "quad.bsp", Config{}); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}

	if len(m.Vertexes) != 4 {
		t.Fatalf("Vertexes = %d, want 4", len(m.Vertexes))
	}
	if len(m.Surfaces) != 1 {
		t.Fatalf("Surfaces = %d, want 1", len(m.Surfaces))
	}
	s := m.Surfaces[0]
	if s.Plane == nil || s.TexInfo == nil {
		t.Fatal("surface missing Plane or TexInfo")
	}
	if s.TexInfo.Texture == nil || s.TexInfo.Texture.Name() != "wall" {
		t.Fatalf("surface texture = %v, want wall", s.TexInfo.Texture)
	}
	if s.NumEdges != 4 || s.FirstEdge != 0 {
		t.Fatalf("surface edge range = (%d,%d), want (0,4)", s.FirstEdge, s.NumEdges)
	}
	if len(s.LightSamples) != 0 {
		t.Fatalf("LightSamples = %d bytes, want 0 for LightMap == -1", len(s.LightSamples))
	}

	if len(m.Entities) != 1 {
		t.Fatalf("Entities = %d, want 1", len(m.Entities))
	}
	name, ok := m.Entities[0].Name()
	if !ok || name != "worldspawn" {
		t.Fatalf("Entities[0].Name() = (%q,%v), want worldspawn", name, ok)
	}

	if len(m.Submodels) != 1 {
		t.Fatalf("Submodels = %d, want 1", len(m.Submodels))
	}
	if m.Submodels[0].FaceCount != 1 {
		t.Fatalf("Submodels[0].FaceCount = %d, want 1", m.Submodels[0].FaceCount)
	}

	if m.Node == nil {
		t.Fatal("Node is nil, want the single leaf promoted to root")
	}
}

func TestLoadBufferRejectsBadVersion(t *testing.T) {
	data := buildQuadBSP()
	binary.LittleEndian.PutUint32(data[0:4], 999)
	m := &Model{}
	if err := m.LoadBuffer(data, "bad.bsp", Config{}); err == nil {
		t.Fatal("expected an error for an unsupported version")
	}
}

func TestLoadBufferRejectsShortHeader(t *testing.T) {
	m := &Model{}
	if err := m.LoadBuffer([]byte{1, 2, 3}, "short.bsp", Config{}); err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestPromoteMonochromeToRGB(t *testing.T) {
	mono := []byte{10, 20, 30}
	rgb := promoteMonochromeToRGB(mono)
	want := []byte{10, 10, 10, 20, 20, 20, 30, 30, 30}
	if !bytes.Equal(rgb, want) {
		t.Fatalf("promoteMonochromeToRGB(%v) = %v, want %v", mono, rgb, want)
	}
}

// buildLitQuadBSP is buildQuadBSP but with a real monochrome lighting
// lump sized to the quad's single lightmap block, so .lit promotion and
// LightSamples slicing both have real data to exercise.
func buildLitQuadBSP() []byte {
	t := newTestBSP()

	t.writeLump("vertexes", []vertex{
		{X: 0, Y: 0, Z: 0},
		{X: 64, Y: 0, Z: 0},
		{X: 64, Y: 64, Z: 0},
		{X: 0, Y: 64, Z: 0},
	})
	t.writeLump("edges", []edgeV0{
		{Vertex0: 0, Vertex1: 0},
		{Vertex0: 0, Vertex1: 1},
		{Vertex0: 1, Vertex1: 2},
		{Vertex0: 2, Vertex1: 3},
		{Vertex0: 3, Vertex1: 0},
	})
	t.writeLump("surfedges", []int32{1, 2, 3, 4})
	t.writeLump("planes", []plane{
		{Normal: [3]float32{0, 0, 1}, Distance: 0, Type: 2},
	})
	t.writeLump("texinfo", []surface{
		{VectorS: [3]float32{1, 0, 0}, DistS: 0, VectorT: [3]float32{0, 1, 0}, DistT: 0, TextureID: 0, Animated: 0},
	})
	// extents for a 64x64 quad with S/T mins 0: bmax = floor(64/16+1) = 5,
	// so smax = tmax = (extents>>4)+1 = 6, 36 luxels.
	t.writeLump("faces", []faceV0{
		{PlaneID: 0, Side: 0, ListEdgeID: 0, ListEdgeNumber: 4, TexInfoID: 0, LightStyle: [4]uint8{0, 255, 255, 255}, LightMap: 0},
	})

	var texBuf bytes.Buffer
	binary.Write(&texBuf, binary.LittleEndian, int32(1))
	binary.Write(&texBuf, binary.LittleEndian, int32(8))
	var name [16]byte
	copy(name[:], "wall")
	binary.Write(&texBuf, binary.LittleEndian, mipTexture{Name: name, Width: 64, Height: 64})
	t.writeBytes("textures", texBuf.Bytes())

	t.writeBytes("visibility", nil)
	mono := make([]byte, 36)
	for i := range mono {
		mono[i] = byte(i + 1)
	}
	t.writeBytes("lighting", mono)
	t.writeLump("nodes", []nodeV0{})
	t.writeLump("leafs", []leafV0{
		{Type: int32(LeafTypeEmpty), VisOfs: -1},
	})
	t.writeLump("marksurfaces", []uint16{})
	t.writeLump("clipnodes", []clipNodeV0{})
	t.writeLump("models", []model{
		{BoundingBox: [6]float32{0, 0, 0, 64, 64, 0}, FirstFace: 0, FaceCount: 1},
	})
	ents := "{\n\"classname\" \"worldspawn\"\n}\n"
	t.writeBytes("entities", append([]byte(ents), 0))

	return t.finish(BSPVERSION)
}

func TestLoadBufferPromotesMonochromeLighting(t *testing.T) {
	m := &Model{}
	if err := m.LoadBuffer(buildLitQuadBSP(), "lit.bsp", Config{}); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	s := m.Surfaces[0]
	if len(s.LightSamples) != 36*3 {
		t.Fatalf("LightSamples = %d bytes, want %d", len(s.LightSamples), 36*3)
	}
	for i := 0; i < 36; i++ {
		want := byte(i + 1)
		if s.LightSamples[i*3] != want || s.LightSamples[i*3+1] != want || s.LightSamples[i*3+2] != want {
			t.Fatalf("LightSamples[%d] = (%d,%d,%d), want (%d,%d,%d)",
				i, s.LightSamples[i*3], s.LightSamples[i*3+1], s.LightSamples[i*3+2], want, want, want)
		}
	}
}

func TestLoadLitBufferReplacesLighting(t *testing.T) {
	m := &Model{}
	if err := m.LoadBuffer(buildLitQuadBSP(), "lit.bsp", Config{}); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	lit := make([]byte, 4+36*3)
	binary.LittleEndian.PutUint32(lit[0:4], qlit)
	for i := 0; i < 36*3; i++ {
		lit[4+i] = byte(200)
	}
	m.loadLitBuffer(lit)

	s := m.Surfaces[0]
	if len(s.LightSamples) != 36*3 {
		t.Fatalf("LightSamples = %d bytes, want %d", len(s.LightSamples), 36*3)
	}
	for _, b := range s.LightSamples {
		if b != 200 {
			t.Fatalf("LightSamples contains %d, want all 200 after .lit replacement", b)
		}
	}
}

func TestLoadLitBufferIgnoresBadMagic(t *testing.T) {
	m := &Model{}
	if err := m.LoadBuffer(buildLitQuadBSP(), "lit.bsp", Config{}); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	before := m.litRGB
	m.loadLitBuffer([]byte{'X', 'X', 'X', 'X', 1, 2, 3, 4})
	if &m.litRGB[0] != &before[0] {
		t.Fatal("loadLitBuffer replaced litRGB despite a bad magic")
	}
}

func TestBuildLightMapProducesOpaquePixels(t *testing.T) {
	m := &Model{}
	if err := m.LoadBuffer(buildLitQuadBSP(), "lit.bsp", Config{}); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	s := m.Surfaces[0]
	s.BuildLightMap(defaultLightStyles(), false)
	if len(s.LightmapData) != 36*4 {
		t.Fatalf("LightmapData = %d bytes, want %d", len(s.LightmapData), 36*4)
	}
	for i := 0; i < 36; i++ {
		if s.LightmapData[i*4+3] != 255 {
			t.Fatalf("LightmapData[%d] alpha = %d, want 255", i, s.LightmapData[i*4+3])
		}
	}
}
