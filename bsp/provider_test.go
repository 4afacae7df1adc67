// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"goquakemap/palette"
)

// buildProviderBSP is buildQuadBSP with a point entity added alongside
// worldspawn, so Provider's entity classification has both kinds to
// split, and with real pixel data behind its one texture so TextureData
// has something to decode.
func buildProviderBSP() []byte {
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
	t.writeLump("faces", []faceV0{
		{PlaneID: 0, Side: 0, ListEdgeID: 0, ListEdgeNumber: 4, TexInfoID: 0, LightStyle: [4]uint8{0, 255, 255, 255}, LightMap: -1},
	})

	pixels := make([]byte, 64*64)
	for i := range pixels {
		pixels[i] = byte(i % 256)
	}
	var texBuf bytes.Buffer
	binary.Write(&texBuf, binary.LittleEndian, int32(1))
	binary.Write(&texBuf, binary.LittleEndian, int32(8))
	var name [16]byte
	copy(name[:], "wall")
	binary.Write(&texBuf, binary.LittleEndian, mipTexture{Name: name, Width: 64, Height: 64, Offset: [4]uint32{40, 0, 0, 0}})
	texBuf.Write(pixels)
	t.writeBytes("textures", texBuf.Bytes())

	t.writeBytes("visibility", nil)
	t.writeBytes("lighting", nil)
	t.writeLump("nodes", []nodeV0{})
	t.writeLump("leafs", []leafV0{
		{Type: int32(LeafTypeEmpty), VisOfs: -1},
	})
	t.writeLump("marksurfaces", []uint16{})
	t.writeLump("clipnodes", []clipNodeV0{})
	t.writeLump("models", []model{
		{BoundingBox: [6]float32{0, 0, 0, 64, 64, 0}, FirstFace: 0, FaceCount: 1},
	})

	ents := "{\n\"classname\" \"worldspawn\"\n\"wad\" \"gfx/base.wad\"\n}\n" +
		"{\n\"classname\" \"info_player_start\"\n\"origin\" \"32 32 0\"\n\"angle\" \"90\"\n}\n"
	t.writeBytes("entities", append([]byte(ents), 0))

	return t.finish(BSPVERSION)
}

func testPalette(t *testing.T) *palette.Palette {
	t.Helper()
	raw := make([]byte, 256*3)
	for i := 0; i < 256; i++ {
		raw[i*3] = byte(i)
		raw[i*3+1] = byte(i)
		raw[i*3+2] = byte(i)
	}
	pal, err := palette.Decode(raw)
	if err != nil {
		t.Fatalf("palette.Decode: %v", err)
	}
	return pal
}

func TestProviderClassifiesEntities(t *testing.T) {
	p := NewProvider(Config{})
	if err := p.LoadBuffer(buildProviderBSP(), "provider.bsp"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}

	solids := p.SolidEntities()
	if len(solids) != 1 {
		t.Fatalf("SolidEntities = %d, want 1", len(solids))
	}
	if !solids[0].IsWorldspawn {
		t.Fatal("the only solid entity should be worldspawn")
	}

	points := p.PointEntities()
	if len(points) != 1 {
		t.Fatalf("PointEntities = %d, want 1", len(points))
	}
	if points[0].Origin != [3]float32{32, 32, 0} {
		t.Fatalf("PointEntities[0].Origin = %v, want (32,32,0)", points[0].Origin)
	}
	if points[0].Angle != 90 {
		t.Fatalf("PointEntities[0].Angle = %v, want 90", points[0].Angle)
	}

	ws, ok := p.Worldspawn()
	if !ok {
		t.Fatal("Worldspawn() reported false")
	}
	if name := ws.Attributes.ClassName(); name != "worldspawn" {
		t.Fatalf("Worldspawn().Attributes.ClassName() = %q, want worldspawn", name)
	}
}

func TestParseSubmodelIndex(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOk bool
	}{
		{"*0", 0, true},
		{"*12", 12, true},
		{"*-1", 0, false},
		{"models/foo.mdl", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseSubmodelIndex(c.in)
		if got != c.want || ok != c.wantOk {
			t.Errorf("parseSubmodelIndex(%q) = (%d,%v), want (%d,%v)", c.in, got, ok, c.want, c.wantOk)
		}
	}
}

func TestProviderEntityMeshesBuildsOneBatch(t *testing.T) {
	p := NewProvider(Config{})
	if err := p.LoadBuffer(buildProviderBSP(), "provider.bsp"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	meshes, err := p.EntityMeshes(0)
	if err != nil {
		t.Fatalf("EntityMeshes: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("meshes = %d, want 1 (one texture, one surface type)", len(meshes))
	}
	mesh := meshes[0]
	if mesh.TextureName != "wall" {
		t.Fatalf("mesh.TextureName = %q, want wall", mesh.TextureName)
	}
	if len(mesh.Vertices) != 4 {
		t.Fatalf("mesh.Vertices = %d, want 4", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 6 {
		t.Fatalf("mesh.Indices = %d, want 6 (one fan-triangulated quad)", len(mesh.Indices))
	}
}

func TestProviderEntityMeshesRejectsOutOfRangeIndex(t *testing.T) {
	p := NewProvider(Config{})
	if err := p.LoadBuffer(buildProviderBSP(), "provider.bsp"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if _, err := p.EntityMeshes(5); err == nil {
		t.Fatal("expected an error for an out-of-range entity index")
	}
}

func TestProviderTextureData(t *testing.T) {
	p := NewProvider(Config{Palette: testPalette(t)})
	if err := p.LoadBuffer(buildProviderBSP(), "provider.bsp"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	td, ok := p.TextureData("wall")
	if !ok {
		t.Fatal("TextureData(\"wall\") reported false")
	}
	if td.Width != 64 || td.Height != 64 {
		t.Fatalf("TextureData size = %dx%d, want 64x64", td.Width, td.Height)
	}
	if len(td.RGBA) != 64*64*4 {
		t.Fatalf("TextureData.RGBA = %d bytes, want %d", len(td.RGBA), 64*64*4)
	}
	if _, ok := p.TextureData("missing"); ok {
		t.Fatal("TextureData(\"missing\") reported true")
	}
}

func TestProviderTextureDataNoPalette(t *testing.T) {
	p := NewProvider(Config{})
	if err := p.LoadBuffer(buildProviderBSP(), "provider.bsp"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if _, ok := p.TextureData("wall"); ok {
		t.Fatal("TextureData should report false with no configured palette")
	}
}

func TestProviderRequiredWadsAlwaysEmpty(t *testing.T) {
	p := NewProvider(Config{})
	if err := p.LoadBuffer(buildProviderBSP(), "provider.bsp"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if wads := p.RequiredWads(); len(wads) != 0 {
		t.Fatalf("RequiredWads = %v, want empty", wads)
	}
}

func TestProviderGetLightmapDataBeforeGenerate(t *testing.T) {
	p := NewProvider(Config{})
	if err := p.LoadBuffer(buildProviderBSP(), "provider.bsp"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if _, ok := p.GetLightmapData(); ok {
		t.Fatal("GetLightmapData should report false before GenerateGeometry")
	}
}

func TestProviderGetLightmapDataAfterGenerate(t *testing.T) {
	p := NewProvider(Config{})
	if err := p.LoadBuffer(buildProviderBSP(), "provider.bsp"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if err := p.GenerateGeometry(); err != nil {
		t.Fatalf("GenerateGeometry: %v", err)
	}
	td, ok := p.GetLightmapData()
	if !ok {
		t.Fatal("GetLightmapData should report true after GenerateGeometry")
	}
	if td.Width == 0 || td.Height == 0 {
		t.Fatal("GetLightmapData returned an empty atlas")
	}
}
