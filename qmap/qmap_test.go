package qmap

import (
	"testing"

	"goquakemap/provider"
	"goquakemap/vec"
)

const cubeMap = `{
"classname" "worldspawn"
"wad" "gfx/base.wad;gfx/extra.wad"
{
( 0 0 0 ) ( 0 0 1 ) ( 0 1 1 ) WALL1 0 0 0 1 1
( 64 0 0 ) ( 64 1 0 ) ( 64 1 1 ) WALL1 0 0 0 1 1
( 0 0 0 ) ( 1 0 0 ) ( 1 0 1 ) FLOOR1 0 0 0 1 1
( 0 64 0 ) ( 0 64 1 ) ( 1 64 1 ) FLOOR1 0 0 0 1 1
( 0 0 0 ) ( 0 1 0 ) ( 1 1 0 ) FLOOR1 0 0 0 1 1
( 0 0 64 ) ( 1 0 64 ) ( 1 1 64 ) CEIL1 0 0 0 1 1
}
}
{
"classname" "info_player_start"
"origin" "32 32 0"
"angle" "90"
}
`

func TestLoadBufferParsesWorldspawnAndPoint(t *testing.T) {
	q := New(Config{})
	if err := q.LoadBuffer([]byte(cubeMap), "cube.map"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}

	solids := q.SolidEntities()
	if len(solids) != 1 {
		t.Fatalf("SolidEntities = %d, want 1", len(solids))
	}
	if !solids[0].IsWorldspawn {
		t.Fatal("the only solid entity should be worldspawn")
	}
	if len(solids[0].Brushes) != 1 {
		t.Fatalf("Brushes = %d, want 1", len(solids[0].Brushes))
	}
	if len(solids[0].Brushes[0].Faces) != 6 {
		t.Fatalf("Faces = %d, want 6", len(solids[0].Brushes[0].Faces))
	}

	points := q.PointEntities()
	if len(points) != 1 {
		t.Fatalf("PointEntities = %d, want 1", len(points))
	}
	if points[0].Origin != (vec.Vec3{32, 32, 0}) {
		t.Fatalf("Origin = %v, want (32,32,0)", points[0].Origin)
	}
	if points[0].Angle != 90 {
		t.Fatalf("Angle = %v, want 90", points[0].Angle)
	}

	ws, ok := q.Worldspawn()
	if !ok || ws.ClassName() != "worldspawn" {
		t.Fatalf("Worldspawn() = (%v,%v), want (worldspawn,true)", ws, ok)
	}

	names := q.TextureNames()
	want := []string{"WALL1", "FLOOR1", "CEIL1"}
	if len(names) != len(want) {
		t.Fatalf("TextureNames = %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("TextureNames[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestLoadBufferConvertsCoordsWhenConfigured(t *testing.T) {
	q := New(Config{ConvertCoordToOGL: true})
	if err := q.LoadBuffer([]byte(cubeMap), "cube.map"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	points := q.PointEntities()
	if points[0].Origin != (vec.Vec3{32, 0, -32}) {
		t.Fatalf("Origin = %v, want (32,0,-32)", points[0].Origin)
	}
	if points[0].Angle != 270 {
		t.Fatalf("Angle = %v, want 270", points[0].Angle)
	}
}

func TestRequiredWadsSplitsAndStripsPaths(t *testing.T) {
	q := New(Config{})
	if err := q.LoadBuffer([]byte(cubeMap), "cube.map"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	wads := q.RequiredWads()
	want := []string{"base.wad", "extra.wad"}
	if len(wads) != len(want) {
		t.Fatalf("RequiredWads = %v, want %v", wads, want)
	}
	for i := range want {
		if wads[i] != want[i] {
			t.Errorf("RequiredWads[%d] = %q, want %q", i, wads[i], want[i])
		}
	}
}

func TestGenerateGeometryExposesAllSixCubeFaces(t *testing.T) {
	q := New(Config{})
	if err := q.LoadBuffer([]byte(cubeMap), "cube.map"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if err := q.GenerateGeometry(); err != nil {
		t.Fatalf("GenerateGeometry: %v", err)
	}
	faces := q.GatherPolygons()
	if len(faces) != 6 {
		t.Fatalf("GatherPolygons = %d, want 6 (a single unsubtracted cube keeps every face)", len(faces))
	}

	byTex := q.PolygonsByTexture()
	if got := len(byTex["WALL1"]); got != 2 {
		t.Errorf("WALL1 faces = %d, want 2", got)
	}
	if got := len(byTex["FLOOR1"]); got != 3 {
		t.Errorf("FLOOR1 faces = %d, want 3", got)
	}
	if got := len(byTex["CEIL1"]); got != 1 {
		t.Errorf("CEIL1 faces = %d, want 1", got)
	}
}

func TestEntityMeshesBatchesByTextureSortedByName(t *testing.T) {
	q := New(Config{})
	if err := q.LoadBuffer([]byte(cubeMap), "cube.map"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if err := q.GenerateGeometry(); err != nil {
		t.Fatalf("GenerateGeometry: %v", err)
	}
	meshes, err := q.EntityMeshes(0)
	if err != nil {
		t.Fatalf("EntityMeshes: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("meshes = %d, want 3", len(meshes))
	}
	wantOrder := []string{"CEIL1", "FLOOR1", "WALL1"}
	for i, name := range wantOrder {
		if meshes[i].TextureName != name {
			t.Errorf("meshes[%d].TextureName = %q, want %q", i, meshes[i].TextureName, name)
		}
		if len(meshes[i].Vertices) == 0 {
			t.Errorf("meshes[%d] has no vertices", i)
		}
		if len(meshes[i].Indices) == 0 || len(meshes[i].Indices)%3 != 0 {
			t.Errorf("meshes[%d].Indices = %d, want a nonzero multiple of 3", i, len(meshes[i].Indices))
		}
	}
}

func TestEntityMeshesRejectsOutOfRangeIndex(t *testing.T) {
	q := New(Config{})
	if err := q.LoadBuffer([]byte(cubeMap), "cube.map"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if _, err := q.EntityMeshes(3); err == nil {
		t.Fatal("expected an error for an out-of-range entity index")
	}
}

func TestSurfaceTypeFromTextureNamePrefix(t *testing.T) {
	src := `{
"classname" "worldspawn"
{
( 0 0 0 ) ( 0 0 1 ) ( 0 1 1 ) clip_hull 0 0 0 1 1
( 64 0 0 ) ( 64 1 0 ) ( 64 1 1 ) skip 0 0 0 1 1
( 0 0 0 ) ( 1 0 0 ) ( 1 0 1 ) nodraw 0 0 0 1 1
( 0 64 0 ) ( 0 64 1 ) ( 1 64 1 ) WALL1 0 0 0 1 1
( 0 0 0 ) ( 0 1 0 ) ( 1 1 0 ) WALL1 0 0 0 1 1
( 0 0 64 ) ( 1 0 64 ) ( 1 1 64 ) WALL1 0 0 0 1 1
}
}
`
	q := New(Config{})
	if err := q.LoadBuffer([]byte(src), "types.map"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if err := q.GenerateGeometry(); err != nil {
		t.Fatalf("GenerateGeometry: %v", err)
	}
	meshes, err := q.EntityMeshes(0)
	if err != nil {
		t.Fatalf("EntityMeshes: %v", err)
	}
	byName := map[string]provider.SurfaceType{}
	for _, m := range meshes {
		byName[m.TextureName] = m.SurfaceType
	}
	if byName["clip_hull"] != provider.SurfaceClip {
		t.Errorf("clip_hull surface type = %v, want SurfaceClip", byName["clip_hull"])
	}
	if byName["skip"] != provider.SurfaceSkip {
		t.Errorf("skip surface type = %v, want SurfaceSkip", byName["skip"])
	}
	if byName["nodraw"] != provider.SurfaceNoDraw {
		t.Errorf("nodraw surface type = %v, want SurfaceNoDraw", byName["nodraw"])
	}
	if byName["WALL1"] != provider.SurfaceSolid {
		t.Errorf("WALL1 surface type = %v, want SurfaceSolid", byName["WALL1"])
	}
}

func TestSetFaceTypeByTextureIDOverridesBeforeLoad(t *testing.T) {
	q := New(Config{})
	q.SetFaceTypeByTextureID("WALL1", provider.SurfaceClip)
	if err := q.LoadBuffer([]byte(cubeMap), "cube.map"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if err := q.GenerateGeometry(); err != nil {
		t.Fatalf("GenerateGeometry: %v", err)
	}
	meshes, err := q.EntityMeshes(0)
	if err != nil {
		t.Fatalf("EntityMeshes: %v", err)
	}
	for _, m := range meshes {
		if m.TextureName == "WALL1" && m.SurfaceType != provider.SurfaceClip {
			t.Errorf("WALL1 surface type = %v, want SurfaceClip after override", m.SurfaceType)
		}
	}
}

func TestProviderAdapterDelegatesToQMap(t *testing.T) {
	p := NewProvider(Config{})
	if err := p.LoadBuffer([]byte(cubeMap), "cube.map"); err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if len(p.SolidEntities()) != 1 {
		t.Fatalf("SolidEntities = %d, want 1", len(p.SolidEntities()))
	}
	if _, ok := p.TextureData("WALL1"); ok {
		t.Fatal("MAP provider should never report embedded texture data")
	}
}
