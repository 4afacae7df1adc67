package lightmap

import (
	"testing"

	"goquakemap/geo"
	"goquakemap/vec"
)

func TestCalculateLightingAppliesAmbientWithNoLights(t *testing.T) {
	c := Chart{Face: quadFace(), Width: 3, Height: 2}
	out := CalculateLighting(c, 0.25, nil)
	if len(out) != 2 {
		t.Fatalf("rows = %d, want 2", len(out))
	}
	for y, row := range out {
		if len(row) != 3 {
			t.Fatalf("row %d has %d columns, want 3", y, len(row))
		}
		for x, v := range row {
			if v != 0.25 {
				t.Errorf("[%d][%d] = %v, want 0.25 (ambient only)", y, x, v)
			}
		}
	}
}

func TestCalculateLightingAddsFalloffAndClamps(t *testing.T) {
	c := Chart{Face: quadFace(), Width: 1, Height: 1}
	lights := []PointLight{{Origin: vec.Vec3{0, 0, 0}, Intensity: 1000}}
	out := CalculateLighting(c, 0, lights)
	if out[0][0] != 1 {
		t.Fatalf("value = %v, want 1 (clamped)", out[0][0])
	}
}

func TestCalculateLightingEmptyFaceDoesNotPanic(t *testing.T) {
	c := Chart{Face: &geo.Face{}, Width: 2, Height: 2}
	out := CalculateLighting(c, 0.1, nil)
	if out[0][0] != 0.1 {
		t.Fatalf("value = %v, want ambient 0.1 even with no face vertices", out[0][0])
	}
}
