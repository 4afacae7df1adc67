package palette

import "testing"

func rawPalette() []byte {
	raw := make([]byte, 256*3)
	for i := 0; i < 256; i++ {
		raw[i*3], raw[i*3+1], raw[i*3+2] = byte(i), byte(255-i), byte(i/2)
	}
	return raw
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	if _, err := Decode(make([]byte, 10)); err == nil {
		t.Fatal("expected an error for a palette.lmp shorter than 768 bytes")
	}
}

func TestDecodeAndToRGBA(t *testing.T) {
	pal, err := Decode(rawPalette())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rgba := pal.ToRGBA([]byte{0, 1, 254})
	want := []byte{
		0, 255, 0, 255,
		1, 254, 0, 255,
		254, 1, 127, 255,
	}
	for i := range want {
		if rgba[i] != want[i] {
			t.Fatalf("ToRGBA mismatch at byte %d: got %d, want %d", i, rgba[i], want[i])
		}
	}
}

func TestToRGBATreatsIndex255AsTransparent(t *testing.T) {
	pal, err := Decode(rawPalette())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rgba := pal.ToRGBA([]byte{255})
	if rgba[3] != 0 {
		t.Fatalf("alpha = %d, want 0 for index 255", rgba[3])
	}
}

func TestIsFullbrightRange(t *testing.T) {
	cases := []struct {
		idx  byte
		want bool
	}{
		{0, false},
		{223, false},
		{224, true},
		{254, true},
		{255, false},
	}
	for _, c := range cases {
		if got := IsFullbright(c.idx); got != c.want {
			t.Errorf("IsFullbright(%d) = %v, want %v", c.idx, got, c.want)
		}
	}
}

func TestAlphaEdgeFixFillsTransparentNeighbors(t *testing.T) {
	// A 2x2 image: top-left opaque red, rest transparent black.
	d := []byte{
		255, 0, 0, 255,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}
	AlphaEdgeFix(2, 2, d)
	// Every transparent pixel wraps around to see the opaque red pixel
	// as one of its neighbors, so each should pick up some red.
	for i := 1; i < 4; i++ {
		if d[i*4] == 0 {
			t.Errorf("pixel %d: red channel still 0 after edge fix", i)
		}
	}
}

func TestAlphaEdgeFixLeavesIsolatedTransparentPixelAlone(t *testing.T) {
	d := []byte{0, 0, 0, 0}
	AlphaEdgeFix(1, 1, d)
	if d[0] != 0 || d[1] != 0 || d[2] != 0 {
		t.Fatalf("pixel with no opaque neighbor changed: %v", d)
	}
}
