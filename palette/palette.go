// Package palette decodes Quake's 256-color indexed image data into
// RGBA using a palette.lmp-shaped color table.
package palette

import "github.com/pkg/errors"

// Palette is a 256-entry RGB color table, e.g. as read from gfx/palette.lmp.
type Palette struct {
	entries [256][3]byte
}

// Decode parses a 256*3-byte raw palette.lmp buffer.
func Decode(data []byte) (*Palette, error) {
	if len(data) < 256*3 {
		return nil, errors.Errorf("palette: expected %d bytes, got %d", 256*3, len(data))
	}
	p := &Palette{}
	for i := 0; i < 256; i++ {
		p.entries[i] = [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
	}
	return p, nil
}

// ToRGBA decodes 8-bit indexed pixel data into RGBA8, treating index 255
// as transparent (alpha 0), matching how the engine renders BSP fullbright
// fence textures.
func (p *Palette) ToRGBA(indices []byte) []byte {
	out := make([]byte, len(indices)*4)
	for i, idx := range indices {
		c := p.entries[idx]
		o := i * 4
		out[o], out[o+1], out[o+2] = c[0], c[1], c[2]
		if idx == 255 {
			out[o+3] = 0
		} else {
			out[o+3] = 255
		}
	}
	return out
}

// IsFullbright reports whether idx falls in the palette's fullbright
// (glow) range, used to decide whether a texture needs a separate glow
// pass the way Quake's ID1 palette range 224-255 does.
func IsFullbright(idx byte) bool {
	return idx >= 224 && idx < 255
}
