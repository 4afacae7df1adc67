// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"strings"

	"goquakemap/palette"
)

// loadSkyTexture splits a sky texture's 256x128 source image into its
// back (solid) and front (alpha-masked overlay) 128x128 halves, and
// derives an average flat-sky color from the front half's opaque
// pixels for use as a horizon fallback when the textured sky is not
// drawn.
func (t *Texture) loadSkyTexture(data []byte, pal *palette.Palette) {
	front := make([]byte, 128*128)
	back := make([]byte, 128*128)
	var r, g, b, count int
	for i := 0; i < 128; i++ {
		for j := 0; j < 128; j++ {
			sidx := i*256 + j
			didx := i*128 + j
			p := data[sidx]
			if p == 0 {
				front[didx] = 255
			} else {
				front[didx] = p
				if pal != nil {
					rgb := pal.ToRGBA([]byte{p})
					r += int(rgb[0])
					g += int(rgb[1])
					b += int(rgb[2])
					count++
				}
			}
			back[didx] = data[sidx+128]
		}
	}

	t.SolidSkyIndices = back
	t.AlphaSkyIndices = front

	if count > 0 {
		t.FlatSky = Color{
			R: float32(r) / (float32(count) * 255),
			G: float32(g) / (float32(count) * 255),
			B: float32(b) / (float32(count) * 255),
		}
	}
}

func checkFullbrights(data []byte) bool {
	for _, d := range data {
		if d > 223 {
			return true
		}
	}
	return false
}

// loadBspTexture records a regular wall texture's raw indexed pixels,
// its fence/fullbright classification, without decoding to RGBA: that
// conversion is deferred to a consumer via provider.TextureData, the
// same policy a WAD mip texture follows.
func (t *Texture) loadBspTexture(data []byte, textureName string) {
	t.IsFence = strings.HasPrefix(textureName, "{")
	t.HasFullbrights = checkFullbrights(data)
	t.Indices = data
}
