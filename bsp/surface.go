// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

var blockLights [128 * 128 * 3]uint32

func clampColor(c uint32) byte {
	if c > 255 {
		return 255
	}
	return byte(c)
}

// BuildLightMap resolves a surface's static per-style light samples into
// RGBA8 lightmap pixels, scaled by the current value of each style in
// dynamicStyles. Unlike the engine this is adapted from, there is no
// per-frame dynamic light contribution here: this module only ever
// produces the baked map geometry and its static lighting, never a
// live render frame.
func (s *Surface) BuildLightMap(dynamicStyles LightStyles, overbright bool) {
	smax := (s.extents[S] >> 4) + 1
	tmax := (s.extents[T] >> 4) + 1
	size := smax * tmax
	lightmap := s.LightSamples
	for b := range blockLights {
		blockLights[b] = 0
	}
	if len(lightmap) != 0 {
		n := size * 3
		if len(lightmap) < n {
			n = len(lightmap)
		}
		for m, style := range s.Styles {
			if style == 0xff {
				break
			}
			scale := dynamicStyles[style]
			s.CachedLight[m] = scale // 8.8 fraction
			for i := 0; i < n; i++ {
				blockLights[i] += uint32(lightmap[i]) * uint32(scale)
			}
		}
	}

	s.LightmapData = make([]byte, smax*tmax*4)
	dst := 0
	src := 0
	var r, g, b uint32
	for i := 0; i < tmax; i++ {
		for j := 0; j < smax; j++ {
			if overbright {
				r = blockLights[src] >> 8
				src++
				g = blockLights[src] >> 8
				src++
				b = blockLights[src] >> 8
				src++
			} else {
				r = blockLights[src] >> 7
				src++
				g = blockLights[src] >> 7
				src++
				b = blockLights[src] >> 7
				src++
			}
			s.LightmapData[dst] = clampColor(r)
			dst++
			s.LightmapData[dst] = clampColor(g)
			dst++
			s.LightmapData[dst] = clampColor(b)
			dst++
			s.LightmapData[dst] = 255
			dst++
		}
	}
}
