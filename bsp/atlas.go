// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"math"

	"github.com/pkg/errors"

	"goquakemap/provider"
	"goquakemap/vec"
)

const (
	lmBlockWidth       = 128
	lmBlockHeight      = 128
	maxSanityLightmaps = 4096
)

// lightmapChart is one lmBlockWidth x lmBlockHeight page a surface's
// lightmap block gets shelf-packed into.
type lightmapChart struct {
	allocated []int
	width     int
	height    int
	x         int
	reverse   bool
}

func newLightmapChart(width, height int) *lightmapChart {
	return &lightmapChart{allocated: make([]int, width), width: width, height: height}
}

// add places a w x h block into the chart, advancing its cursor
// horizontally and reversing direction at each edge so long runs of
// blocks zig-zag instead of stranding a gap on one side.
func (c *lightmapChart) add(w, h int) (x, y int, ok bool) {
	if c.width < w || c.height < h {
		return 0, 0, false
	}

	if c.reverse {
		if c.x < w {
			c.x = 0
			c.reverse = false
			x = c.x
			c.x += w
		} else {
			x = c.x - w
			c.x = x
		}
	} else {
		if c.x+w > c.width {
			c.x = c.width
			c.reverse = true
			x = c.x - w
			c.x = x
		} else {
			x = c.x
			c.x += w
		}
	}

	y = 0
	for i := 0; i < w; i++ {
		if c.allocated[x+i] > y {
			y = c.allocated[x+i]
		}
	}
	if y+h > c.height {
		return 0, 0, false
	}
	for i := 0; i < w; i++ {
		c.allocated[x+i] = y + h
	}
	return x, y, true
}

// lightmapAllocator hands out block placements across a growing set of
// lmBlockWidth x lmBlockHeight pages, opening a new page only once the
// most recently opened one has no room left.
type lightmapAllocator struct {
	charts        []*lightmapChart
	lastAllocated int
}

func (a *lightmapAllocator) allocate(w, h int) (page, x, y int, ok bool) {
	for texnum := a.lastAllocated; texnum < maxSanityLightmaps; texnum++ {
		if texnum == len(a.charts) {
			c := newLightmapChart(lmBlockWidth, lmBlockHeight)
			if len(a.charts) == 0 {
				// Texel (0,0) of the very first page is reserved for a
				// solid gray fill, used by surfaces with no real light
				// samples (fullbright or malformed lightmap offset).
				c.x = 1
				c.allocated[0] = 1
			}
			a.charts = append(a.charts, c)
		}
		x, y, ok = a.charts[texnum].add(w, h)
		if !ok {
			continue
		}
		a.lastAllocated = texnum
		return texnum, x, y, true
	}
	return 0, 0, 0, false
}

type lightmapPlacement struct {
	page int
	x, y int
}

// LightmapAtlas is the packed static lightmap image PackLightmaps
// assembles from every surface's baked light samples.
type LightmapAtlas struct {
	Width, Height int
	RGBA          []byte

	xblocks int
	pageOf  map[*Surface]lightmapPlacement
}

// VertexUV returns the atlas-normalized lightmap UV for a world-space
// point on surf, using the same s/t derivation PackLightmaps used to
// place surf's block.
func (a *LightmapAtlas) VertexUV(surf *Surface, point vec.Vec3) vec.Vec2 {
	pl, ok := a.pageOf[surf]
	if !ok || surf.TexInfo == nil {
		return vec.Vec2{}
	}
	if len(surf.LightSamples) == 0 {
		// Center of the reserved gray texel (0,0) of page 0.
		return vec.Vec2{0.5 / float32(a.Width), 0.5 / float32(a.Height)}
	}
	pageX := (pl.page % a.xblocks) * lmBlockWidth
	pageY := (pl.page / a.xblocks) * lmBlockHeight
	scaleX := float32(1) / (16 * float32(a.Width))
	scaleY := float32(1) / (16 * float32(a.Height))

	s := point.Dot(surf.TexInfo.Vecs[0].Pos) + surf.TexInfo.Vecs[0].Offset
	s -= float32(surf.textureMins[0])
	s += float32((pl.x+pageX)*16 + 8)
	s *= scaleX

	t := point.Dot(surf.TexInfo.Vecs[1].Pos) + surf.TexInfo.Vecs[1].Offset
	t -= float32(surf.textureMins[1])
	t += float32((pl.y+pageY)*16 + 8)
	t *= scaleY

	return vec.Vec2{s, t}
}

// PackLightmaps shelf-packs every surface's baked lightmap block into
// one combined RGBA atlas, resolving styles's current per-style scale
// for the static (non-dynamic) contribution. A surface with no real
// light samples shares the atlas's single reserved gray texel rather
// than consuming its own block.
func (m *Model) PackLightmaps(styles LightStyles, overbright bool) (*LightmapAtlas, error) {
	alloc := &lightmapAllocator{}

	type placed struct {
		surf       *Surface
		page, x, y int
		smax, tmax int
	}
	var blocks []placed

	// The allocator reserves texel (0,0) of page 0 when it opens that
	// page; it is filled gray below.
	blackPage, blackX, blackY := 0, 0, 0

	for _, s := range m.Surfaces {
		if s.TexInfo == nil {
			continue
		}
		smax := (s.extents[S] >> 4) + 1
		tmax := (s.extents[T] >> 4) + 1
		if len(s.LightSamples) == 0 {
			blocks = append(blocks, placed{s, blackPage, blackX, blackY, 1, 1})
			continue
		}
		page, x, y, ok := alloc.allocate(smax, tmax)
		if !ok {
			return nil, provider.NewLoadError(provider.ErrAtlasOverflow, m.name,
				errors.Errorf("no room for a %dx%d lightmap block", smax, tmax))
		}
		blocks = append(blocks, placed{s, page, x, y, smax, tmax})
	}

	pageCount := len(alloc.charts)
	if pageCount == 0 {
		pageCount = 1
	}
	xblocks := int(math.Ceil(math.Sqrt(float64(pageCount))))
	yblocks := (pageCount + xblocks - 1) / xblocks
	width := xblocks * lmBlockWidth
	height := yblocks * lmBlockHeight

	atlas := &LightmapAtlas{
		Width:   width,
		Height:  height,
		RGBA:    make([]byte, width*height*4),
		xblocks: xblocks,
		pageOf:  make(map[*Surface]lightmapPlacement, len(blocks)),
	}
	atlas.RGBA[0], atlas.RGBA[1], atlas.RGBA[2], atlas.RGBA[3] = 0x80, 0x80, 0x80, 0xff

	for _, b := range blocks {
		atlas.pageOf[b.surf] = lightmapPlacement{page: b.page, x: b.x, y: b.y}
		if len(b.surf.LightSamples) == 0 {
			continue
		}
		b.surf.BuildLightMap(styles, overbright)

		pageX := (b.page % xblocks) * lmBlockWidth
		pageY := (b.page / xblocks) * lmBlockHeight
		xofs := pageX + b.x
		yofs := pageY + b.y
		src := b.surf.LightmapData
		for t := 0; t < b.tmax; t++ {
			for s := 0; s < b.smax; s++ {
				si := (t*b.smax + s) * 4
				di := ((yofs+t)*width + (xofs + s)) * 4
				if si+4 > len(src) || di+4 > len(atlas.RGBA) {
					continue
				}
				copy(atlas.RGBA[di:di+4], src[si:si+4])
			}
		}
	}
	return atlas, nil
}
