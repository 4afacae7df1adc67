// Package lightmap packs per-face lightmap charts into a single atlas
// texture and renormalizes each face's lightmap UVs into atlas space.
// Computing the actual light values (ray casting against occluders) is
// out of scope; Packer only arranges space and offers a flat-ambient
// debug fill so a caller has something to look at before wiring in a
// real baker.
package lightmap

import (
	"image"
	"image/color"
	"sort"

	"github.com/pkg/errors"

	"goquakemap/geo"
	"goquakemap/provider"
)

// Chart is one face's lightmap footprint before packing.
type Chart struct {
	Face          *geo.Face
	Width, Height int
	// computed by Pack
	X, Y int
}

// Packer lays out charts into a fixed-size atlas using a shelf packer:
// charts are sorted tallest-first and placed left-to-right along
// growing shelves, which wastes less space than placing them in
// arbitrary order when chart heights vary widely (true of Quake faces,
// where a thin trim strip sits next to a large floor slab).
type Packer struct {
	AtlasWidth, AtlasHeight int
}

func NewPacker(width, height int) *Packer {
	return &Packer{AtlasWidth: width, AtlasHeight: height}
}

// ChartFor computes a chart's pixel footprint from its face's lightmap
// UV extents at geo.LightmapLuxelSize resolution.
func ChartFor(f *geo.Face) Chart {
	if len(f.Vertices) == 0 {
		return Chart{Face: f}
	}
	minU, minV := float32(1e30), float32(1e30)
	maxU, maxV := float32(-1e30), float32(-1e30)
	for _, p := range f.Vertices {
		if f.LightmapProjection == nil {
			continue
		}
		uv := geo.CalcUV(f.LightmapProjection, p, f.Plane.Normal, geo.LightmapLuxelSize, geo.LightmapLuxelSize)
		if uv[0] < minU {
			minU = uv[0]
		}
		if uv[0] > maxU {
			maxU = uv[0]
		}
		if uv[1] < minV {
			minV = uv[1]
		}
		if uv[1] > maxV {
			maxV = uv[1]
		}
	}
	// CalcUV at LightmapLuxelSize already yields luxel units.
	w := int(maxU-minU) + 1
	h := int(maxV-minV) + 1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return Chart{Face: f, Width: w, Height: h}
}

// Pack places every chart into the atlas and returns the filled charts
// (with X/Y set) in packed order. It returns an AtlasOverflow LoadError
// if the atlas dimensions given to NewPacker are too small to hold every
// chart.
func (p *Packer) Pack(charts []Chart) ([]Chart, error) {
	sorted := append([]Chart(nil), charts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Height > sorted[j].Height })

	var out []Chart
	shelfY, shelfHeight, cursorX := 0, 0, 0
	const padding = 1
	for _, c := range sorted {
		if cursorX+c.Width > p.AtlasWidth {
			shelfY += shelfHeight + padding
			shelfHeight = 0
			cursorX = 0
		}
		if shelfY+c.Height > p.AtlasHeight {
			return nil, provider.NewLoadError(provider.ErrAtlasOverflow, "", errors.Errorf(
				"lightmap atlas %dx%d too small for chart %dx%d", p.AtlasWidth, p.AtlasHeight, c.Width, c.Height))
		}
		c.X, c.Y = cursorX, shelfY
		out = append(out, c)
		cursorX += c.Width + padding
		if c.Height > shelfHeight {
			shelfHeight = c.Height
		}
	}
	return out, nil
}

// NormalizeUV rewrites c.Face's lightmap projection in place so that
// subsequent geo.Face.BuildVertices calls (given the atlas's pixel
// dimensions as the texture size) produce UVs in final atlas space.
func (p *Packer) NormalizeUV(c Chart) {
	if c.Face.LightmapProjection == nil {
		return
	}
	c.Face.LightmapProjection = geo.NewAtlasProjection(c.Face.LightmapProjection, float32(c.X), float32(c.Y))
}

// DebugAtlasImage renders a checkerboard placeholder the size of the
// atlas, restored from the original lighting tool's debug preview so a
// consumer can visually confirm chart placement before a real baker is
// wired in.
func (p *Packer) DebugAtlasImage(charts []Chart) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.AtlasWidth, p.AtlasHeight))
	for _, c := range charts {
		for y := 0; y < c.Height; y++ {
			for x := 0; x < c.Width; x++ {
				checker := (x/4+y/4)%2 == 0
				col := color.RGBA{R: 80, G: 80, B: 80, A: 255}
				if checker {
					col = color.RGBA{R: 160, G: 160, B: 160, A: 255}
				}
				img.SetRGBA(c.X+x, c.Y+y, col)
			}
		}
	}
	return img
}
