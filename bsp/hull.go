// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"log/slog"

	"goquakemap/vec"
)

// Hull is one of a model's collision hulls: point, 32x32x56 player, or
// 32x32x32 ("small") clip node trees, plus the worldmodel's node-0 hull
// used for hitscan traces against full geometry.
type Hull struct {
	ClipNodes     []*ClipNode
	Planes        []*Plane
	FirstClipNode int
	LastClipNode  int
	ClipMins      vec.Vec3
	ClipMaxs      vec.Vec3
}

type tracePlane struct {
	Normal   vec.Vec3
	Distance float32
}

// Trace is the result of RecursiveCheck's sweep of a hull between two
// points.
type Trace struct {
	AllSolid   bool
	StartSolid bool
	InOpen     bool
	InWater    bool
	Fraction   float32
	EndPos     vec.Vec3
	Plane      tracePlane
}

// PointContents returns the CONTENTS_* leaf type num's node number
// resolves to for point p. A caller-visible malformed clip-node index
// (corrupt or truncated BSP data) returns CONTENTS_SOLID rather than
// aborting the process, since this module is a library, not the game
// itself.
func (h *Hull) PointContents(num int, p vec.Vec3) int {
	for num >= 0 {
		if num < h.FirstClipNode || num > h.LastClipNode {
			slog.Error("PointContents: bad clip node index", "num", num)
			return CONTENTS_SOLID
		}
		node := h.ClipNodes[num]
		plane := node.Plane
		d := func() float32 {
			if plane.Type < 3 {
				return p[int(plane.Type)] - plane.Dist
			}
			return plane.Normal.Dot(p) - plane.Dist
		}()
		if d < 0 {
			num = node.Children[1]
		} else {
			num = node.Children[0]
		}
	}
	return num
}

// RecursiveCheck sweeps the segment p1->p2 through the hull, filling
// trace with the first impact found. Returns false once an impact has
// been recorded, matching the original's "stop recursing once we know
// the answer" short-circuit convention; reaching a leaf (solid or not)
// or a bad clip node index returns true, with trace.StartSolid set for
// a solid leaf or a bad index.
func (h *Hull) RecursiveCheck(num int, p1f, p2f float32, p1, p2 vec.Vec3, trace *Trace) bool {
	const epsilon = 0.03125 // 1/32, keeps floating point comparisons stable
	if num < 0 {
		if num != CONTENTS_SOLID {
			trace.AllSolid = false
			if num == CONTENTS_EMPTY {
				trace.InOpen = true
			} else {
				trace.InWater = true
			}
		} else {
			trace.StartSolid = true
		}
		return true
	}
	if num < h.FirstClipNode || num > h.LastClipNode {
		slog.Error("RecursiveCheck: bad clip node index", "num", num)
		trace.StartSolid = true
		return true
	}
	node := h.ClipNodes[num]
	plane := node.Plane
	t1, t2 := func() (float32, float32) {
		if plane.Type < 3 {
			return p1[int(plane.Type)] - plane.Dist, p2[int(plane.Type)] - plane.Dist
		}
		return plane.Normal.Dot(p1) - plane.Dist, plane.Normal.Dot(p2) - plane.Dist
	}()
	if t1 >= 0 && t2 >= 0 {
		return h.RecursiveCheck(node.Children[0], p1f, p2f, p1, p2, trace)
	}
	if t1 < 0 && t2 < 0 {
		return h.RecursiveCheck(node.Children[1], p1f, p2f, p1, p2, trace)
	}

	frac := func() float32 {
		d := t1 - t2
		if t1 < 0 {
			return (t1 + epsilon) / d
		}
		return (t1 - epsilon) / d
	}()
	frac = vec.Clamp[float32](0, frac, 1)
	midf := vec.Lerp3f(p1f, p2f, frac)
	mid := vec.Lerp(p1, p2, frac)
	side := 0
	if t1 < 0 {
		side = 1
	}

	if !h.RecursiveCheck(node.Children[side], p1f, midf, p1, mid, trace) {
		return false
	}
	if h.PointContents(node.Children[side^1], mid) != CONTENTS_SOLID {
		return h.RecursiveCheck(node.Children[side^1], midf, p2f, mid, p2, trace)
	}
	if trace.AllSolid {
		return false
	}
	if side == 0 {
		trace.Plane.Normal = plane.Normal
		trace.Plane.Distance = plane.Dist
	} else {
		trace.Plane.Normal = plane.Normal.Mul(-1)
		trace.Plane.Distance = -plane.Dist
	}
	for h.PointContents(h.FirstClipNode, mid) == CONTENTS_SOLID {
		frac -= 0.1
		if frac < 0 {
			trace.Fraction = midf
			trace.EndPos = mid
			slog.Warn("RecursiveCheck: backed up past 0")
			return false
		}
		midf = vec.Lerp3f(p1f, p2f, frac)
		mid = vec.Lerp(p1, p2, frac)
	}
	trace.Fraction = midf
	trace.EndPos = mid
	return false
}
