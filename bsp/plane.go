// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"log/slog"

	"goquakemap/vec"
)

// BoxOnPlaneSide reports which side(s) of p the axis-aligned box
// [mins,maxs] falls on: 1 for entirely in front, 2 for entirely behind,
// 3 for straddling. Axial planes take the cheap mins/maxs component
// shortcut; general planes use the precomputed SignBits to pick the
// nearest/farthest box corner without a branch per axis.
func (p *Plane) BoxOnPlaneSide(mins, maxs vec.Vec3) int {
	if p.Type < 3 {
		if p.Dist <= mins[int(p.Type)] {
			return 1
		}
		if p.Dist >= maxs[int(p.Type)] {
			return 2
		}
		return 3
	}
	d1, d2 := signBitCorners(p.Normal, mins, maxs, p.SignBits)
	sides := 0
	if d1 >= p.Dist {
		sides = 1
	}
	if d2 < p.Dist {
		sides |= 2
	}
	return sides
}

func signBitCorners(n, mins, maxs vec.Vec3, signBits byte) (float32, float32) {
	switch signBits {
	case 0:
		return n[0]*maxs[0] + n[1]*maxs[1] + n[2]*maxs[2],
			n[0]*mins[0] + n[1]*mins[1] + n[2]*mins[2]
	case 1:
		return n[0]*mins[0] + n[1]*maxs[1] + n[2]*maxs[2],
			n[0]*maxs[0] + n[1]*mins[1] + n[2]*mins[2]
	case 2:
		return n[0]*maxs[0] + n[1]*mins[1] + n[2]*maxs[2],
			n[0]*mins[0] + n[1]*maxs[1] + n[2]*mins[2]
	case 3:
		return n[0]*mins[0] + n[1]*mins[1] + n[2]*maxs[2],
			n[0]*maxs[0] + n[1]*maxs[1] + n[2]*mins[2]
	case 4:
		return n[0]*maxs[0] + n[1]*maxs[1] + n[2]*mins[2],
			n[0]*mins[0] + n[1]*mins[1] + n[2]*maxs[2]
	case 5:
		return n[0]*mins[0] + n[1]*maxs[1] + n[2]*mins[2],
			n[0]*maxs[0] + n[1]*mins[1] + n[2]*maxs[2]
	case 6:
		return n[0]*maxs[0] + n[1]*mins[1] + n[2]*mins[2],
			n[0]*mins[0] + n[1]*maxs[1] + n[2]*maxs[2]
	case 7:
		return n[0]*mins[0] + n[1]*mins[1] + n[2]*mins[2],
			n[0]*maxs[0] + n[1]*maxs[1] + n[2]*maxs[2]
	default:
		slog.Error("BoxOnPlaneSide: bad signbits", "signBits", signBits)
		return 0, 0
	}
}
