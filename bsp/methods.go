// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"fmt"
	"log/slog"

	"goquakemap/vec"
)

// PointInLeaf walks the worldmodel's node tree to the leaf containing p.
func (m *Model) PointInLeaf(p vec.Vec3) (*MLeaf, error) {
	if m == nil || len(m.Nodes) == 0 {
		return nil, fmt.Errorf("bsp: PointInLeaf: bad model")
	}

	node := m.Node
	for {
		if node.Contents() < 0 {
			return node.(*MLeaf), nil
		}
		n := node.(*MNode)
		plane := n.Plane
		d := plane.Normal.Dot(p) - plane.Dist
		if d > 0 {
			node = n.Children[0]
		} else {
			node = n.Children[1]
		}
	}
}

// DecompressVis expands a leaf's run-length encoded visibility row. An
// empty input (no vis lump) means everything is visible.
func (m *Model) DecompressVis(in []byte) []byte {
	row := (len(m.Leafs) + 6) / 8 // (len(Leafs) - 'leaf[0]' + 7)/8

	if len(in) == 0 {
		for i := 0; i < row; i++ {
			decompressedVis[i] = 0xff
		}
		return decompressedVis[:row]
	}

	j := 0
	for i := 0; i < len(in); i++ {
		if in[i] != 0 {
			decompressedVis[j] = in[i]
			j++
		} else {
			i++
			if i >= len(in) {
				slog.Error("bsp: truncated vis data", "model", m.Name())
				break
			}
			for c := in[i]; c > 0; c-- {
				decompressedVis[j] = 0
				j++
			}
			if j >= row {
				break
			}
		}
	}
	return decompressedVis[:row]
}

var (
	NoVis           []byte
	decompressedVis []byte
	fatpvs          []byte
)

func init() {
	NoVis = bytes.Repeat([]byte{0xff}, MaxMapLeafs/8)
	decompressedVis = make([]byte, MaxMapLeafs/8)
	fatpvs = make([]byte, MaxMapLeafs/8)
}

// LeafPVS returns leaf's potentially-visible-set row, decompressed.
func (m *Model) LeafPVS(leaf *MLeaf) []byte {
	if leaf == m.Leafs[0] { // Leaf 0 is a solid leaf
		return NoVis
	}
	return m.DecompressVis(leaf.CompressedVis)
}

func (m *Model) addToFatPVS(org vec.Vec3, n Node, fpvs *[]byte) {
	node := n
	for {
		if node.Contents() < 0 {
			if node.Contents() != CONTENTS_SOLID {
				pvs := m.LeafPVS(node.(*MLeaf))
				for i := range *fpvs {
					(*fpvs)[i] |= pvs[i]
				}
			}
			return
		}
		no := node.(*MNode)
		plane := no.Plane
		d := plane.Normal.Dot(org) - plane.Dist
		if d > 8 {
			node = no.Children[0]
		} else if d < -8 {
			node = no.Children[1]
		} else {
			m.addToFatPVS(org, no.Children[0], fpvs)
			node = no.Children[1]
		}
	}
}

// FatPVS computes the inclusive-or of every leaf's PVS within 8 units
// of org, a small margin that keeps viewer motion (head bob, a
// waterline crossing) from popping a visible entity out of frame.
func (m *Model) FatPVS(org vec.Vec3) []byte {
	fatbytes := (len(m.Leafs) + 6) / 8
	pvs := fatpvs[:fatbytes]
	for i := range pvs {
		pvs[i] = 0
	}
	m.addToFatPVS(org, m.Node, &pvs)
	return pvs
}
