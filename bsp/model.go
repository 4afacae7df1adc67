// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import "goquakemap/vec"

// Would be great to type these but positive values are node numbers or so....
const (
	_ = -iota
	CONTENTS_EMPTY
	CONTENTS_SOLID
	CONTENTS_WATER
	CONTENTS_SLIME
	CONTENTS_LAVA
	CONTENTS_SKY
	CONTENTS_ORIGIN
	CONTENTS_CLIP
	CONTENTS_CURRENT_0
	CONTENTS_CURRENT_90
	CONTENTS_CURRENT_180
	CONTENTS_CURRENT_270
	CONTENTS_CURRENT_UP
	CONTENTS_CURRENT_DOWN
)

const (
	SurfaceNone           = 1 << iota
	SurfacePlaneBack      // 0x0002
	SurfaceDrawSky        // 0x0004
	SurfaceDrawSprite     // 0x0008
	SurfaceDrawTurb       // 0x0010
	SurfaceDrawTiled      // 0x0020
	SurfaceDrawBackground // 0x0040
	SurfaceUnderWater     // 0x0080
	SurfaceNoTexture      // 0x0100
	SurfaceDrawFence      // 0x0200
	SurfaceDrawLava       // 0x0400
	SurfaceDrawSlime      // 0x0800
	SurfaceDrawTele       // 0x1000
	SurfaceDrawWater      // 0x2000
)

const BackFaceEpsilon = 0.01

type ST byte

const (
	S ST = iota
	T
)

type Color struct {
	R float32
	G float32
	B float32
	A float32
}

// Plane is the wire-decoded plane, kept distinct from geo.Plane: it
// carries Type/SignBits, the BoxOnPlaneSide culling metadata a BSP node
// walk needs, which a MAP-format brush face has no use for.
type Plane struct {
	Normal   vec.Vec3
	Dist     float32
	Type     byte
	SignBits byte
}

type ClipNode struct {
	Plane    *Plane
	Children [2]int
}

type NodeBase struct {
	contents int // 0 to differentiate from leafs
	visFrame int

	minMaxs [6]float32
}

func NewNodeBase(contents, visframe int, minmax [6]float32) NodeBase {
	return NodeBase{
		contents: contents,
		visFrame: visframe,
		minMaxs:  minmax,
	}
}

type Node interface {
	Contents() int
}

func (n *NodeBase) Contents() int {
	return n.contents
}

type MNode struct {
	NodeBase
	Children [2]Node
	Plane    *Plane
	Surfaces []*Surface
}

type MLeaf struct {
	NodeBase
	CompressedVis     []byte
	MarkSurfaces      []*Surface
	Key               int
	AmbientSoundLevel [4]byte
}

type TexCoord struct {
	Pos vec.Vec3
	S   float32
	T   float32
}

type Surface struct {
	VisFrame int
	Mins     [3]float32
	Maxs     [3]float32

	Plane *Plane
	Flags int

	FirstEdge int
	NumEdges  int

	textureMins [2]int
	extents     [2]int

	TexInfo *TexInfo

	Styles       [4]byte
	CachedLight  [4]int
	LightSamples []byte
	LightmapData []byte
	lightMapOfs  int32
}

type TexInfoPos struct {
	Pos    vec.Vec3
	Offset float32
}

type TexInfo struct {
	Vecs    [2]TexInfoPos
	Texture *Texture
	Flags   uint32
}

// Texture is a decoded (or lazily decodable) BSP wall texture. Unlike
// the engine's GPU-bound texture type, this carries plain pixel bytes:
// uploading to a graphics API is a consumer concern this module never
// touches.
type Texture struct {
	Width, Height  int
	name           string
	Indices        []byte // raw 8-bit palette-indexed pixels, mip 0
	FlatSky        Color
	IsFence        bool // "{"-prefixed name, index 255 is transparent
	HasFullbrights bool

	// SolidSkyIndices/AlphaSkyIndices hold the back/front halves of a
	// decoded sky texture's 256x128 source image, each split to 128x128.
	// Unset for a non-sky texture.
	SolidSkyIndices []byte
	AlphaSkyIndices []byte

	TextureChains [2]*Surface
}

func (t *Texture) Name() string {
	return t.name
}

const (
	MaxMapHulls = 4
	MaxMapLeafs = 70000
)

type Submodel struct {
	Mins         vec.Vec3
	Maxs         vec.Vec3
	Origin       vec.Vec3
	HeadNode     [4]int
	VisLeafCount int
	FirstFace    int
	FaceCount    int
}

type MVertex struct {
	Position vec.Vec3
}

type MEdge struct {
	V                [2]int
	CachedEdgeOffset int
}

// Model is one loaded BSP file: geometry, the node/leaf tree(s), and the
// entity list embedded in its Entities lump.
type Model struct {
	name string

	mins, maxs vec.Vec3
	Radius     float32
	ClipMins   vec.Vec3
	ClipMaxs   vec.Vec3

	Submodels    []*Submodel
	Planes       []*Plane
	Leafs        []*MLeaf
	Vertexes     []*MVertex
	Edges        []*MEdge
	Nodes        []*MNode
	TexInfos     []*TexInfo
	Surfaces     []*Surface
	SurfaceEdges []int32
	ClipNodes    []*ClipNode
	MarkSurfaces []*Surface
	Textures     []*Texture

	Hulls     [MaxMapHulls]Hull
	VisData   []byte
	lightData []byte

	// litRGB is the RGB lighting buffer every surface's LightSamples
	// slices into: either a companion .lit file's payload, or the
	// monochrome LIGHTING lump promoted to RGB (R=G=B) when no .lit
	// file is present.
	litRGB []byte

	Entities []*Entity

	Node Node
}

func (q *Model) Mins() vec.Vec3 { return q.mins }
func (q *Model) Maxs() vec.Vec3 { return q.maxs }
func (q *Model) Name() string   { return q.name }
