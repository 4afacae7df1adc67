// Package provider defines the interface every level-format loader in
// this module implements, so a consumer can treat a MAP file and a BSP
// file identically once loaded.
package provider

import "goquakemap/vec"

// SurfaceType classifies a render mesh batch for a consumer that needs
// to skip non-drawing geometry (clip brushes, editor-only skip faces).
type SurfaceType int

const (
	SurfaceSolid SurfaceType = iota
	SurfaceClip
	SurfaceSkip
	SurfaceNoDraw
	SurfaceSky
	SurfaceWater
)

// TextureData is the decoded pixel data for a single texture, or an
// absent value (a nil RGBA) when the source format has no embedded
// image for that name and a consumer must resolve it externally.
type TextureData struct {
	Width, Height int
	RGBA          []byte
}

// EntityAttributes is a read-only view over one entity's key/value pairs.
type EntityAttributes interface {
	AttrString(key string) (string, bool)
	AttrFloat(key string) (float32, bool)
	AttrVec3(key string) (vec.Vec3, bool)
	ClassName() string
}

// PointEntityInfo is a spawn point, light, or other geometry-less entity.
type PointEntityInfo struct {
	Attributes EntityAttributes
	Origin     vec.Vec3
	Angle      float32
}

// SolidEntityInfo is a brush-based entity's exposed identity, without its
// geometry (which arrives separately as RenderMesh batches keyed by the
// same index).
type SolidEntityInfo struct {
	Attributes   EntityAttributes
	IsWorldspawn bool
}

// RenderMesh is one drawable batch: every triangle sharing a texture and
// surface type, already welded within the batch.
type RenderMesh struct {
	TextureName string
	Width       int
	Height      int
	SurfaceType SurfaceType
	Vertices    []MeshVertex
	Indices     []uint32
}

// MeshVertex is the wire-friendly, struct-of-slices-free vertex shape a
// consumer would upload to a GPU buffer directly.
type MeshVertex struct {
	Position   vec.Vec3
	Normal     vec.Vec3
	UV         vec.Vec2
	LightmapUV vec.Vec2
	Tangent    vec.Vec4
}

// TextureBoundsSource lets a loader ask its consumer for a texture's
// pixel dimensions when the source format doesn't carry the image
// itself (MAP files reference textures by name only).
type TextureBoundsSource interface {
	TextureBounds(name string) (width, height int, ok bool)
}

// Provider is the shared surface both the MAP and BSP loaders implement.
type Provider interface {
	Load(path string) error
	LoadBuffer(data []byte, sourceName string) error

	SetTextureBoundsSource(src TextureBoundsSource)

	SolidEntities() []SolidEntityInfo
	PointEntities() []PointEntityInfo
	Worldspawn() (SolidEntityInfo, bool)

	GenerateGeometry() error
	EntityMeshes(entityIndex int) ([]RenderMesh, error)

	TextureNames() []string
	TextureData(name string) (TextureData, bool)
	RequiredWads() []string
}
