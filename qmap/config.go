// Package qmap implements the MAP text format loader: parsing via
// mapfile, brush construction and CSG via geo, and the provider.Provider
// surface a consumer uses regardless of source format.
package qmap

// Config holds the load-time options for a MAP source. Unlike the
// engine's live cvar system (which exists for a running game session —
// save/restore, console notification, archival to config.cfg) this is a
// plain struct: a one-shot library load has no session to persist
// against.
type Config struct {
	// ConvertCoordToOGL converts from Quake's coordinate system (X
	// forward, Y left, Z up) to the render convention (X right, Y up,
	// Z forward): point entity origins and angles when the map is
	// loaded, and render mesh positions, normals and tangents when
	// EntityMeshes builds them.
	ConvertCoordToOGL bool
}
