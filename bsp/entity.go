// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"log/slog"

	"goquakemap/mapfile"
)

// Entity is one object from a BSP file's Entities lump: the same
// "classname"/key/value grammar a MAP file uses, minus any brush
// blocks (those live in the BSP's compiled geometry, referenced here
// only by a "model" "*N" key into Model.Submodels).
type Entity struct {
	properties map[string]string
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

func (e *Entity) PropertyNames() []string {
	n := make([]string, 0, len(e.properties))
	for k := range e.properties {
		n = append(n, k)
	}
	return n
}

// ParseEntities parses a BSP Entities lump using the same key/value
// grammar the MAP file format uses. A malformed lump is logged and
// yields an empty list (mapfile.ParseEntities returns no entities
// alongside its error); the error is not passed to the caller.
func ParseEntities(data []byte) []*Entity {
	data = bytes.TrimRight(data, "\x00")
	parsed, err := mapfile.ParseEntities(data)
	if err != nil {
		slog.Error("bsp: parsing entities lump", "error", err)
	}
	es := make([]*Entity, 0, len(parsed))
	for _, pe := range parsed {
		es = append(es, &Entity{properties: pe.Attributes})
	}
	return es
}
