// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"strconv"
	"strings"

	"goquakemap/vec"
)

// entityAttrs adapts an Entity's raw key/value pairs to
// provider.EntityAttributes.
type entityAttrs struct {
	e *Entity
}

func (a entityAttrs) AttrString(key string) (string, bool) {
	return a.e.Property(key)
}

func (a entityAttrs) AttrFloat(key string) (float32, bool) {
	v, ok := a.e.Property(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}

func (a entityAttrs) AttrVec3(key string) (vec.Vec3, bool) {
	v, ok := a.e.Property(key)
	if !ok {
		return vec.Vec3{}, false
	}
	return parseEntityVec3(v)
}

func (a entityAttrs) ClassName() string {
	name, _ := a.e.Name()
	return name
}
