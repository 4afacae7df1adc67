package geo

import (
	"strconv"
	"strings"

	"goquakemap/vec"
)

// EntityAttributes is the parsed key/value attribute block common to
// every MAP entity. Go has no base-class inheritance, so SolidEntity and
// PointEntity each embed this rather than deriving from a shared base
// type the way the original's BaseEntity did.
type EntityAttributes struct {
	raw map[string]string
}

func NewEntityAttributes(raw map[string]string) EntityAttributes {
	return EntityAttributes{raw: raw}
}

func (a EntityAttributes) AttrString(key string) (string, bool) {
	v, ok := a.raw[key]
	return v, ok
}

func (a EntityAttributes) AttrFloat(key string) (float32, bool) {
	v, ok := a.raw[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}

func (a EntityAttributes) AttrVec3(key string) (vec.Vec3, bool) {
	v, ok := a.raw[key]
	if !ok {
		return vec.Vec3{}, false
	}
	fields := strings.Fields(v)
	if len(fields) != 3 {
		return vec.Vec3{}, false
	}
	var out vec.Vec3
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return vec.Vec3{}, false
		}
		out[i] = float32(n)
	}
	return out, true
}

// ClassName returns the "classname" attribute every entity carries.
func (a EntityAttributes) ClassName() string {
	v, _ := a.AttrString("classname")
	return v
}

// HasPhongShading reports the "_phong" attribute TrenchBroom writes to
// request smooth shading across a welded mesh. The pipeline does not
// implement shading itself; this is surfaced so a renderer can decide to
// use the welded normals instead of flat per-triangle ones.
func (a EntityAttributes) HasPhongShading() bool {
	v, ok := a.AttrFloat("_phong")
	return ok && v != 0
}

// Keys returns every attribute name, for callers that want to round-trip
// editor metadata (e.g. "_tb_name", "_tb_type") they don't otherwise
// interpret.
func (a EntityAttributes) Keys() []string {
	out := make([]string, 0, len(a.raw))
	for k := range a.raw {
		out = append(out, k)
	}
	return out
}

// SolidEntity is an entity made of one or more brushes (worldspawn, func_*).
type SolidEntity struct {
	EntityAttributes
	Brushes      []*Brush
	IsWorldspawn bool

	Faces []*Face // post-CSG exposed faces, populated by CSG()
}

// PointEntity is an entity with no geometry of its own: a spawn point,
// light, trigger target, etc.
type PointEntity struct {
	EntityAttributes
	Origin vec.Vec3
	Angle  float32
}

func (e *SolidEntity) Origin() (vec.Vec3, bool) {
	return e.AttrVec3("origin")
}
