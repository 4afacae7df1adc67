// Package filesystem resolves a level asset name (a MAP, BSP or WAD
// path) against a small ordered list of search directories, the way the
// engine's game directory search order works, without pulling in a full
// virtual-filesystem/pack-archive layer: loading a level's own file is
// this module's job, but decompressing .pak archives or engine content
// namespacing is an external-collaborator concern (spec's file I/O
// non-goal) a host application already owns.
package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// SearchPath is an ordered list of directories to resolve a bare asset
// name against, mirroring the engine's gamedir/basedir precedence
// (later entries are lower priority; the first existing match wins).
type SearchPath struct {
	Dirs []string
}

func NewSearchPath(dirs ...string) *SearchPath {
	return &SearchPath{Dirs: dirs}
}

// Resolve returns the first existing path formed by joining name against
// each search directory in order, or name itself if it is already
// absolute or no search directory yields a match.
func (s *SearchPath) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	for _, dir := range s.Dirs {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return name
}

// ReadFile resolves name against s and reads it whole.
func (s *SearchPath) ReadFile(name string) ([]byte, error) {
	path := s.Resolve(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}

// GetFileContents reads name directly from the working directory or an
// absolute path, for callers that don't need a search path.
func GetFileContents(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return data, nil
}
