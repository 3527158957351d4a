// Package pack parses the per-game content archives into FileEntry lists,
// extracts raw (post-cipher) payload bytes, and builds new archives.
package pack

import (
	"path/filepath"
	"strings"

	"github.com/ernie/ggtools/internal/game"
)

// FileEntry identifies one packed payload by its byte range inside its
// archive. It is immutable after construction.
type FileEntry struct {
	Filename string
	Offset   int64
	Size     int64
	PackPath string
	Game     game.Game
}

// Extension is the suffix after the first '.' of the basename, so
// "foo.strings.bank" and "foo.assets.bank" are distinguishable — unlike a
// naive filepath.Ext, which would return only ".bank" for both.
func (e FileEntry) Extension() string {
	base := filepath.Base(e.Filename)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[i:]
	}
	return ""
}

func (e FileEntry) String() string {
	return e.Filename + " in " + e.PackPath
}
