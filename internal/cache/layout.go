package cache

import (
	"path/filepath"

	"github.com/Norgate-AV/talon/internal/utils"
)

const (
	// DirName is the per-project cache directory
	DirName = ".talon"

	RecordName  = "build_cache.txt"
	BuilderName = "talon_build"
	HistoryName = "history.db"
)

// Layout holds the cache paths of one project root
type Layout struct {
	Root    string
	Dir     string
	Record  string
	Builder string
	History string
}

// NewLayout computes the cache paths under root for the given GOOS
func NewLayout(root, goos string) Layout {
	dir := filepath.Join(root, DirName)

	return Layout{
		Root:    root,
		Dir:     dir,
		Record:  filepath.Join(dir, RecordName),
		Builder: filepath.Join(dir, utils.ExecutableName(BuilderName, goos)),
		History: filepath.Join(dir, HistoryName),
	}
}
