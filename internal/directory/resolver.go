// Package directory locates the root of a talon project, the directory that
// directly contains build.cc.
package directory

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Norgate-AV/talon/internal/utils"
)

// BuildScript is the file that marks a project root
const BuildScript = "build.cc"

var (
	ErrNotFound    = errors.New("no build script found")
	ErrInvalidPath = errors.New("invalid project path")
)

// Resolver resolves project roots relative to an explicit working directory
type Resolver struct {
	WorkDir string
}

// NewResolver creates a resolver anchored at workDir
func NewResolver(workDir string) *Resolver {
	return &Resolver{WorkDir: workDir}
}

// HasBuildScript reports whether dir directly contains build.cc
func HasBuildScript(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, BuildScript))
	return err == nil && !info.IsDir()
}

// FindBuildPathFrom searches for build.cc starting at start, walking up
// through parent directories when backtrack is set
func FindBuildPathFrom(start string, backtrack bool) (string, error) {
	dir := filepath.Clean(start)

	for {
		slog.Debug("checking for build script", "path", filepath.Join(dir, BuildScript))
		if HasBuildScript(dir) {
			slog.Debug("found build script", "dir", dir)
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if !backtrack {
			return "", fmt.Errorf("%w in current directory", ErrNotFound)
		}

		if parent == dir {
			return "", fmt.Errorf("%w in current or parent directories", ErrNotFound)
		}

		dir = parent
		slog.Debug("moving up to parent directory", "dir", dir)
	}
}

// Resolve returns the project root for path. An empty path starts the search
// at the working directory.
func (r *Resolver) Resolve(path string, backtrack bool) (string, error) {
	if path == "" {
		workDir, err := r.workDir()
		if err != nil {
			return "", err
		}

		return FindBuildPathFrom(workDir, backtrack)
	}

	dir, err := r.resolvePath(path)
	if err != nil {
		return "", err
	}

	if backtrack {
		return FindBuildPathFrom(dir, true)
	}

	if !HasBuildScript(dir) {
		return "", fmt.Errorf("%w in specified directory: %s", ErrNotFound, dir)
	}

	return dir, nil
}

// resolvePath expands ~, anchors relative paths at the working directory,
// and maps a path naming build.cc itself to its parent
func (r *Resolver) resolvePath(path string) (string, error) {
	expanded, err := utils.ExpandHome(path)
	if err != nil {
		return "", err
	}

	resolved := expanded
	if !filepath.IsAbs(resolved) {
		workDir, err := r.workDir()
		if err != nil {
			return "", err
		}

		resolved = filepath.Join(workDir, resolved)
	}

	resolved = filepath.Clean(resolved)
	if filepath.Base(resolved) == BuildScript {
		resolved = filepath.Dir(resolved)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: path does not exist: %s", ErrInvalidPath, resolved)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: path is not a directory: %s", ErrInvalidPath, resolved)
	}

	return resolved, nil
}

func (r *Resolver) workDir() (string, error) {
	if r.WorkDir != "" {
		return r.WorkDir, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	return wd, nil
}
