package pipeline

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Norgate-AV/talon/internal/cache"
	"github.com/Norgate-AV/talon/internal/directory"
)

// CacheInfo describes the cache state of a project
type CacheInfo struct {
	Root           string
	Fingerprint    string
	Recorded       string
	Stale          bool
	BuilderPresent bool
	Stats          cache.Stats
	Last           *cache.Entry
}

// recordHistory logs a build in the history database. Failures only warn.
func (p *Pipeline) recordHistory(res *Result, success bool, elapsed time.Duration) {
	if !p.history || res.Root == "" {
		return
	}

	layout := cache.NewLayout(res.Root, p.goos)
	history, err := cache.OpenHistory(layout.History)
	if err != nil {
		slog.Warn("failed to record build history", "error", err)
		return
	}
	defer history.Close()

	entry := &cache.Entry{
		Fingerprint: res.Fingerprint,
		Compiled:    res.Compiled,
		Success:     success,
		Timestamp:   p.now(),
		Duration:    elapsed,
	}

	if res.Compiled && p.compiler != nil {
		entry.Toolchain = p.compiler.Toolchain()
	}

	if err := history.Record(entry); err != nil {
		slog.Warn("failed to record build history", "error", err)
	}
}

// CacheInfo inspects a project's cache without modifying it
func (p *Pipeline) CacheInfo(backtrack bool, path string) (*CacheInfo, error) {
	root, err := p.resolver.Resolve(path, backtrack)
	if err != nil {
		return nil, err
	}

	layout := cache.NewLayout(root, p.goos)
	fingerprint, err := cache.Fingerprint(filepath.Join(root, directory.BuildScript))
	if err != nil {
		return nil, err
	}

	info := &CacheInfo{
		Root:        root,
		Fingerprint: fingerprint,
		Recorded:    cache.ReadRecord(layout.Record),
		Stale:       cache.IsStale(layout.Record, fingerprint),
	}

	if _, err := os.Stat(layout.Builder); err == nil {
		info.BuilderPresent = true
	}

	if _, err := os.Stat(layout.History); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return info, nil
		}

		return nil, err
	}

	history, err := cache.OpenHistory(layout.History)
	if err != nil {
		return nil, err
	}
	defer history.Close()

	if info.Stats, err = history.Stats(); err != nil {
		return nil, err
	}

	if info.Last, err = history.Last(); err != nil {
		return nil, err
	}

	return info, nil
}
