package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrPersist marks a failure to write the cache record
var ErrPersist = errors.New("failed to update cache record")

// IsStale reports whether the record at recordPath differs from fingerprint.
// A missing or unreadable record is always stale and never an error.
func IsStale(recordPath, fingerprint string) bool {
	data, err := os.ReadFile(recordPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no cache file found, will rebuild", "record", recordPath)
		} else {
			slog.Debug("unreadable cache file, will rebuild", "record", recordPath, "error", err)
		}

		return true
	}

	return strings.TrimSpace(string(data)) != fingerprint
}

// ReadRecord returns the trimmed stored fingerprint, or "" when absent
func ReadRecord(recordPath string) string {
	data, err := os.ReadFile(recordPath)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

// Persist replaces the record with fingerprint. The value is written to a
// temporary file in the same directory and renamed over the record, so a
// reader sees either the old value or the new one.
func Persist(recordPath, fingerprint string) error {
	slog.Debug("updating cache file", "record", recordPath)

	dir := filepath.Dir(recordPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(recordPath)+"-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, recordPath, err)
	}

	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(fingerprint); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", ErrPersist, recordPath, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", ErrPersist, recordPath, err)
	}

	if err := os.Rename(tmpPath, recordPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", ErrPersist, recordPath, err)
	}

	return nil
}
