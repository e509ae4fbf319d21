package cache

import "time"

// Entry represents one recorded build
type Entry struct {
	// Seq orders entries; assigned by History.Record
	Seq uint64 `json:"seq"`

	// Fingerprint of build.cc at the time of the build
	Fingerprint string `json:"fingerprint"`

	// Toolchain that compiled the builder (empty when the cache was hit)
	Toolchain string `json:"toolchain"`

	// Compiled is true when the builder was recompiled
	Compiled bool `json:"compiled"`

	// Success indicates the whole build, including the builder run, succeeded
	Success bool `json:"success"`

	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Stats aggregates the history
type Stats struct {
	Builds   int
	Compiles int
	Failures int
}
