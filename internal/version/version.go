// Package version holds build metadata injected at link time.
package version

// Set via -ldflags "-X github.com/Norgate-AV/talon/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
