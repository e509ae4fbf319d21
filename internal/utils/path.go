package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

// ExecutableName appends the platform executable extension for goos
func ExecutableName(name, goos string) string {
	if goos == "windows" {
		return name + ".exe"
	}

	return name
}
