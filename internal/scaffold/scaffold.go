// Package scaffold creates new talon projects from embedded templates.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed templates/*.tmpl
var templates embed.FS

var ErrExists = errors.New("path already exists")

// files maps project-relative destinations to template names
var files = map[string]string{
	filepath.Join("src", "main.cpp"): "templates/main.cpp.tmpl",
	"build.cc":                       "templates/build.cc.tmpl",
}

// Create writes a new project named name under parent and returns its root
func Create(parent, name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid project name: %q", name)
	}

	root := filepath.Join(parent, name)
	if _, err := os.Stat(root); err == nil {
		return "", fmt.Errorf("%w: '%s'", ErrExists, root)
	}

	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	for dest, tmpl := range files {
		content, err := templates.ReadFile(tmpl)
		if err != nil {
			return "", err
		}

		if err := os.WriteFile(filepath.Join(root, dest), content, 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", dest, err)
		}
	}

	return root, nil
}
