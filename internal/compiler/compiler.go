package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Norgate-AV/talon/internal/config"
)

type ShellCommand struct {
	Path string
	Args []string
}

func (c *ShellCommand) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Toolchain turns a build script into a compiler invocation
type Toolchain interface {
	Name() string
	Command(script, output string) *ShellCommand
}

// Clang invokes clang++ directly with debug symbols and no optimization
type Clang struct {
	Path        string
	Std         string
	IncludeDirs []string
	GOOS        string
}

func (c *Clang) Name() string {
	return config.ToolchainClang
}

func (c *Clang) Command(script, output string) *ShellCommand {
	args := []string{"-g", "-O0", "-o", output, script, "-std=" + c.Std}

	for _, dir := range c.IncludeDirs {
		if dir != "" {
			args = append(args, "-I"+dir)
		}
	}

	if c.GOOS == "windows" {
		args = append(args, "-target", "x86_64-pc-windows-msvc")
	}

	return &ShellCommand{Path: c.Path, Args: args}
}

// MSVC invokes cl through cmd so the developer environment's PATH applies.
// Object files go next to the output.
type MSVC struct {
	Path        string
	Std         string
	IncludeDirs []string
}

func (m *MSVC) Name() string {
	return config.ToolchainMSVC
}

func (m *MSVC) Command(script, output string) *ShellCommand {
	args := []string{"/C", m.Path, "/std:" + m.Std, "/EHsc"}

	for _, dir := range m.IncludeDirs {
		if dir != "" {
			args = append(args, "/I"+dir)
		}
	}

	args = append(args,
		"/Fo"+filepath.Dir(output)+string(filepath.Separator),
		script,
		"/link",
		"/out:"+output,
	)

	return &ShellCommand{Path: "cmd", Args: args}
}

// Select picks the toolchain once for the running platform
func Select(goos string, cfg *config.Config) (Toolchain, error) {
	name := cfg.Toolchain
	if name == config.ToolchainAuto || name == "" {
		name = config.ToolchainClang
		if goos == "windows" {
			name = config.ToolchainMSVC
		}
	}

	switch name {
	case config.ToolchainClang:
		return &Clang{
			Path:        cfg.ClangPath,
			Std:         cfg.Std,
			IncludeDirs: cfg.IncludeDirs,
			GOOS:        goos,
		}, nil
	case config.ToolchainMSVC:
		return &MSVC{
			Path:        cfg.MSVCPath,
			Std:         cfg.MSVCStd,
			IncludeDirs: cfg.IncludeDirs,
		}, nil
	}

	return nil, fmt.Errorf("unsupported toolchain: %s", cfg.Toolchain)
}
