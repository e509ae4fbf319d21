package config

import (
	"fmt"
	"path/filepath"

	"github.com/Norgate-AV/talon/internal/utils"
	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultToolchain = ToolchainAuto
	DefaultClangPath = "clang++"
	DefaultMSVCPath  = "cl"
	DefaultStd       = "c++23"
	DefaultMSVCStd   = "c++latest"
	DefaultHistory   = true
	DefaultVerbose   = false
	DefaultQuiet     = false
)

// Toolchain names accepted by the toolchain key
const (
	ToolchainAuto  = "auto"
	ToolchainClang = "clang"
	ToolchainMSVC  = "msvc"
)

// Holds the configuration options for talon
type Config struct {
	// Toolchain used to compile build.cc (auto, clang, msvc)
	Toolchain string `yaml:"toolchain"`

	// Path or name of the clang++ driver
	ClangPath string `yaml:"clang_path"`
	// Path or name of the MSVC cl driver
	MSVCPath string `yaml:"msvc_path"`

	// Language standard passed to clang (-std=)
	Std string `yaml:"std"`
	// Language standard passed to cl (/std:)
	MSVCStd string `yaml:"msvc_std"`

	// Extra include directories for the build script, e.g. the talon headers
	IncludeDirs []string `yaml:"include_dirs"`

	// Record each build in .talon/history.db
	History bool `yaml:"history"`

	Verbose bool `yaml:"verbose"`
	Quiet   bool `yaml:"quiet"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Toolchain:   viper.GetString("toolchain"),
		ClangPath:   viper.GetString("clang_path"),
		MSVCPath:    viper.GetString("msvc_path"),
		Std:         viper.GetString("std"),
		MSVCStd:     viper.GetString("msvc_std"),
		IncludeDirs: viper.GetStringSlice("include_dirs"),
		History:     viper.GetBool("history"),
		Verbose:     viper.GetBool("verbose"),
		Quiet:       viper.GetBool("quiet"),
	}

	// Apply defaults if not set
	if cfg.Toolchain == "" {
		cfg.Toolchain = DefaultToolchain
	}

	if cfg.ClangPath == "" {
		cfg.ClangPath = DefaultClangPath
	}

	if cfg.MSVCPath == "" {
		cfg.MSVCPath = DefaultMSVCPath
	}

	if cfg.Std == "" {
		cfg.Std = DefaultStd
	}

	if cfg.MSVCStd == "" {
		cfg.MSVCStd = DefaultMSVCStd
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !isValidToolchain(c.Toolchain) {
		return fmt.Errorf("invalid toolchain: %s", c.Toolchain)
	}

	// Resolve include dirs
	for i, dir := range c.IncludeDirs {
		if dir == "" {
			continue
		}

		expanded, err := utils.ExpandHome(dir)
		if err != nil {
			return fmt.Errorf("invalid include dir: %v", err)
		}

		abs, err := filepath.Abs(expanded)
		if err != nil {
			return fmt.Errorf("invalid include dir: %v", err)
		}

		c.IncludeDirs[i] = abs
	}

	// Quiet wins over verbose
	if c.Quiet {
		c.Verbose = false
	}

	return nil
}

func isValidToolchain(name string) bool {
	switch name {
	case ToolchainAuto, ToolchainClang, ToolchainMSVC:
		return true
	}

	return false
}
