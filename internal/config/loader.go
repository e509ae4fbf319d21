package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct {
	configDir func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{configDir: os.UserConfigDir}
}

// LoadForCommand loads configuration for a command invoked from workDir
func (l *Loader) LoadForCommand(cmd *cobra.Command, workDir string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(workDir)
	l.bindEnv()
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("toolchain", DefaultToolchain)
	viper.SetDefault("clang_path", DefaultClangPath)
	viper.SetDefault("msvc_path", DefaultMSVCPath)
	viper.SetDefault("std", DefaultStd)
	viper.SetDefault("msvc_std", DefaultMSVCStd)
	viper.SetDefault("include_dirs", []string{})
	viper.SetDefault("history", DefaultHistory)
	viper.SetDefault("verbose", DefaultVerbose)
	viper.SetDefault("quiet", DefaultQuiet)
}

// loadGlobalConfig loads global configuration from the user config directory
func (l *Loader) loadGlobalConfig() {
	base, err := l.configDir()
	if err != nil || base == "" {
		return
	}

	globalDir := filepath.Join(base, "talon")

	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig merges the nearest .talon.* file at or above workDir
func (l *Loader) loadLocalConfig(workDir string) {
	if workDir == "" {
		return
	}

	localPath := FindLocalConfig(workDir)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.MergeInConfig()
	}
}

// bindEnv lets TALON_* environment variables override file values
func (l *Loader) bindEnv() {
	viper.SetEnvPrefix("talon")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", cmd.Flags().Lookup("quiet"))
}
