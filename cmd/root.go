package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/talon/internal/codes"
	"github.com/Norgate-AV/talon/internal/compiler"
	"github.com/Norgate-AV/talon/internal/config"
	"github.com/Norgate-AV/talon/internal/executor"
	"github.com/Norgate-AV/talon/internal/pipeline"
	"github.com/Norgate-AV/talon/internal/ui"
	"github.com/Norgate-AV/talon/internal/utils"
	"github.com/Norgate-AV/talon/internal/version"
)

// NewRootCmd creates the talon command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "talon",
		Short:         "Modern build system for C++ projects",
		Long:          `talon compiles a project's build.cc into a builder program and runs it to build the project.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.SetVersionTemplate("talon {{.Version}}\n")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")

	rootCmd.AddCommand(
		newNewCmd(),
		newBuildCmd(),
		newRunCmd(),
		newCleanCmd(),
		newCacheCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

func Execute() {
	err := NewRootCmd().Execute()
	if code := codes.FromError(err); !codes.IsSuccess(code) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Debug("exiting", "code", code, "reason", codes.GetErrorMessage(code))
		os.Exit(code)
	}
}

// session is the per-invocation state shared by the commands
type session struct {
	cfg     *config.Config
	workDir string
	printer *ui.Printer
}

// loadSession reads configuration and sets up logging. Local config is
// searched from the project path argument when one is given.
func loadSession(cmd *cobra.Command, path string) (*session, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	configDir := workDir
	if path != "" {
		if expanded, err := utils.ExpandHome(path); err == nil {
			if !filepath.IsAbs(expanded) {
				expanded = filepath.Join(workDir, expanded)
			}

			configDir = expanded
		}
	}

	cfg, err := config.NewLoader().LoadForCommand(cmd, configDir)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(newLogger(cfg.Verbose, cfg.Quiet, cmd.ErrOrStderr()))

	return &session{
		cfg:     cfg,
		workDir: workDir,
		printer: ui.NewPrinter(cmd.OutOrStdout(), cfg.Quiet),
	}, nil
}

// pipeline wires the configured toolchain into a new pipeline
func (s *session) pipeline() (*pipeline.Pipeline, error) {
	toolchain, err := compiler.Select(runtime.GOOS, s.cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("selected toolchain", "toolchain", toolchain.Name())

	return pipeline.New(pipeline.Options{
		WorkDir:  s.workDir,
		Compiler: compiler.NewCommandBuilder(toolchain),
		Executor: executor.New(),
		Printer:  s.printer,
		History:  s.cfg.History,
	}), nil
}

// newLogger creates a text logger without timestamps
func newLogger(verbose, quiet bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}

			return a
		},
	}))
}
