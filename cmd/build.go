package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/talon/internal/pipeline"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Build the current (or specified) project",
		Long: `Compile build.cc into the cached builder when it changed, then run the
builder to build the project.`,
		Example: `  talon build
  talon build -b
  talon build -c -p -release ../app`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runBuild,
		SilenceUsage: true,
	}

	addBuildFlags(cmd)
	return cmd
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("backtrack", "b", false, "Search parent directories for build.cc")
	cmd.Flags().BoolP("clean", "c", false, "Clean the project before building")
	cmd.Flags().StringArrayP("profile", "p", []string{}, "Argument passed to the builder, e.g. -release (repeatable)")
}

func buildOptions(cmd *cobra.Command, path string) pipeline.BuildOptions {
	backtrack, _ := cmd.Flags().GetBool("backtrack")
	clean, _ := cmd.Flags().GetBool("clean")
	profile, _ := cmd.Flags().GetStringArray("profile")

	return pipeline.BuildOptions{
		Backtrack:   backtrack,
		Clean:       clean,
		Path:        path,
		ProfileArgs: profile,
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	path := firstArg(args)

	s, err := loadSession(cmd, path)
	if err != nil {
		return err
	}

	p, err := s.pipeline()
	if err != nil {
		return err
	}

	res, err := p.Build(buildOptions(cmd, path))
	if err != nil {
		return err
	}

	s.printer.Detail("output: %s", res.OutputPath)
	return nil
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return ""
}
