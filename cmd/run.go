package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [path] [-- args...]",
		Short: "Build and run the current (or specified) project",
		Long: `Build the project, then run its output executable. Arguments after --
are passed to the executable.`,
		Example: `  talon run
  talon run -p -release -- --port 8080`,
		Args:         validateRunArgs,
		RunE:         runRun,
		SilenceUsage: true,
	}

	addBuildFlags(cmd)
	return cmd
}

// splitRunArgs separates the optional project path from forwarded arguments
func splitRunArgs(args []string, dash int) ([]string, []string) {
	if dash < 0 {
		return args, nil
	}

	return args[:dash], args[dash:]
}

func validateRunArgs(cmd *cobra.Command, args []string) error {
	pathArgs, _ := splitRunArgs(args, cmd.ArgsLenAtDash())
	if len(pathArgs) > 1 {
		return fmt.Errorf("accepts at most 1 path, received %d", len(pathArgs))
	}

	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	pathArgs, forward := splitRunArgs(args, cmd.ArgsLenAtDash())
	path := firstArg(pathArgs)

	s, err := loadSession(cmd, path)
	if err != nil {
		return err
	}

	p, err := s.pipeline()
	if err != nil {
		return err
	}

	return p.Run(buildOptions(cmd, path), forward)
}
