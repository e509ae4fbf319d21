package cmd

import (
	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "clean [path]",
		Short:        "Remove the build cache and output of the current (or specified) project",
		Args:         cobra.MaximumNArgs(1),
		RunE:         runClean,
		SilenceUsage: true,
	}

	cmd.Flags().BoolP("backtrack", "b", false, "Search parent directories for build.cc")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	path := firstArg(args)
	backtrack, _ := cmd.Flags().GetBool("backtrack")

	s, err := loadSession(cmd, path)
	if err != nil {
		return err
	}

	p, err := s.pipeline()
	if err != nil {
		return err
	}

	if err := p.Clean(backtrack, path); err != nil {
		return err
	}

	s.printer.Success("cleaned project")
	return nil
}
