package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/talon/internal/scaffold"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "new <name>",
		Short:        "Create a new project from the base template",
		Args:         cobra.ExactArgs(1),
		RunE:         runNew,
		SilenceUsage: true,
	}
}

func runNew(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd, "")
	if err != nil {
		return err
	}

	root, err := scaffold.Create(s.workDir, args[0])
	if err != nil {
		return err
	}

	s.printer.Success("created project %s", args[0])
	s.printer.Detail("root: %s", root)
	return nil
}
