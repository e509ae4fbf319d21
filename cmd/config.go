package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "config",
		Short:        "Print the effective configuration",
		Args:         cobra.NoArgs,
		RunE:         runConfig,
		SilenceUsage: true,
	}
}

func runConfig(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd, "")
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
