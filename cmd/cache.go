package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cache [path]",
		Short:        "Show the builder cache status and build history",
		Args:         cobra.MaximumNArgs(1),
		RunE:         runCache,
		SilenceUsage: true,
	}

	cmd.Flags().BoolP("backtrack", "b", false, "Search parent directories for build.cc")
	return cmd
}

func runCache(cmd *cobra.Command, args []string) error {
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

	info, err := p.CacheInfo(backtrack, path)
	if err != nil {
		return err
	}

	recorded := info.Recorded
	if recorded == "" {
		recorded = "(none)"
	}

	status := "up to date"
	if info.Stale {
		status = "stale"
	}

	builder := "missing"
	if info.BuilderPresent {
		builder = "present"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Root:        %s\n", info.Root)
	fmt.Fprintf(out, "Fingerprint: %s\n", info.Fingerprint)
	fmt.Fprintf(out, "Recorded:    %s\n", recorded)
	fmt.Fprintf(out, "Status:      %s\n", status)
	fmt.Fprintf(out, "Builder:     %s\n", builder)
	fmt.Fprintf(out, "Builds:      %d (compiled %d, failed %d)\n", info.Stats.Builds, info.Stats.Compiles, info.Stats.Failures)

	if info.Last != nil {
		kind := "cached"
		if info.Last.Compiled {
			kind = "compiled with " + info.Last.Toolchain
		}

		result := "succeeded"
		if !info.Last.Success {
			result = "failed"
		}

		fmt.Fprintf(out, "Last build:  %s, %s, %s in %s\n",
			info.Last.Timestamp.Format(time.RFC3339), kind, result, info.Last.Duration.Round(time.Millisecond))
	}

	return nil
}
