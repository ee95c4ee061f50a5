package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact cache",
	}
	cmd.AddCommand(c.newCachePruneCmd())
	return cmd
}

func (c *CLI) newCachePruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Evict least recently used artifacts until the cache fits the quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			quota, _ := cmd.Flags().GetInt64("quota")

			report, err := c.app.Prune(cmd.Context(), app.PruneOptions{Quota: quota})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d, kept %d, %d bytes in use\n",
				report.Removed, report.Remaining, report.TotalBytes)
			return nil
		},
	}
	cmd.Flags().Int64("quota", 0, "Cache size limit in bytes (default: cache.quota from mason.yaml)")
	return cmd
}
