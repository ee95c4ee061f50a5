package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the artifact cache or leftover sandboxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sandboxes, _ := cmd.Flags().GetBool("sandboxes")
			all, _ := cmd.Flags().GetBool("all")

			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Sandboxes: sandboxes,
				All:       all,
			})
		},
	}

	cmd.Flags().BoolP("sandboxes", "s", false, "Remove sandboxes left behind by interrupted builds")
	cmd.Flags().BoolP("all", "a", false, "Remove the artifact cache and all project state")

	return cmd
}
