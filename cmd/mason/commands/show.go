package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func (c *CLI) newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [targets...]",
		Short: "Show the cache state and key of elements",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, _ := cmd.Flags().GetString("deps")
			except, _ := cmd.Flags().GetStringSlice("except")
			noStrict, _ := cmd.Flags().GetBool("no-strict")

			return c.app.Show(cmd.Context(), args, app.ShowOptions{
				Deps:     deps,
				Except:   except,
				NoStrict: noStrict,
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringP("deps", "d", "all", "Elements to show: none, redirect, plan, build, run, or all")
	cmd.Flags().StringSlice("except", nil, "Exclude elements and their exclusive dependencies")
	cmd.Flags().Bool("no-strict", false, "Show weak-mode keys for non-strict build dependencies")
	return cmd
}
