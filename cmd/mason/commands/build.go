package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build the specified elements",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			builders, _ := cmd.Flags().GetInt("builders")
			onError, _ := cmd.Flags().GetString("on-error")
			deps, _ := cmd.Flags().GetString("deps")
			except, _ := cmd.Flags().GetStringSlice("except")
			noStrict, _ := cmd.Flags().GetBool("no-strict")
			retryFailed, _ := cmd.Flags().GetBool("retry-failed")
			keepBuildTree, _ := cmd.Flags().GetBool("keep-build-tree")
			watch, _ := cmd.Flags().GetBool("watch")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")

			// If --ci is set, override output-mode to "linear"
			if ci {
				outputMode = "linear"
			}

			return c.app.Build(cmd.Context(), args, app.BuildOptions{
				Builders:      builders,
				OnError:       onError,
				Deps:          deps,
				Except:        except,
				NoStrict:      noStrict,
				RetryFailed:   retryFailed,
				KeepBuildTree: keepBuildTree,
				Watch:         watch,
				MetricsAddr:   metricsAddr,
				OutputMode:    outputMode,
			})
		},
	}
	cmd.Flags().IntP("builders", "j", 0, "Maximum number of concurrent builds (default: project setting)")
	cmd.Flags().String("on-error", "", "Action on element failure: continue, quit, or terminate")
	cmd.Flags().StringP("deps", "d", "plan", "Elements to process: none, redirect, plan, build, run, or all")
	cmd.Flags().StringSlice("except", nil, "Exclude elements and their exclusive dependencies")
	cmd.Flags().Bool("no-strict", false, "Build with weak keys for non-strict build dependencies")
	cmd.Flags().Bool("retry-failed", false, "Rebuild elements whose failure is cached")
	cmd.Flags().Bool("keep-build-tree", false, "Cache the build directory with the artifact")
	cmd.Flags().BoolP("watch", "w", false, "Rebuild when sources or element files change")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, interactive, or linear")
	cmd.Flags().Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	return cmd
}
