package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured modules",
		Long: `List every module (game) that has a per-user settings key.

A module appears once the OpenXR Toolkit has run with it at least once.`,
		Example: `  # List modules
  xrtkcfg list

  # List modules as JSON
  xrtkcfg list --json`,
		Args: rangeArgs(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				modules, err := a.resolver.ListModules(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if jsonOutput {
					return writeJSON(out, map[string]any{"modules": modules})
				}
				for _, m := range modules {
					fmt.Fprintln(out, m)
				}
				return nil
			})
		},
	}

	return cmd
}
