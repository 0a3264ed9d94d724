package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xrtkcfg/xrtkcfg/pkg/resolver"
)

func newConfigCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "config [module]",
		Short: "Print the resolved configuration of a module",
		Long: `Print every setting of a module with its effective value.

Settings the registry does not store show their default. Without a module the
application settings are printed instead.

Values that cannot be decoded are listed with a warning and their default;
the command then exits with the CorruptValue status.`,
		Example: `  # Show the settings of a game
  xrtkcfg config FlightSimX

  # Include registry values no setting describes
  xrtkcfg config FlightSimX --all

  # Show the machine-wide settings
  xrtkcfg config`,
		Args: rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var (
					cfg *resolver.Configuration
					err error
				)
				if len(args) == 1 {
					cfg, err = a.resolver.GetModuleConfiguration(ctx, args[0])
				} else {
					cfg, err = a.resolver.GetApplicationConfiguration(ctx)
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if jsonOutput {
					if err := writeJSON(out, newConfigurationView(cfg, all)); err != nil {
						return err
					}
				} else {
					printConfiguration(out, cfg, all)
				}
				return cfg.Err()
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "also print stored values no setting describes")

	return cmd
}
