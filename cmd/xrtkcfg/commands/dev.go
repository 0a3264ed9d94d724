package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xrtkcfg/xrtkcfg/pkg/registry"
)

func newDevCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Emulated registry helpers",
		Long: `Commands for working against the SQLite registry emulation.

They let the tool be exercised on machines without the OpenXR Toolkit, or
without Windows at all. They refuse to run against the live registry.`,
	}

	cmd.AddCommand(newDevInitCommand())
	cmd.AddCommand(newDevSeedCommand())

	return cmd
}

// openEmulation opens the configured SQLite registry for seeding. Hive
// restrictions are dropped so both roots can be created.
func openEmulation(ctx context.Context) (*registry.SQLiteBackend, registry.Layout, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, registry.Layout{}, err
	}
	if cfg.Registry.Backend != registry.BackendSQLite {
		return nil, registry.Layout{}, usageErrorf("dev commands need the sqlite backend (use --backend sqlite)")
	}

	if cfg.Registry.Database != registry.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Registry.Database), 0o755); err != nil {
			return nil, registry.Layout{}, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	backend, err := registry.OpenSQLiteBackend(ctx, registry.SQLiteConfig{Path: cfg.Registry.Database})
	if err != nil {
		return nil, registry.Layout{}, fmt.Errorf("failed to open emulated registry: %w", err)
	}
	return backend, cfg.Layout(), nil
}

func newDevInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the emulated registry",
		Long: `Create the emulated registry database and the OpenXR Toolkit root keys
in both hives. Running it again is harmless.`,
		Example: `  # Create the database named in the configuration
  xrtkcfg dev init --backend sqlite

  # Create a throwaway database
  xrtkcfg dev init --backend sqlite --registry-db /tmp/registry.db`,
		Args: rangeArgs(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, layout, err := openEmulation(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			for _, hive := range []registry.Hive{layout.ApplicationHive, layout.ModuleHive} {
				if err := backend.CreateKey(ctx, hive, layout.Root); err != nil {
					return err
				}
				log.Debug().Str("hive", string(hive)).Str("path", layout.Root).Msg("Created root key")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s emulated registry\n", SuccessStyle.Render("initialized"))
			return nil
		},
	}

	return cmd
}

func newDevSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <module>...",
		Short: "Create module keys in the emulated registry",
		Long: `Create a per-user key for each module, as the OpenXR Toolkit does the
first time it runs with a game. Settings can then be changed with setattr.`,
		Example: `  # Register two games
  xrtkcfg dev seed FlightSimX RacingSim`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageErrorf("%s needs at least one module name", cmd.CommandPath())
			}
			for _, module := range args {
				if strings.TrimSpace(module) == "" || strings.Contains(module, `\`) {
					return usageErrorf("invalid module name %q", module)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, layout, err := openEmulation(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			for _, module := range args {
				if err := backend.CreateKey(ctx, layout.ModuleHive, layout.Root+`\`+module); err != nil {
					return fmt.Errorf("failed to seed %s: %w", module, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("seeded"), NameStyle.Render(module))
			}
			return nil
		},
	}

	return cmd
}
