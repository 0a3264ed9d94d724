package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	jsonOutput  bool
	backendKind string
	registryDB  string
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	return err
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xrtkcfg",
		Short: "Inspect and change OpenXR Toolkit settings",
		Long: `xrtkcfg reads and writes the registry settings of the OpenXR Toolkit
before its host application starts.

Settings come in two scopes:
  - application: machine-wide settings under HKLM (key bindings, safe mode)
  - module:      per-game settings under HKCU, one key per game

Every value is checked against the attribute table of OpenXR Toolkit ` + schema.UpstreamVersion + `.
Do not change settings while a game using the toolkit is running.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&backendKind, "backend", "", "registry backend (windows or sqlite)")
	rootCmd.PersistentFlags().StringVar(&registryDB, "registry-db", "", "emulated registry database (sqlite backend)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newGetattrCommand())
	rootCmd.AddCommand(newSetattrCommand())
	rootCmd.AddCommand(newOptionsCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newDevCommand())

	return rootCmd
}
