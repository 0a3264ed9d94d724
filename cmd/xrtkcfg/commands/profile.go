package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xrtkcfg/xrtkcfg/pkg/resolver"
	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
)

// Profile document formats.
const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// profileFormat picks the document format from an explicit flag or the file
// extension. YAML is the default.
func profileFormat(path, override string) (string, error) {
	switch strings.ToLower(override) {
	case formatYAML, "yml":
		return formatYAML, nil
	case formatJSON:
		return formatJSON, nil
	case "":
	default:
		return "", usageErrorf("unknown profile format %q (expected yaml or json)", override)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return formatJSON, nil
	}
	return formatYAML, nil
}

func readProfile(r io.Reader, format string) (*schema.Profile, error) {
	var p schema.Profile
	switch format {
	case formatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, err
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && err != io.EOF {
			return nil, err
		}
	}
	return &p, nil
}

func writeProfile(w io.Writer, p *schema.Profile, format string) error {
	if format == formatJSON {
		return writeJSON(w, p)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}

func newExportCommand() *cobra.Command {
	var (
		all    bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "export <module> [file]",
		Short: "Save a module's settings to a profile",
		Long: `Write the settings of a module to a YAML or JSON profile.

Only values stored in the registry are exported unless --all is given. The
profile is written to standard output when no file (or "-") is named.`,
		Example: `  # Export to a YAML file
  xrtkcfg export FlightSimX flightsim.yaml

  # Export every setting, including defaults, as JSON
  xrtkcfg export FlightSimX --all --format json`,
		Args: rangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 2 {
				path = args[1]
			}
			override := format
			if override == "" && jsonOutput {
				override = formatJSON
			}
			fmtName, err := profileFormat(path, override)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				p, exportErr := a.resolver.Export(ctx, args[0], resolver.ExportOptions{IncludeDefaults: all})
				if p == nil {
					return exportErr
				}

				if path == "-" {
					if err := writeProfile(cmd.OutOrStdout(), p, fmtName); err != nil {
						return err
					}
					return exportErr
				}

				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create profile: %w", err)
				}
				if err := writeProfile(f, p, fmtName); err != nil {
					_ = f.Close()
					return fmt.Errorf("failed to write profile: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("failed to write profile: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d setting(s) to %s\n", SuccessStyle.Render("exported"), len(p.Settings), path)
				return exportErr
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include settings left at their default")
	cmd.Flags().StringVar(&format, "format", "", "profile format (yaml or json, default from file extension)")

	return cmd
}

func newImportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <module> <file>",
		Short: "Apply a profile to a module",
		Long: `Apply a YAML or JSON profile to an existing module.

The whole profile is checked before anything is written. Settings are then
applied one by one in attribute table order, and the first failed write stops
the import: the settings applied before it stay in place and are listed.
This differs from "openxr.py -f", which skips entries it cannot apply and
carries on. Read the profile from standard input with "-".`,
		Example: `  # Copy settings from one game to another
  xrtkcfg export FlightSimX - | xrtkcfg import OtherSim -`,
		Args: rangeArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, path := args[0], args[1]
			fmtName, err := profileFormat(path, format)
			if err != nil {
				return err
			}

			var p *schema.Profile
			if path == "-" {
				p, err = readProfile(cmd.InOrStdin(), fmtName)
			} else {
				var f *os.File
				f, err = os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open profile: %w", err)
				}
				p, err = readProfile(f, fmtName)
				_ = f.Close()
			}
			if err != nil {
				return &ExitError{Code: resolver.ExitInvalidValue, Err: fmt.Errorf("failed to parse profile %s: %w", path, err)}
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				applied, importErr := a.resolver.Import(ctx, module, p)

				out := cmd.OutOrStdout()
				if jsonOutput {
					if err := writeJSON(out, map[string]any{"module": module, "applied": applied}); err != nil {
						return err
					}
					return importErr
				}
				for _, name := range applied {
					fmt.Fprintf(out, "%s %s\n", SuccessStyle.Render("set"), NameStyle.Render(name))
				}
				return importErr
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "profile format (yaml or json, default from file extension)")

	return cmd
}
