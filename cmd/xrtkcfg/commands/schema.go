package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
)

func newSchemaCommand() *cobra.Command {
	var profile bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the built-in attribute table",
		Long: `Print every setting known to this build, grouped by scope.

The table mirrors a specific OpenXR Toolkit release. With --profile the CUE
definition used to validate imported profiles is printed instead.`,
		Example: `  # List all settings
  xrtkcfg schema

  # Show the profile schema
  xrtkcfg schema --profile`,
		Args: rangeArgs(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := schema.Default()
			out := cmd.OutOrStdout()

			if profile {
				fmt.Fprint(out, s.ProfileSchema())
				return nil
			}

			scopes := []schema.Scope{schema.ScopeApplication, schema.ScopeModule}
			if jsonOutput {
				doc := map[string]any{"upstream_version": schema.UpstreamVersion}
				for _, scope := range scopes {
					defs := make([]definitionView, 0)
					for _, def := range s.Attributes(scope) {
						defs = append(defs, newDefinitionView(def))
					}
					doc[scope.String()] = defs
				}
				return writeJSON(out, doc)
			}

			fmt.Fprintf(out, "%s\n", MutedStyle.Render("OpenXR Toolkit "+schema.UpstreamVersion))
			for _, scope := range scopes {
				fmt.Fprintln(out)
				fmt.Fprintln(out, TitleStyle.Render(scope.String()))
				names := s.Names(scope)
				width := widest(12, names...) + 2
				for _, def := range s.Attributes(scope) {
					fmt.Fprintf(out, "  %s%s  %s\n",
						column(NameStyle, def.Name, width),
						column(MutedStyle, def.Type.String(), 18),
						def.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&profile, "profile", false, "print the CUE profile schema")

	return cmd
}
