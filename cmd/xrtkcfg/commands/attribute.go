package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xrtkcfg/xrtkcfg/pkg/resolver"
	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
)

// target is the parsed <scope> [<module>] <attribute> [value] form.
type target struct {
	scope     schema.Scope
	module    string
	attribute string
	value     string
}

// parseTarget reads a scope token followed by an optional module (module
// scope only), an attribute and, when withValue is set, a value.
func parseTarget(args []string, withValue bool) (target, error) {
	if len(args) == 0 {
		return target{}, usageErrorf("a scope is required (application or module)")
	}
	scope, err := schema.ParseScope(args[0])
	if err != nil {
		return target{}, &ExitError{Code: ExitUsage, Err: err}
	}

	want := 2
	if scope == schema.ScopeModule {
		want++
	}
	if withValue {
		want++
	}
	if len(args) != want {
		form := "<attribute>"
		if scope == schema.ScopeModule {
			form = "<module> <attribute>"
		}
		if withValue {
			form += " <value>"
		}
		return target{}, usageErrorf("%s scope expects %s", scope, form)
	}

	t := target{scope: scope}
	rest := args[1:]
	if scope == schema.ScopeModule {
		t.module, rest = rest[0], rest[1:]
	}
	t.attribute = rest[0]
	if withValue {
		t.value = rest[1]
	}
	return t, nil
}

func newGetattrCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "getattr <scope> [<module>] <attribute>",
		Short: "Print a single setting",
		Long: `Print the effective value of one setting.

The scope is "application" (alias app, machine) or "module" (alias user,
game). Module settings name the game before the attribute; application
settings take no module.`,
		Example: `  # Read a per-game setting
  xrtkcfg getattr module FlightSimX turbo

  # Read a machine-wide setting
  xrtkcfg getattr app safe_mode`,
		Args: rangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTarget(args, false)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				res, err := a.resolver.GetAttribute(ctx, t.scope, t.module, t.attribute)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if jsonOutput {
					return writeJSON(out, newEntryView(t.module, res))
				}
				fmt.Fprintln(out, res.Value.String())
				return nil
			})
		},
	}

	return cmd
}

func newSetattrCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setattr <scope> [<module>] <attribute> <value>",
		Short: "Change a single setting",
		Long: `Validate a value against the setting and store it.

Enumerated settings accept a label (case-insensitive) or its number; numbers
may be written in decimal or 0x hex. Flags accept true/false, on/off, yes/no
or 1/0. Lists are comma separated.

Nothing is written when the value is rejected, and a module that has never
been configured is not created. Application settings live under HKLM and
usually need an elevated prompt.`,
		Example: `  # Enable turbo mode for a game
  xrtkcfg setattr module FlightSimX turbo On

  # The same, by ordinal
  xrtkcfg setattr module FlightSimX turbo 1

  # Rebind the menu key
  xrtkcfg setattr app key_menu F2`,
		Args: rangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTarget(args, true)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				res, err := a.resolver.SetAttribute(ctx, t.scope, t.module, t.attribute, resolver.ParseInput(t.value))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if jsonOutput {
					return writeJSON(out, newEntryView(t.module, res))
				}
				fmt.Fprintf(out, "%s %s = %s\n", SuccessStyle.Render("set"), NameStyle.Render(res.Definition.Name), res.Value.String())
				return nil
			})
		},
	}

	return cmd
}

func newOptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options <scope> <attribute>",
		Short: "Describe a setting and its legal values",
		Example: `  # Show the legal values of a setting
  xrtkcfg options module scaling_type`,
		Args: rangeArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := schema.ParseScope(args[0])
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			r := resolver.New(schema.Default(), nil)
			def, err := r.Options(scope, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, newDefinitionView(def))
			}
			printDefinition(out, def)
			return nil
		},
	}

	return cmd
}
