package commands

import (
	"fmt"
	"io"

	"github.com/xrtkcfg/xrtkcfg/pkg/registry"
	"github.com/xrtkcfg/xrtkcfg/pkg/resolver"
	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
)

// entryView is the JSON form of a resolved attribute.
type entryView struct {
	Attribute string `json:"attribute"`
	Scope     string `json:"scope"`
	Module    string `json:"module,omitempty"`
	Type      string `json:"type"`
	Value     any    `json:"value"`
	Source    string `json:"source"`
	Raw       string `json:"raw,omitempty"`
	RawType   string `json:"raw_type,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newEntryView(module string, r resolver.Resolved) entryView {
	v := entryView{
		Attribute: r.Definition.Name,
		Scope:     r.Definition.Scope.String(),
		Module:    module,
		Type:      r.Definition.Type.String(),
		Value:     r.Value.Interface(),
		Source:    string(r.Source),
	}
	if r.Definition.Scope == schema.ScopeApplication {
		v.Module = ""
	}
	if r.Raw != nil {
		v.Raw = r.Raw.Display()
		v.RawType = r.Raw.Kind.String()
	}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return v
}

// configurationView is the JSON form of a resolved scope.
type configurationView struct {
	Scope     string      `json:"scope"`
	Module    string      `json:"module,omitempty"`
	Entries   []entryView `json:"entries"`
	Unmodeled []rawView   `json:"unmodeled,omitempty"`
}

type rawView struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

func newConfigurationView(cfg *resolver.Configuration, all bool) configurationView {
	v := configurationView{
		Scope:   cfg.Scope.String(),
		Module:  cfg.Module,
		Entries: make([]entryView, 0, len(cfg.Entries)),
	}
	for _, e := range cfg.Entries {
		v.Entries = append(v.Entries, newEntryView(cfg.Module, e))
	}
	if all {
		for _, raw := range cfg.Unmodeled {
			v.Unmodeled = append(v.Unmodeled, newRawView(raw))
		}
	}
	return v
}

func newRawView(raw registry.Value) rawView {
	return rawView{Name: raw.Name, Type: raw.Kind.String(), Value: raw.Display()}
}

// printConfiguration renders cfg as an aligned listing.
func printConfiguration(w io.Writer, cfg *resolver.Configuration, all bool) {
	title := cfg.Scope.String() + " settings"
	if cfg.Module != "" {
		title = fmt.Sprintf("%s (%s)", cfg.Module, cfg.Scope)
	}
	fmt.Fprintln(w, TitleStyle.Render(title))

	names := make([]string, 0, len(cfg.Entries))
	for _, e := range cfg.Entries {
		names = append(names, e.Definition.Name)
	}
	width := widest(12, names...) + 2

	for _, e := range cfg.Entries {
		line := "  " + column(NameStyle, e.Definition.Name, width) + e.Value.String()
		switch {
		case e.Err != nil:
			line += "  " + WarningStyle.Render("! "+e.Err.Error())
		case e.Source == resolver.SourceDefault:
			line += "  " + MutedStyle.Render("(default)")
		}
		fmt.Fprintln(w, line)
	}

	if all && len(cfg.Unmodeled) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, TitleStyle.Render("unmodeled values"))
		for _, raw := range cfg.Unmodeled {
			fmt.Fprintf(w, "  %s%s  %s\n",
				column(NameStyle, raw.Name, width), raw.Display(), MutedStyle.Render(raw.Kind.String()))
		}
	}
}

// definitionView is the JSON form of an attribute definition.
type definitionView struct {
	Attribute     string              `json:"attribute"`
	Scope         string              `json:"scope"`
	Type          string              `json:"type"`
	RegistryValue string              `json:"registry_value"`
	Default       any                 `json:"default"`
	Legal         []schema.LegalValue `json:"legal,omitempty"`
	Min           *int64              `json:"min,omitempty"`
	Max           *int64              `json:"max,omitempty"`
	Description   string              `json:"description,omitempty"`
}

func newDefinitionView(def schema.AttributeDefinition) definitionView {
	return definitionView{
		Attribute:     def.Name,
		Scope:         def.Scope.String(),
		Type:          def.Type.String(),
		RegistryValue: def.RegistryValueName,
		Default:       def.Default.Interface(),
		Legal:         def.Legal,
		Min:           def.Min,
		Max:           def.Max,
		Description:   def.Description,
	}
}

func printDefinition(w io.Writer, def schema.AttributeDefinition) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render(def.Name), MutedStyle.Render(fmt.Sprintf("(%s, %s)", def.Scope, def.Type)))
	if def.Description != "" {
		fmt.Fprintf(w, "  %s\n", def.Description)
	}
	fmt.Fprintf(w, "  registry value: %s\n", def.RegistryValueName)
	fmt.Fprintf(w, "  default:        %s\n", def.Default.String())

	if def.Type != schema.TypeEnumeratedInteger {
		fmt.Fprintf(w, "  accepts:        %s\n", def.Describe())
		return
	}
	fmt.Fprintln(w, "  legal values:")
	for _, lv := range def.Legal {
		fmt.Fprintf(w, "    %s%s\n", column(MutedStyle, fmt.Sprintf("%d", lv.Ordinal), 6), lv.Label)
	}
}
