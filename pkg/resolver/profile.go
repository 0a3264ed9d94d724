package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
	"github.com/xrtkcfg/xrtkcfg/pkg/telemetry"
)

// ExportOptions controls Export.
type ExportOptions struct {
	// IncludeDefaults also exports attributes the registry does not store.
	IncludeDefaults bool
}

// Export captures a module's settings as a profile document. Corrupt entries
// are left out and reported through the returned error alongside the profile.
func (r *Resolver) Export(ctx context.Context, module string, opts ExportOptions) (*schema.Profile, error) {
	cfg, err := r.GetModuleConfiguration(ctx, module)
	if err != nil {
		return nil, err
	}

	p := &schema.Profile{
		Module:          cfg.Module,
		UpstreamVersion: schema.UpstreamVersion,
		Settings:        make(map[string]any, len(cfg.Entries)),
	}
	for _, e := range cfg.Entries {
		if e.Err != nil {
			continue
		}
		if e.Source == SourceDefault && !opts.IncludeDefaults {
			continue
		}
		p.Settings[e.Definition.Name] = e.Value.Interface()
	}
	return p, cfg.Err()
}

// Import applies a profile to an existing module. The whole document is
// validated before the first write; settings are then applied in schema
// order and the first failure stops the import, leaving earlier writes in
// place. The names of the applied attributes are returned.
func (r *Resolver) Import(ctx context.Context, module string, p *schema.Profile) (applied []string, err error) {
	op := r.begin(ctx, "import", telemetry.AttrModule.String(module))
	defer func() { r.finish(op, "import", err) }()

	if err := r.schema.ValidateProfile(p); err != nil {
		return nil, newError(KindInvalidValue, "profile rejected", err).WithModule(module)
	}
	if err := r.requireModule(op.Ctx, schema.ScopeModule, module); err != nil {
		return nil, err
	}

	if p.Module != "" && !strings.EqualFold(p.Module, module) {
		op.Logger.Warnf("profile was exported from %s, applying to %s", p.Module, module)
	}
	if p.UpstreamVersion != "" && p.UpstreamVersion != schema.UpstreamVersion {
		op.Logger.Warnf("profile targets OpenXR Toolkit %s, this build knows %s", p.UpstreamVersion, schema.UpstreamVersion)
	}

	settings := make(map[string]any, len(p.Settings))
	for k, v := range p.Settings {
		settings[strings.ToLower(k)] = v
	}

	applied = []string{}
	for _, def := range r.schema.Attributes(schema.ScopeModule) {
		raw, ok := settings[strings.ToLower(def.Name)]
		if !ok {
			continue
		}
		in, err := InputFromAny(raw)
		if err != nil {
			return applied, newError(KindInvalidValue, fmt.Sprintf("setting %s", def.Name), err).
				WithModule(module).
				WithAttribute(def.Name)
		}
		if _, err := r.SetAttribute(op.Ctx, schema.ScopeModule, module, def.Name, in); err != nil {
			return applied, err
		}
		applied = append(applied, def.Name)
	}

	r.tel.Events.PublishProfileImported(module, len(applied))
	return applied, nil
}
