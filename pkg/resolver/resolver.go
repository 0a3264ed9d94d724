package resolver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xrtkcfg/xrtkcfg/pkg/registry"
	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
	"github.com/xrtkcfg/xrtkcfg/pkg/telemetry"
)

// Source tells where a resolved value came from.
type Source string

const (
	// SourceDefault marks a value substituted because the registry has none.
	SourceDefault Source = "default"
	// SourceRegistry marks a value decoded from the registry.
	SourceRegistry Source = "registry"
)

// Resolved is one attribute with its effective value.
type Resolved struct {
	Definition schema.AttributeDefinition
	Value      schema.Value
	Source     Source

	// Raw is the stored value, nil when the default was used.
	Raw *registry.Value

	// Err is set on entries of a configuration listing that could not be
	// decoded. Value is then the attribute default.
	Err error
}

// Configuration is the resolved state of one scope.
type Configuration struct {
	Scope   schema.Scope
	Module  string
	Entries []Resolved

	// Unmodeled holds stored values no attribute definition describes.
	Unmodeled []registry.Value
}

// Corrupt returns the entries that failed to decode.
func (c *Configuration) Corrupt() []Resolved {
	var out []Resolved
	for _, e := range c.Entries {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

// Err summarises corrupt entries as a single CorruptValue error, or nil.
func (c *Configuration) Err() error {
	corrupt := c.Corrupt()
	if len(corrupt) == 0 {
		return nil
	}
	names := make([]string, 0, len(corrupt))
	for _, e := range corrupt {
		names = append(names, e.Definition.Name)
	}
	return newError(KindCorruptValue,
		fmt.Sprintf("%d stored value(s) could not be decoded: %s", len(corrupt), strings.Join(names, ", ")), nil).
		WithScope(c.Scope).
		WithModule(c.Module)
}

// Resolver exposes the configuration operations used by the CLI.
type Resolver struct {
	schema   *schema.Schema
	accessor *registry.Accessor
	tel      *telemetry.Telemetry
	logger   zerolog.Logger
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithTelemetry records spans, metrics and change events.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(r *Resolver) {
		r.tel = tel
		r.logger = tel.Logger.NewComponentLogger("resolver").Zerolog()
	}
}

// New creates a resolver over s and accessor.
func New(s *schema.Schema, accessor *registry.Accessor, opts ...Option) *Resolver {
	r := &Resolver{
		schema:   s,
		accessor: accessor,
		tel:      telemetry.Noop(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Schema returns the schema in use.
func (r *Resolver) Schema() *schema.Schema {
	return r.schema
}

// ListModules returns the configured modules sorted lexicographically.
func (r *Resolver) ListModules(ctx context.Context) (modules []string, err error) {
	op := r.begin(ctx, "list_modules")
	defer func() { r.finish(op, "list_modules", err) }()

	modules, err = r.accessor.ListModules(op.Ctx)
	if err != nil {
		return nil, classify(err, schema.ScopeModule, "", "")
	}
	modules = slices.Clone(modules)
	slices.Sort(modules)
	return modules, nil
}

// GetModuleConfiguration resolves every Module-scope attribute of module.
// Undecodable values do not abort the listing: their entries carry a
// CorruptValue error and the default value.
func (r *Resolver) GetModuleConfiguration(ctx context.Context, module string) (cfg *Configuration, err error) {
	op := r.begin(ctx, "get_module_configuration", telemetry.AttrModule.String(module))
	defer func() { r.finish(op, "get_module_configuration", err) }()

	if err := r.requireModule(op.Ctx, schema.ScopeModule, module); err != nil {
		return nil, err
	}
	return r.configuration(op.Ctx, schema.ScopeModule, module)
}

// GetApplicationConfiguration resolves every Application-scope attribute.
func (r *Resolver) GetApplicationConfiguration(ctx context.Context) (cfg *Configuration, err error) {
	op := r.begin(ctx, "get_application_configuration")
	defer func() { r.finish(op, "get_application_configuration", err) }()

	return r.configuration(op.Ctx, schema.ScopeApplication, "")
}

func (r *Resolver) configuration(ctx context.Context, scope schema.Scope, module string) (*Configuration, error) {
	stored, err := r.accessor.ReadValues(ctx, scope, module)
	if err != nil {
		return nil, classify(err, scope, module, "")
	}

	cfg := &Configuration{Scope: scope, Module: module}
	modeled := make(map[string]registry.Value, len(stored))
	for _, v := range stored {
		def, ok := r.schema.ByRegistryName(scope, v.Name)
		if !ok {
			cfg.Unmodeled = append(cfg.Unmodeled, v)
			continue
		}
		modeled[def.Name] = v
	}

	for _, def := range r.schema.Attributes(scope) {
		raw, ok := modeled[def.Name]
		if !ok {
			cfg.Entries = append(cfg.Entries, Resolved{Definition: def, Value: def.Default, Source: SourceDefault})
			continue
		}

		cfg.Entries = append(cfg.Entries, r.resolve(def, module, raw))
	}
	return cfg, nil
}

// resolve decodes raw, falling back to the default and flagging the entry
// when it cannot be decoded.
func (r *Resolver) resolve(def schema.AttributeDefinition, module string, raw registry.Value) Resolved {
	entry := Resolved{Definition: def, Source: SourceRegistry, Raw: &raw}
	v, err := decode(def, raw)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.WithModule(module)
		}
		r.logger.Warn().
			Err(err).
			Str("module", module).
			Str("attribute", def.Name).
			Str("stored", raw.Display()).
			Msg("stored value does not match the schema")
		r.tel.Events.PublishCorruptValue(def.Scope.String(), module, def.Name, err.Error())
		entry.Value = def.Default
		entry.Err = err
		return entry
	}
	entry.Value = v
	return entry
}

// GetAttribute resolves a single attribute. The attribute name is checked
// before the module, so UnknownAttribute wins over ModuleNotFound.
func (r *Resolver) GetAttribute(ctx context.Context, scope schema.Scope, module, name string) (res Resolved, err error) {
	op := r.begin(ctx, "get_attribute",
		telemetry.AttrScope.String(scope.String()),
		telemetry.AttrModule.String(module),
		telemetry.AttrAttribute.String(name))
	defer func() { r.finish(op, "get_attribute", err) }()

	def, err := r.lookup(scope, module, name)
	if err != nil {
		return Resolved{}, err
	}
	if err := r.requireModule(op.Ctx, scope, module); err != nil {
		return Resolved{}, err
	}

	raw, ok, err := r.accessor.ReadValue(op.Ctx, scope, module, def.RegistryValueName)
	if err != nil {
		return Resolved{}, classify(err, scope, module, def.Name)
	}
	if !ok {
		return Resolved{Definition: def, Value: def.Default, Source: SourceDefault}, nil
	}

	v, err := decode(def, raw)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.WithModule(module)
		}
		r.tel.Events.PublishCorruptValue(scope.String(), module, def.Name, err.Error())
		return Resolved{Definition: def, Source: SourceRegistry, Raw: &raw}, err
	}
	return Resolved{Definition: def, Value: v, Source: SourceRegistry, Raw: &raw}, nil
}

// SetAttribute validates in against the attribute, then writes its canonical
// form. Nothing is written when validation fails, and a module key is never
// created.
func (r *Resolver) SetAttribute(ctx context.Context, scope schema.Scope, module, name string, in Input) (res Resolved, err error) {
	op := r.begin(ctx, "set_attribute",
		telemetry.AttrScope.String(scope.String()),
		telemetry.AttrModule.String(module),
		telemetry.AttrAttribute.String(name))
	defer func() { r.finish(op, "set_attribute", err) }()

	def, err := r.lookup(scope, module, name)
	if err != nil {
		return Resolved{}, err
	}
	if err := r.requireModule(op.Ctx, scope, module); err != nil {
		return Resolved{}, err
	}

	v, err := coerce(def, in)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.WithModule(module)
		}
		return Resolved{}, err
	}

	previous := "default"
	if raw, ok, err := r.accessor.ReadValue(op.Ctx, scope, module, def.RegistryValueName); err != nil {
		return Resolved{}, classify(err, scope, module, def.Name)
	} else if ok {
		previous = raw.Display()
		if old, err := decode(def, raw); err == nil {
			previous = old.String()
		}
	}

	raw := encode(def, v)
	if err := r.accessor.WriteValue(op.Ctx, scope, module, raw); err != nil {
		return Resolved{}, classify(err, scope, module, def.Name)
	}

	r.tel.Events.PublishAttributeChanged(scope.String(), module, def.Name, previous, v.String())
	op.Logger.Debugf("%s set to %s", def.Name, v.String())

	return Resolved{Definition: def, Value: v, Source: SourceRegistry, Raw: &raw}, nil
}

// Options returns the definition of an attribute, including its legal values.
func (r *Resolver) Options(scope schema.Scope, name string) (schema.AttributeDefinition, error) {
	return r.lookup(scope, "", name)
}

func (r *Resolver) lookup(scope schema.Scope, module, name string) (schema.AttributeDefinition, error) {
	def, err := r.schema.Lookup(scope, name)
	if err != nil {
		return schema.AttributeDefinition{}, newError(KindUnknownAttribute,
			fmt.Sprintf("%q is not a %s setting", name, scope), nil).
			WithScope(scope).
			WithModule(module).
			WithAttribute(name)
	}
	return def, nil
}

// requireModule fails with ModuleNotFound when scope is Module and the module
// has no per-user key. Application scope ignores module.
func (r *Resolver) requireModule(ctx context.Context, scope schema.Scope, module string) error {
	if scope != schema.ScopeModule {
		return nil
	}
	if module == "" {
		return newError(KindModuleNotFound, "a module name is required for module settings", nil).
			WithScope(scope)
	}
	exists, err := r.accessor.ModuleExists(ctx, module)
	if err != nil {
		return classify(err, scope, module, "")
	}
	if !exists {
		return newError(KindModuleNotFound, "module has never been configured", nil).
			WithScope(scope).
			WithModule(module)
	}
	return nil
}

func (r *Resolver) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) *telemetry.InstrumentedContext {
	if telemetry.FromTelemetryContext(ctx) == nil && r.tel.Tracer != nil {
		ctx = r.tel.WithContext(ctx)
	}
	return telemetry.StartOperation(ctx, "resolver."+operation, attrs...)
}

func (r *Resolver) finish(op *telemetry.InstrumentedContext, operation string, err error) {
	op.End(err)
	r.tel.Metrics.RecordResolverOperation(operation, metricKind(err))
	if err != nil {
		zl := op.Logger.WithError(err).Zerolog()
		zl.Debug().Str("kind", string(KindOf(err))).Msg("operation failed")
	}
}
