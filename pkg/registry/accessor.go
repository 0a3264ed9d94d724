package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
	"github.com/xrtkcfg/xrtkcfg/pkg/telemetry"
)

// DefaultRoot is the key the OpenXR Toolkit stores its settings under in both hives.
const DefaultRoot = `SOFTWARE\OpenXR_Toolkit`

// Layout maps scopes onto hives and key paths.
type Layout struct {
	Root            string
	ApplicationHive Hive
	ModuleHive      Hive
}

// DefaultLayout is HKLM\SOFTWARE\OpenXR_Toolkit for application settings and
// HKCU\SOFTWARE\OpenXR_Toolkit\<module> for module settings.
func DefaultLayout() Layout {
	return Layout{
		Root:            DefaultRoot,
		ApplicationHive: HiveLocalMachine,
		ModuleHive:      HiveCurrentUser,
	}
}

// Location returns the hive and key path holding scope's values.
func (l Layout) Location(scope schema.Scope, module string) (Hive, string, error) {
	switch scope {
	case schema.ScopeApplication:
		return l.ApplicationHive, joinPath(l.Root), nil
	case schema.ScopeModule:
		if module == "" {
			return "", "", errors.New("module name is required for module scope")
		}
		return l.ModuleHive, joinPath(l.Root, module), nil
	default:
		return "", "", fmt.Errorf("unsupported scope %s", scope)
	}
}

// Accessor exposes get/set/list primitives keyed by (scope, module, value name).
type Accessor struct {
	backend Backend
	layout  Layout
	logger  zerolog.Logger
	metrics *telemetry.Metrics
}

// AccessorOption customises an Accessor.
type AccessorOption func(*Accessor)

// WithLayout overrides DefaultLayout.
func WithLayout(l Layout) AccessorOption {
	return func(a *Accessor) { a.layout = l }
}

// WithLogger sets the accessor logger.
func WithLogger(logger zerolog.Logger) AccessorOption {
	return func(a *Accessor) { a.logger = logger.With().Str("component", "registry").Logger() }
}

// WithMetrics records registry operations.
func WithMetrics(m *telemetry.Metrics) AccessorOption {
	return func(a *Accessor) { a.metrics = m }
}

// NewAccessor creates an accessor over backend.
func NewAccessor(backend Backend, opts ...AccessorOption) *Accessor {
	a := &Accessor{
		backend: backend,
		layout:  DefaultLayout(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Layout returns the layout in use.
func (a *Accessor) Layout() Layout {
	return a.layout
}

// ListModules enumerates the module keys under the per-user root. A missing
// root means no module has been configured yet and yields an empty slice.
func (a *Accessor) ListModules(ctx context.Context) (modules []string, err error) {
	defer a.observe("list_modules", "", time.Now(), &err)

	modules, err = a.backend.ListSubkeys(ctx, a.layout.ModuleHive, a.layout.Root)
	if errors.Is(err, ErrKeyNotFound) {
		a.logger.Debug().Str("root", a.layout.Root).Msg("per-user root missing, no modules")
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

// ModuleExists reports whether module has a per-user key.
func (a *Accessor) ModuleExists(ctx context.Context, module string) (exists bool, err error) {
	defer a.observe("module_exists", schema.ScopeModule.String(), time.Now(), &err)

	hive, path, err := a.layout.Location(schema.ScopeModule, module)
	if err != nil {
		return false, err
	}
	exists, err = a.backend.KeyExists(ctx, hive, path)
	if err != nil {
		return false, fmt.Errorf("failed to look up module %s: %w", module, err)
	}
	return exists, nil
}

// ReadValue reads one value. A missing value or key is reported as ok=false
// with a nil error so the caller can fall back to a default.
func (a *Accessor) ReadValue(ctx context.Context, scope schema.Scope, module, name string) (v Value, ok bool, err error) {
	defer a.observe("read", scope.String(), time.Now(), &err)

	hive, path, err := a.layout.Location(scope, module)
	if err != nil {
		return Value{}, false, err
	}

	v, err = a.backend.GetValue(ctx, hive, path, name)
	switch {
	case errors.Is(err, ErrValueNotFound), errors.Is(err, ErrKeyNotFound):
		a.logger.Debug().Str("hive", string(hive)).Str("path", path).Str("value", name).Msg("value absent")
		return Value{}, false, nil
	case err != nil:
		return Value{}, false, fmt.Errorf("failed to read %s\\%s\\%s: %w", hive, path, name, err)
	}
	return v, true, nil
}

// ReadValues reads every value stored for scope (and module).
func (a *Accessor) ReadValues(ctx context.Context, scope schema.Scope, module string) (values []Value, err error) {
	defer a.observe("read_all", scope.String(), time.Now(), &err)

	hive, path, err := a.layout.Location(scope, module)
	if err != nil {
		return nil, err
	}

	values, err = a.backend.ListValues(ctx, hive, path)
	if errors.Is(err, ErrKeyNotFound) {
		return []Value{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s\\%s: %w", hive, path, err)
	}
	return values, nil
}

// WriteValue writes v. It refuses to change the registry type of an existing
// value, since the toolkit reads it back with a fixed type.
func (a *Accessor) WriteValue(ctx context.Context, scope schema.Scope, module string, v Value) (err error) {
	defer a.observe("write", scope.String(), time.Now(), &err)

	if err := v.Validate(); err != nil {
		return err
	}

	hive, path, err := a.layout.Location(scope, module)
	if err != nil {
		return err
	}

	existing, err := a.backend.GetValue(ctx, hive, path, v.Name)
	switch {
	case err == nil:
		if existing.Kind != v.Kind {
			return fmt.Errorf("%w: %s is stored as %s, refusing to write %s",
				ErrInvalidValueType, v.Name, existing.Kind, v.Kind)
		}
	case errors.Is(err, ErrValueNotFound):
	default:
		return fmt.Errorf("failed to write %s\\%s\\%s: %w", hive, path, v.Name, err)
	}

	if err := a.backend.SetValue(ctx, hive, path, v); err != nil {
		return fmt.Errorf("failed to write %s\\%s\\%s: %w", hive, path, v.Name, err)
	}

	a.logger.Debug().
		Str("hive", string(hive)).
		Str("path", path).
		Str("value", v.Name).
		Str("kind", v.Kind.String()).
		Str("data", v.Display()).
		Msg("value written")
	return nil
}

func (a *Accessor) observe(op, scope string, start time.Time, errp *error) {
	if a.metrics == nil {
		return
	}
	a.metrics.RecordRegistryOperation(op, scope, *errp, time.Since(start))
}
