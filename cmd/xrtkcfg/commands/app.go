package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xrtkcfg/xrtkcfg/pkg/config"
	"github.com/xrtkcfg/xrtkcfg/pkg/registry"
	"github.com/xrtkcfg/xrtkcfg/pkg/resolver"
	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
	"github.com/xrtkcfg/xrtkcfg/pkg/telemetry"
)

// app holds what one command invocation needs.
type app struct {
	cfg      *config.Config
	tel      *telemetry.Telemetry
	backend  registry.Backend
	resolver *resolver.Resolver
}

// loadConfig reads the configuration file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	overridden := false
	if backendKind != "" {
		cfg.Registry.Backend = backendKind
		overridden = true
	}
	if registryDB != "" {
		cfg.Registry.Database = registryDB
		overridden = true
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if overridden {
		if err := cfg.Validate(); err != nil {
			return nil, usageErrorf("invalid flags: %v", err)
		}
	}
	return cfg, nil
}

// openApp wires configuration, telemetry, the registry backend and the
// resolver. The caller must Close the result.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.NewTelemetry(cfg.Telemetry(cmd.Root().Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	zl := tel.Logger.NewComponentLogger("cli").Zerolog()
	zl.Debug().
		Str("command", cmd.CommandPath()).
		Str("backend", cfg.Registry.Backend).
		Str("config", cfg.Path).
		Msg("Starting command")

	backend, err := registry.OpenBackend(cmd.Context(), cfg.Backend())
	if err != nil {
		_ = tel.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	accessor := registry.NewAccessor(backend,
		registry.WithLayout(cfg.Layout()),
		registry.WithLogger(tel.Logger.NewComponentLogger("registry").Zerolog()),
		registry.WithMetrics(tel.Metrics),
	)

	return &app{
		cfg:      cfg,
		tel:      tel,
		backend:  backend,
		resolver: resolver.New(schema.Default(), accessor, resolver.WithTelemetry(tel)),
	}, nil
}

// withTelemetry returns ctx carrying the invocation telemetry.
func (a *app) withTelemetry(ctx context.Context) context.Context {
	return a.tel.WithContext(ctx)
}

// Close releases the backend and flushes telemetry.
func (a *app) Close() error {
	var errs []error
	if err := a.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close registry: %w", err))
	}
	if err := a.tel.Shutdown(context.Background()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// withApp runs fn with an open app and closes it afterwards. Close errors are
// only logged so they never mask the command result.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Shutdown failed")
		}
	}()
	return fn(a.withTelemetry(cmd.Context()), a)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
