package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/xrtkcfg/xrtkcfg/pkg/registry"
	"github.com/xrtkcfg/xrtkcfg/pkg/telemetry"
)

// Environment variables read by Load.
const (
	EnvConfig     = "XRTKCFG_CONFIG"
	EnvBackend    = "XRTKCFG_BACKEND"
	EnvRegistryDB = "XRTKCFG_REGISTRY_DB"
	EnvLogLevel   = "LOG_LEVEL"
	EnvLogFormat  = "XRTKCFG_LOG_FORMAT"
)

// Config is the xrtkcfg tool configuration.
type Config struct {
	// Registry selects and configures the registry backend.
	Registry RegistryConfig `yaml:"registry"`

	// Logging configures structured logging.
	Logging telemetry.LoggingConfig `yaml:"logging"`

	// Tracing configures local span export.
	Tracing telemetry.TracingConfig `yaml:"tracing"`

	// Metrics configures the node-exporter textfile.
	Metrics telemetry.MetricsConfig `yaml:"metrics"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// RegistryConfig selects the registry backend.
type RegistryConfig struct {
	// Backend is "windows" for the live registry or "sqlite" for the emulation.
	Backend string `yaml:"backend" validate:"required,oneof=windows sqlite"`

	// Database is the emulated registry file.
	Database string `yaml:"database" validate:"required_if=Backend sqlite"`

	// Root is the key holding the toolkit settings in both hives.
	Root string `yaml:"root" validate:"required"`

	// ReadOnlyHives and DeniedHives emulate missing privileges (sqlite only).
	ReadOnlyHives []string `yaml:"read_only_hives" validate:"dive,oneof=HKLM HKCU"`
	DeniedHives   []string `yaml:"denied_hives" validate:"dive,oneof=HKLM HKCU"`
}

// Dir returns the per-user xrtkcfg directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "xrtkcfg")
}

// DefaultPath is the configuration file read when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the built-in configuration for this platform.
func DefaultConfig() *Config {
	tel := telemetry.DefaultConfig()
	return &Config{
		Registry: RegistryConfig{
			Backend:  registry.DefaultBackendKind(),
			Database: filepath.Join(Dir(), "registry.db"),
			Root:     registry.DefaultRoot,
		},
		Logging: tel.Logging,
		Tracing: tel.Tracing,
		Metrics: tel.Metrics,
	}
}

// Load reads the configuration. An empty path falls back to $XRTKCFG_CONFIG
// and then DefaultPath; only an explicitly named file must exist.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfig); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath()
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults and validates it.
func Parse(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if backend := os.Getenv(EnvBackend); backend != "" {
		c.Registry.Backend = strings.ToLower(backend)
	}
	if db := os.Getenv(EnvRegistryDB); db != "" {
		c.Registry.Database = db
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		c.Logging.Format = strings.ToLower(format)
	}
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Registry.Backend == registry.BackendWindows &&
		(len(c.Registry.ReadOnlyHives) > 0 || len(c.Registry.DeniedHives) > 0) {
		return fmt.Errorf("read_only_hives and denied_hives only apply to the sqlite backend")
	}
	return c.Telemetry("dev").Validate()
}

// Backend returns the registry backend configuration.
func (c *Config) Backend() registry.BackendConfig {
	return registry.BackendConfig{
		Kind: c.Registry.Backend,
		SQLite: registry.SQLiteConfig{
			Path:          c.Registry.Database,
			ReadOnlyHives: toHives(c.Registry.ReadOnlyHives),
			DeniedHives:   toHives(c.Registry.DeniedHives),
		},
	}
}

// Layout returns the registry layout rooted at Registry.Root.
func (c *Config) Layout() registry.Layout {
	l := registry.DefaultLayout()
	l.Root = c.Registry.Root
	return l
}

// Telemetry returns the telemetry configuration for the given build version.
func (c *Config) Telemetry(version string) *telemetry.Config {
	return &telemetry.Config{
		ServiceName:    "xrtkcfg",
		ServiceVersion: version,
		Logging:        c.Logging,
		Tracing:        c.Tracing,
		Metrics:        c.Metrics,
	}
}

func toHives(names []string) []registry.Hive {
	if len(names) == 0 {
		return nil
	}
	hives := make([]registry.Hive, 0, len(names))
	for _, n := range names {
		hives = append(hives, registry.Hive(n))
	}
	return hives
}
