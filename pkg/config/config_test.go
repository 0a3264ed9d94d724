package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xrtkcfg/xrtkcfg/pkg/registry"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvBackend, EnvRegistryDB, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Registry.Root != registry.DefaultRoot {
		t.Errorf("root = %q", cfg.Registry.Root)
	}
	if cfg.Registry.Backend != registry.DefaultBackendKind() {
		t.Errorf("backend = %q", cfg.Registry.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XRTKCFG_TEST_DIR", "/tmp/xrtk")

	path := writeConfig(t, `
registry:
  backend: sqlite
  database: ${XRTKCFG_TEST_DIR}/registry.db
  read_only_hives: [HKLM]
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Registry.Database != "/tmp/xrtk/registry.db" {
		t.Errorf("database = %q, want expanded path", cfg.Registry.Database)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Untouched sections keep their defaults.
	if cfg.Registry.Root != registry.DefaultRoot || cfg.Logging.Output != "stderr" {
		t.Errorf("defaults lost: %+v", cfg)
	}

	b := cfg.Backend()
	if b.Kind != registry.BackendSQLite || len(b.SQLite.ReadOnlyHives) != 1 || b.SQLite.ReadOnlyHives[0] != registry.HiveLocalMachine {
		t.Errorf("Backend() = %+v", b)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}

	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for a missing $XRTKCFG_CONFIG file")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "registry:\n  backend: windows\n")

	t.Setenv(EnvBackend, "SQLITE")
	t.Setenv(EnvRegistryDB, "/tmp/override.db")
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvLogFormat, "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Registry.Backend != "sqlite" || cfg.Registry.Database != "/tmp/override.db" {
		t.Errorf("registry = %+v", cfg.Registry)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromEnvPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfig, writeConfig(t, "logging:\n  level: error\n"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "registry:\n  colour: blue\n", "colour"},
		{"bad backend", "registry:\n  backend: etcd\n", "Backend"},
		{"bad hive", "registry:\n  backend: sqlite\n  denied_hives: [HKCR]\n", "DeniedHives"},
		{"sqlite without database", "registry:\n  backend: sqlite\n  database: \"\"\n", "Database"},
		{"bad level", "logging:\n  level: chatty\n", "Level"},
		{"metrics without textfile", "metrics:\n  enabled: true\n", "Textfile"},
		{"hives on windows", "registry:\n  backend: windows\n  read_only_hives: [HKLM]\n", "sqlite backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Registry.Root != registry.DefaultRoot {
		t.Errorf("root = %q", cfg.Registry.Root)
	}
}

func TestLayoutAndTelemetry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Registry.Root = `SOFTWARE\Test`

	if l := cfg.Layout(); l.Root != `SOFTWARE\Test` || l.ModuleHive != registry.HiveCurrentUser {
		t.Errorf("Layout() = %+v", l)
	}
	tel := cfg.Telemetry("1.2.3")
	if tel.ServiceName != "xrtkcfg" || tel.ServiceVersion != "1.2.3" {
		t.Errorf("Telemetry() = %+v", tel)
	}
}
