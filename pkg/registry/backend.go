package registry

import (
	"context"
	"fmt"
	"runtime"
)

// Backend kinds accepted by OpenBackend.
const (
	BackendWindows = "windows"
	BackendSQLite  = "sqlite"
)

// BackendConfig selects and configures a Backend.
type BackendConfig struct {
	Kind   string
	SQLite SQLiteConfig
}

// DefaultBackendKind is the live registry on Windows and the emulation elsewhere.
func DefaultBackendKind() string {
	if runtime.GOOS == "windows" {
		return BackendWindows
	}
	return BackendSQLite
}

// OpenBackend opens the configured backend.
func OpenBackend(ctx context.Context, cfg BackendConfig) (Backend, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = DefaultBackendKind()
	}

	switch kind {
	case BackendWindows:
		return openWindowsBackend()
	case BackendSQLite:
		return OpenSQLiteBackend(ctx, cfg.SQLite)
	default:
		return nil, fmt.Errorf("unknown registry backend %q", kind)
	}
}
