package registry

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
	"github.com/xrtkcfg/xrtkcfg/pkg/telemetry"
)

func setupTestAccessor(t *testing.T, cfg SQLiteConfig) (*Accessor, *SQLiteBackend) {
	t.Helper()
	backend := setupTestBackend(t, cfg)
	return NewAccessor(backend), backend
}

func TestLayoutLocation(t *testing.T) {
	l := DefaultLayout()

	hive, path, err := l.Location(schema.ScopeApplication, "ignored")
	if err != nil || hive != HiveLocalMachine || path != `SOFTWARE\OpenXR_Toolkit` {
		t.Errorf("application location = %s %s %v", hive, path, err)
	}

	hive, path, err = l.Location(schema.ScopeModule, "FlightSimX")
	if err != nil || hive != HiveCurrentUser || path != `SOFTWARE\OpenXR_Toolkit\FlightSimX` {
		t.Errorf("module location = %s %s %v", hive, path, err)
	}

	if _, _, err := l.Location(schema.ScopeModule, ""); err == nil {
		t.Error("expected error for module scope without module")
	}
	if _, _, err := l.Location(schema.Scope(0), "x"); err == nil {
		t.Error("expected error for invalid scope")
	}
}

func TestListModulesEmptyRoot(t *testing.T) {
	accessor, _ := setupTestAccessor(t, SQLiteConfig{})

	modules, err := accessor.ListModules(context.Background())
	if err != nil {
		t.Fatalf("ListModules() error = %v", err)
	}
	if modules == nil || len(modules) != 0 {
		t.Fatalf("ListModules() = %#v, want empty non-nil slice", modules)
	}
}

func TestListModules(t *testing.T) {
	accessor, backend := setupTestAccessor(t, SQLiteConfig{})
	ctx := context.Background()

	for _, m := range []string{"FlightSimX", "DCS"} {
		if err := backend.CreateKey(ctx, HiveCurrentUser, DefaultRoot+`\`+m); err != nil {
			t.Fatalf("CreateKey() error = %v", err)
		}
	}

	modules, err := accessor.ListModules(ctx)
	if err != nil {
		t.Fatalf("ListModules() error = %v", err)
	}
	if !reflect.DeepEqual(modules, []string{"DCS", "FlightSimX"}) {
		t.Errorf("ListModules() = %v", modules)
	}

	exists, err := accessor.ModuleExists(ctx, "flightsimx")
	if err != nil || !exists {
		t.Errorf("ModuleExists(flightsimx) = %v, %v", exists, err)
	}
	exists, err = accessor.ModuleExists(ctx, "UnknownGame")
	if err != nil || exists {
		t.Errorf("ModuleExists(UnknownGame) = %v, %v", exists, err)
	}
}

func TestReadValueAbsent(t *testing.T) {
	accessor, backend := setupTestAccessor(t, SQLiteConfig{})
	ctx := context.Background()

	// Missing key.
	_, ok, err := accessor.ReadValue(ctx, schema.ScopeModule, "FlightSimX", "turbo")
	if err != nil || ok {
		t.Fatalf("ReadValue() on missing key = %v, %v", ok, err)
	}

	if err := backend.CreateKey(ctx, HiveCurrentUser, DefaultRoot+`\FlightSimX`); err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}

	// Missing value.
	_, ok, err = accessor.ReadValue(ctx, schema.ScopeModule, "FlightSimX", "turbo")
	if err != nil || ok {
		t.Fatalf("ReadValue() on missing value = %v, %v", ok, err)
	}
}

func TestWriteThenRead(t *testing.T) {
	accessor, backend := setupTestAccessor(t, SQLiteConfig{})
	ctx := context.Background()

	if err := backend.CreateKey(ctx, HiveCurrentUser, DefaultRoot+`\FlightSimX`); err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}
	if err := accessor.WriteValue(ctx, schema.ScopeModule, "FlightSimX", DWord("turbo", 1)); err != nil {
		t.Fatalf("WriteValue() error = %v", err)
	}

	v, ok, err := accessor.ReadValue(ctx, schema.ScopeModule, "FlightSimX", "turbo")
	if err != nil || !ok {
		t.Fatalf("ReadValue() = %v, %v", ok, err)
	}
	if v.Kind != KindDWord || v.Integer != 1 {
		t.Errorf("ReadValue() = %+v", v)
	}

	values, err := accessor.ReadValues(ctx, schema.ScopeModule, "FlightSimX")
	if err != nil {
		t.Fatalf("ReadValues() error = %v", err)
	}
	if len(values) != 1 || values[0].Name != "turbo" {
		t.Errorf("ReadValues() = %+v", values)
	}
}

func TestReadValuesMissingKey(t *testing.T) {
	accessor, _ := setupTestAccessor(t, SQLiteConfig{})

	values, err := accessor.ReadValues(context.Background(), schema.ScopeApplication, "")
	if err != nil {
		t.Fatalf("ReadValues() error = %v", err)
	}
	if len(values) != 0 {
		t.Errorf("ReadValues() = %+v, want empty", values)
	}
}

func TestWriteValueRefusesKindChange(t *testing.T) {
	accessor, backend := setupTestAccessor(t, SQLiteConfig{})
	ctx := context.Background()

	if err := backend.CreateKey(ctx, HiveLocalMachine, DefaultRoot); err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}
	if err := backend.SetValue(ctx, HiveLocalMachine, DefaultRoot, Value{Name: "key_menu", Kind: KindString, String: "F2"}); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	err := accessor.WriteValue(ctx, schema.ScopeApplication, "", DWord("key_menu", 0x71))
	if !errors.Is(err, ErrInvalidValueType) {
		t.Fatalf("expected ErrInvalidValueType, got %v", err)
	}

	v, _, _ := accessor.ReadValue(ctx, schema.ScopeApplication, "", "key_menu")
	if v.Kind != KindString || v.String != "F2" {
		t.Errorf("stored value changed: %+v", v)
	}
}

func TestWriteValueRejectsInvalidPayload(t *testing.T) {
	accessor, _ := setupTestAccessor(t, SQLiteConfig{})

	err := accessor.WriteValue(context.Background(), schema.ScopeApplication, "", Value{Name: "x", Kind: KindDWord, Integer: 1 << 32})
	if !errors.Is(err, ErrInvalidValueType) {
		t.Fatalf("expected ErrInvalidValueType, got %v", err)
	}
}

func TestAccessorAccessDenied(t *testing.T) {
	accessor, _ := setupTestAccessor(t, SQLiteConfig{DeniedHives: []Hive{HiveLocalMachine}})
	ctx := context.Background()

	_, ok, err := accessor.ReadValue(ctx, schema.ScopeApplication, "", "safe_mode")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("ReadValue(): expected ErrAccessDenied, got ok=%v err=%v", ok, err)
	}

	err = accessor.WriteValue(ctx, schema.ScopeApplication, "", DWord("safe_mode", 1))
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("WriteValue(): expected ErrAccessDenied, got %v", err)
	}
}

func TestAccessorCustomLayout(t *testing.T) {
	backend := setupTestBackend(t, SQLiteConfig{})
	ctx := context.Background()
	layout := Layout{Root: `SOFTWARE\Test`, ApplicationHive: HiveCurrentUser, ModuleHive: HiveCurrentUser}
	accessor := NewAccessor(backend, WithLayout(layout))

	if err := backend.CreateKey(ctx, HiveCurrentUser, `SOFTWARE\Test\Game`); err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}

	modules, err := accessor.ListModules(ctx)
	if err != nil {
		t.Fatalf("ListModules() error = %v", err)
	}
	if !reflect.DeepEqual(modules, []string{"Game"}) {
		t.Errorf("ListModules() = %v", modules)
	}
	if accessor.Layout() != layout {
		t.Errorf("Layout() = %+v", accessor.Layout())
	}
}

func TestAccessorMetrics(t *testing.T) {
	metrics, err := telemetry.NewMetrics(telemetry.MetricsConfig{Enabled: true, Textfile: "unused.prom", Namespace: "test"})
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	backend := setupTestBackend(t, SQLiteConfig{})
	accessor := NewAccessor(backend, WithMetrics(metrics))

	if _, err := accessor.ListModules(context.Background()); err != nil {
		t.Fatalf("ListModules() error = %v", err)
	}

	families, err := metrics.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_registry_operations_total" {
			found = true
		}
	}
	if !found {
		t.Error("registry operation not recorded")
	}
}
