package resolver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xrtkcfg/xrtkcfg/pkg/registry"
	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		raw      string
		wantKind InputKind
		want     string
	}{
		{"1", InputOrdinal, "1"},
		{" 42 ", InputOrdinal, "42"},
		{"-3", InputOrdinal, "-3"},
		{"0x71", InputOrdinal, "113"},
		{"0X1B", InputOrdinal, "27"},
		{"On", InputLabel, "On"},
		{"0xZZ", InputLabel, "0xZZ"},
		{"a.exe,b.exe", InputLabel, "a.exe,b.exe"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			in := ParseInput(tt.raw)
			if in.Kind() != tt.wantKind || in.String() != tt.want {
				t.Errorf("ParseInput(%q) = %v %q, want %v %q", tt.raw, in.Kind(), in.String(), tt.wantKind, tt.want)
			}
		})
	}
}

func TestInputFromAny(t *testing.T) {
	tests := []struct {
		value    any
		wantKind InputKind
		want     string
		wantErr  bool
	}{
		{value: "On", wantKind: InputLabel, want: "On"},
		{value: "2", wantKind: InputOrdinal, want: "2"},
		{value: true, wantKind: InputOrdinal, want: "1"},
		{value: false, wantKind: InputOrdinal, want: "0"},
		{value: int64(7), wantKind: InputOrdinal, want: "7"},
		{value: 7, wantKind: InputOrdinal, want: "7"},
		{value: float64(9), wantKind: InputOrdinal, want: "9"},
		{value: []any{"a.exe", "b.exe"}, wantKind: InputStrings, want: "a.exe,b.exe"},
		{value: []string{"a.exe"}, wantKind: InputStrings, want: "a.exe"},
		{value: 1.5, wantErr: true},
		{value: []any{"a", 1}, wantErr: true},
		{value: map[string]any{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.value), func(t *testing.T) {
			in, err := InputFromAny(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("InputFromAny(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err == nil && (in.Kind() != tt.wantKind || in.String() != tt.want) {
				t.Errorf("InputFromAny(%v) = %v %q", tt.value, in.Kind(), in.String())
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	s := testSchema(t)
	lookup := func(scope schema.Scope, name string) schema.AttributeDefinition {
		def, err := s.Lookup(scope, name)
		if err != nil {
			t.Fatalf("Lookup(%s) error = %v", name, err)
		}
		return def
	}
	quality := lookup(schema.ScopeModule, "quality")
	scaling := lookup(schema.ScopeModule, "scaling")
	safeMode := lookup(schema.ScopeApplication, "safe_mode")
	disabled := lookup(schema.ScopeApplication, "disabled_applications")

	tests := []struct {
		name    string
		def     schema.AttributeDefinition
		in      Input
		want    string
		wantErr bool
	}{
		{name: "enum label", def: quality, in: Label("High"), want: "High"},
		{name: "enum label any case", def: quality, in: Label("hIgH"), want: "High"},
		{name: "enum ordinal", def: quality, in: Ordinal(0), want: "Low"},
		{name: "enum bad ordinal", def: quality, in: Ordinal(99), wantErr: true},
		{name: "enum bad label", def: quality, in: Label("Ultra"), wantErr: true},
		{name: "integer", def: scaling, in: Ordinal(25), want: "25"},
		{name: "integer max", def: scaling, in: Ordinal(400), want: "400"},
		{name: "integer below range", def: scaling, in: Ordinal(24), wantErr: true},
		{name: "integer above range", def: scaling, in: Ordinal(401), wantErr: true},
		{name: "integer from label", def: scaling, in: Label("big"), wantErr: true},
		{name: "flag one", def: safeMode, in: Ordinal(1), want: "true"},
		{name: "flag zero", def: safeMode, in: Ordinal(0), want: "false"},
		{name: "flag two", def: safeMode, in: Ordinal(2), wantErr: true},
		{name: "flag word on", def: safeMode, in: Label("ON"), want: "true"},
		{name: "flag word disabled", def: safeMode, in: Label("disabled"), want: "false"},
		{name: "flag word maybe", def: safeMode, in: Label("maybe"), wantErr: true},
		{name: "flag from list", def: safeMode, in: Strings("true"), wantErr: true},
		{name: "list", def: disabled, in: Strings("a.exe", " ", "b.exe"), want: "a.exe,b.exe"},
		{name: "list from label", def: disabled, in: Label("a.exe, b.exe,"), want: "a.exe,b.exe"},
		{name: "list empty", def: disabled, in: Label(""), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := coerce(tt.def, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("coerce() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("coerce() error kind = %v, want InvalidValue", KindOf(err))
				}
				return
			}
			if v.String() != tt.want {
				t.Errorf("coerce() = %q, want %q", v.String(), tt.want)
			}
		})
	}
}

func TestCoercePrefersLabelOverOrdinal(t *testing.T) {
	keyMenu, err := schema.Default().Lookup(schema.ScopeApplication, "key_menu")
	if err != nil {
		t.Fatalf("Lookup(key_menu) error = %v", err)
	}
	disabled, _ := schema.Default().Lookup(schema.ScopeApplication, "disabled_applications")

	tests := []struct {
		text string
		want string
	}{
		{"8", "8"},
		{"0", "0"},
		{"0x8", "Backspace"},
		{"0x38", "8"},
		{"113", "F2"},
	}
	for _, tt := range tests {
		v, err := coerce(keyMenu, ParseInput(tt.text))
		if err != nil {
			t.Fatalf("coerce(%q) error = %v", tt.text, err)
		}
		if v.String() != tt.want {
			t.Errorf("coerce(%q) = %q, want %q", tt.text, v.String(), tt.want)
		}
	}

	if v, err := coerce(disabled, ParseInput("0x10")); err != nil || v.String() != "0x10" {
		t.Errorf("coerce(list, 0x10) = %q, %v, want text kept", v.String(), err)
	}
}

func TestDecode(t *testing.T) {
	s := testSchema(t)
	quality, _ := s.Lookup(schema.ScopeModule, "quality")
	safeMode, _ := s.Lookup(schema.ScopeApplication, "safe_mode")
	disabled, _ := s.Lookup(schema.ScopeApplication, "disabled_applications")

	tests := []struct {
		name    string
		def     schema.AttributeDefinition
		raw     registry.Value
		want    string
		corrupt bool
	}{
		{name: "enum", def: quality, raw: registry.DWord("quality", 2), want: "High"},
		{name: "enum qword", def: quality, raw: registry.Value{Name: "quality", Kind: registry.KindQWord, Integer: 0}, corrupt: true},
		{name: "flag huge qword", def: safeMode, raw: registry.Value{Name: "safe_mode", Kind: registry.KindQWord, Integer: 1 << 63}, corrupt: true},
		{name: "enum stale ordinal", def: quality, raw: registry.DWord("quality", 5), corrupt: true},
		{name: "enum as string", def: quality, raw: registry.Value{Name: "quality", Kind: registry.KindString, String: "High"}, corrupt: true},
		{name: "flag nonzero", def: safeMode, raw: registry.DWord("safe_mode", 9), want: "true"},
		{name: "list", def: disabled, raw: registry.MultiString("disabled_applications", "x.exe"), want: "x.exe"},
		{name: "list as dword", def: disabled, raw: registry.DWord("disabled_applications", 1), corrupt: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decode(tt.def, tt.raw)
			if tt.corrupt {
				if !errors.Is(err, ErrCorruptValue) {
					t.Fatalf("decode() error = %v, want CorruptValue", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode() error = %v", err)
			}
			if v.String() != tt.want {
				t.Errorf("decode() = %q, want %q", v.String(), tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	s := testSchema(t)
	safeMode, _ := s.Lookup(schema.ScopeApplication, "safe_mode")
	disabled, _ := s.Lookup(schema.ScopeApplication, "disabled_applications")
	keyMenu, _ := s.Lookup(schema.ScopeApplication, "key_menu")

	if got := encode(safeMode, schema.FlagValue(true)); got.Kind != registry.KindDWord || got.Integer != 1 {
		t.Errorf("encode(flag) = %+v", got)
	}
	if got := encode(disabled, schema.StringListValue("a", "b")); got.Kind != registry.KindMultiString || len(got.Strings) != 2 {
		t.Errorf("encode(list) = %+v", got)
	}
	lv, _ := keyMenu.LegalByLabel("F1")
	if got := encode(keyMenu, schema.EnumValue(lv)); got.Name != "key_menu" || got.Integer != 0x70 {
		t.Errorf("encode(enum) = %+v", got)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		code int
	}{
		{"nil", nil, "", ExitOK},
		{"plain", errors.New("boom"), "", ExitFailure},
		{"unknown attribute", newError(KindUnknownAttribute, "x", nil), KindUnknownAttribute, ExitUnknownAttribute},
		{"module not found", fmt.Errorf("wrapped: %w", ErrModuleNotFound), KindModuleNotFound, ExitModuleNotFound},
		{"invalid value", newError(KindInvalidValue, "x", nil), KindInvalidValue, ExitInvalidValue},
		{"registry access denied", fmt.Errorf("read: %w", registry.ErrAccessDenied), KindAccessDenied, ExitAccessDenied},
		{"corrupt", newError(KindCorruptValue, "x", nil), KindCorruptValue, ExitCorruptValue},
		{"registry type", registry.ErrInvalidValueType, KindInvalidValueType, ExitInvalidValueType},
		{"schema unknown", schema.ErrUnknownAttribute, KindUnknownAttribute, ExitUnknownAttribute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %q, want %q", got, tt.kind)
			}
			if got := ExitCode(tt.err); got != tt.code {
				t.Errorf("ExitCode() = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := newError(KindInvalidValue, `"Ultra" is not a legal value`, nil).
		WithModule("FlightSimX").
		WithAttribute("quality").
		WithLegal("Low", "Medium", "High")

	want := `"Ultra" is not a legal value (attribute=quality, module=FlightSimX); legal values: Low, Medium, High`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := newError(KindAccessDenied, "access denied", registry.ErrAccessDenied)
	if !errors.Is(wrapped, registry.ErrAccessDenied) {
		t.Error("underlying error not reachable through Unwrap")
	}
	if errors.Is(wrapped, ErrCorruptValue) {
		t.Error("kinds must not match across classes")
	}
}
