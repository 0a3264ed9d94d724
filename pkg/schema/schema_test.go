package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultSchema_Builds(t *testing.T) {
	s := Default()

	if got := len(s.Attributes(ScopeModule)); got == 0 {
		t.Fatal("expected module attributes")
	}
	if got := len(s.Attributes(ScopeApplication)); got == 0 {
		t.Fatal("expected application attributes")
	}
}

func TestDefaultSchema_RegistryNamesUnique(t *testing.T) {
	s := Default()

	for _, scope := range []Scope{ScopeApplication, ScopeModule} {
		seen := make(map[string]string)
		for _, def := range s.Attributes(scope) {
			key := strings.ToLower(def.RegistryValueName)
			if other, ok := seen[key]; ok {
				t.Errorf("%s scope: %s and %s share registry value %s", scope, other, def.Name, def.RegistryValueName)
			}
			seen[key] = def.Name
		}
	}
}

func TestDefaultSchema_DefaultsAreLegal(t *testing.T) {
	s := Default()

	for _, scope := range []Scope{ScopeApplication, ScopeModule} {
		for _, def := range s.Attributes(scope) {
			if err := checkDefinition(def); err != nil {
				t.Errorf("%s: %v", def.Name, err)
			}
		}
	}
}

func TestDefaultSchema_PinnedOrdinals(t *testing.T) {
	s := Default()

	tests := []struct {
		attr    string
		label   string
		ordinal int64
	}{
		{"turbo", "On", 1},
		{"first_run2", "On", 8},
		{"scaling_type", "CAS", 3},
		{"motion_reprojection_rate", "Off", 1},
		{"motion_reprojection_rate", "R_22Hz", 4},
		{"motion_reprojection", "Default", 0},
		{"post_sunglasses", "Night", 3},
		{"overlay", "Developer", 3},
		{"vrs_outer", "x1_16", 4},
	}

	for _, tt := range tests {
		t.Run(tt.attr+"/"+tt.label, func(t *testing.T) {
			def, err := s.Lookup(ScopeModule, tt.attr)
			if err != nil {
				t.Fatalf("lookup failed: %v", err)
			}
			lv, ok := def.LegalByLabel(tt.label)
			if !ok {
				t.Fatalf("label %s not legal for %s", tt.label, tt.attr)
			}
			if lv.Ordinal != tt.ordinal {
				t.Errorf("expected ordinal %d, got %d", tt.ordinal, lv.Ordinal)
			}
		})
	}
}

func TestSchema_Lookup(t *testing.T) {
	s := Default()

	def, err := s.Lookup(ScopeModule, "TURBO")
	if err != nil {
		t.Fatalf("expected case-insensitive match: %v", err)
	}
	if def.Name != "turbo" {
		t.Errorf("expected turbo, got %s", def.Name)
	}

	_, err = s.Lookup(ScopeModule, "notAnAttribute")
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("expected ErrUnknownAttribute, got %v", err)
	}

	// Application attributes are not visible from the module scope.
	_, err = s.Lookup(ScopeModule, "safe_mode")
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("expected ErrUnknownAttribute for cross-scope lookup, got %v", err)
	}
}

func TestNew_RejectsBrokenTables(t *testing.T) {
	turbo := enumAttr(ScopeModule, "turbo", OnOff, "Off", "")

	tests := []struct {
		name string
		defs []AttributeDefinition
	}{
		{
			name: "aliased registry value",
			defs: []AttributeDefinition{
				turbo,
				func() AttributeDefinition {
					d := enumAttr(ScopeModule, "turbo_mode", OnOff, "Off", "")
					d.RegistryValueName = "Turbo"
					return d
				}(),
			},
		},
		{
			name: "duplicate name",
			defs: []AttributeDefinition{turbo, turbo},
		},
		{
			name: "unknown default label",
			defs: []AttributeDefinition{enumAttr(ScopeModule, "turbo", OnOff, "Maybe", "")},
		},
		{
			name: "duplicate ordinal",
			defs: []AttributeDefinition{enumAttr(ScopeModule, "x", []LegalValue{{0, "A"}, {0, "B"}}, "A", "")},
		},
		{
			name: "default out of range",
			defs: []AttributeDefinition{intAttr(ScopeModule, "scaling", 25, 400, 10, "")},
		},
		{
			name: "missing scope",
			defs: []AttributeDefinition{{Name: "x", RegistryValueName: "x", Type: TypeFlag, Default: FlagValue(false)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.defs...)
			if !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("expected ErrInvalidDefinition, got %v", err)
			}
		})
	}
}

func TestNew_SameNameAcrossScopes(t *testing.T) {
	_, err := New(
		flagAttr(ScopeApplication, "safe_mode", false, ""),
		flagAttr(ScopeModule, "safe_mode", false, ""),
	)
	if err != nil {
		t.Fatalf("scopes are independent namespaces: %v", err)
	}
}

func TestParseScope(t *testing.T) {
	tests := map[string]Scope{
		"app":         ScopeApplication,
		"Application": ScopeApplication,
		"machine":     ScopeApplication,
		"module":      ScopeModule,
		"user":        ScopeModule,
		"game":        ScopeModule,
	}
	for token, want := range tests {
		got, err := ParseScope(token)
		if err != nil {
			t.Errorf("%s: unexpected error %v", token, err)
			continue
		}
		if got != want {
			t.Errorf("%s: expected %s, got %s", token, want, got)
		}
	}

	if _, err := ParseScope("hklm"); err == nil {
		t.Error("expected error for unknown scope")
	}
}

func TestValue_StringAndEqual(t *testing.T) {
	if got := FlagValue(true).String(); got != "true" {
		t.Errorf("expected true, got %s", got)
	}
	if got := StringListValue("a.exe", "b.exe").String(); got != "a.exe,b.exe" {
		t.Errorf("unexpected list rendering %s", got)
	}
	if !EnumValue(LegalValue{1, "On"}).Equal(Value{Type: TypeEnumeratedInteger, Int: 1}) {
		t.Error("enum values compare by ordinal")
	}
	if IntValue(1).Equal(FlagValue(true)) {
		t.Error("values of different types must not be equal")
	}
}

func TestSchema_ByRegistryName(t *testing.T) {
	s := Default()

	def, ok := s.ByRegistryName(ScopeModule, "TURBO")
	if !ok || def.Name != "turbo" {
		t.Fatalf("ByRegistryName(TURBO) = %q, %v", def.Name, ok)
	}
	if _, ok := s.ByRegistryName(ScopeApplication, "turbo"); ok {
		t.Error("module value resolved in application scope")
	}
	if _, ok := s.ByRegistryName(ScopeModule, "legacy_setting"); ok {
		t.Error("unknown value name resolved")
	}
}

func TestSchema_DefinitionsAreCopies(t *testing.T) {
	s := Default()

	def, err := s.Lookup(ScopeModule, "turbo")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	def.Legal[0].Label = "Broken"

	for _, d := range s.Attributes(ScopeModule) {
		if d.Name == "scaling" {
			*d.Min = 0
		}
		if d.Name == "turbo" {
			d.Legal[1].Ordinal = 42
		}
	}

	again, _ := s.Lookup(ScopeModule, "turbo")
	if again.Legal[0].Label != "Off" || again.Legal[1].Ordinal != 1 {
		t.Errorf("turbo legal values changed through a returned copy: %+v", again.Legal)
	}
	scaling, _ := s.Lookup(ScopeModule, "scaling")
	if *scaling.Min != 25 {
		t.Errorf("scaling min = %d, want 25", *scaling.Min)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		text string
		want int64
		ok   bool
	}{
		{"8", 8, true},
		{" -3 ", -3, true},
		{"0x70", 0x70, true},
		{"0X1b", 0x1b, true},
		{"0x", 0, false},
		{"F1", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseNumber(%q) = %d, %v, want %d, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseFlagWord(t *testing.T) {
	for word, want := range map[string]bool{"On": true, "YES": true, "enabled": true, "off": false, " No ": false} {
		got, ok := ParseFlagWord(word)
		if !ok || got != want {
			t.Errorf("ParseFlagWord(%q) = %v, %v, want %v", word, got, ok, want)
		}
	}
	if _, ok := ParseFlagWord("maybe"); ok {
		t.Error("ParseFlagWord(maybe) accepted")
	}
}
