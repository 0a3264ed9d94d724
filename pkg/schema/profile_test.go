package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestProfileSchema_Compiles(t *testing.T) {
	src := Default().ProfileSchema()

	if !strings.Contains(src, `"turbo"?: "Off" | "On" | 0 | 1`) {
		t.Errorf("turbo constraint missing from schema:\n%s", src)
	}
	if !strings.Contains(src, `"scaling"?: int & >=25 & <=400`) {
		t.Errorf("scaling constraint missing from schema:\n%s", src)
	}

	// An empty profile exercises compilation of the full schema.
	if err := Default().ValidateProfile(&Profile{}); err != nil {
		t.Fatalf("empty profile should validate: %v", err)
	}
}

func TestValidateProfile(t *testing.T) {
	s := Default()

	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{
			name:     "labels and ordinals",
			settings: map[string]any{"turbo": "On", "scaling_type": 2, "scaling": float64(80)},
		},
		{
			name:     "json numbers",
			settings: map[string]any{"overlay": float64(1), "sharpness": float64(35)},
		},
		{
			name:     "labels ignore case",
			settings: map[string]any{"turbo": "on", "vrs_inner": "X1"},
		},
		{
			name:     "names ignore case",
			settings: map[string]any{"Turbo": "On", "SCALING": 80},
		},
		{
			name:     "numeric strings",
			settings: map[string]any{"scaling": "0x50", "turbo": "1"},
		},
		{
			name:     "same setting twice",
			settings: map[string]any{"turbo": "On", "TURBO": "Off"},
			wantErr:  true,
		},
		{
			name:     "numeric string out of range",
			settings: map[string]any{"scaling": "10"},
			wantErr:  true,
		},
		{
			name:     "unknown label",
			settings: map[string]any{"turbo": "Maybe"},
			wantErr:  true,
		},
		{
			name:     "illegal ordinal",
			settings: map[string]any{"turbo": 99},
			wantErr:  true,
		},
		{
			name:     "out of range integer",
			settings: map[string]any{"scaling": 10},
			wantErr:  true,
		},
		{
			name:     "fractional integer",
			settings: map[string]any{"scaling": 80.5},
			wantErr:  true,
		},
		{
			name:     "unknown attribute",
			settings: map[string]any{"warp_drive": "On"},
			wantErr:  true,
		},
		{
			name:     "application attribute in module profile",
			settings: map[string]any{"safe_mode": true},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateProfile(&Profile{Module: "FlightSimX", Settings: tt.settings})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProfile) {
					t.Errorf("expected ErrInvalidProfile, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateProfile_NormalizesSettings(t *testing.T) {
	p := &Profile{Settings: map[string]any{"sharpness": float64(35)}}
	if err := Default().ValidateProfile(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.Settings["sharpness"].(int64); !ok {
		t.Errorf("expected int64 after normalisation, got %T", p.Settings["sharpness"])
	}
}

func TestValidateProfile_CanonicalSpelling(t *testing.T) {
	p := &Profile{Settings: map[string]any{"Turbo": "on", "scaling": "0x50", "overlay": "1"}}
	if err := Default().ValidateProfile(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Settings["turbo"]; got != "On" {
		t.Errorf("turbo = %#v, want \"On\"", got)
	}
	if got := p.Settings["scaling"]; got != int64(80) {
		t.Errorf("scaling = %#v, want int64(80)", got)
	}
	if got := p.Settings["overlay"]; got != int64(1) {
		t.Errorf("overlay = %#v, want int64(1)", got)
	}
}
