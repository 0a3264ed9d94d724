package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope selects where an attribute is stored.
type Scope int

const (
	// ScopeApplication settings are machine-wide.
	ScopeApplication Scope = iota + 1
	// ScopeModule settings are per user and per game.
	ScopeModule
)

// String returns the canonical scope token.
func (s Scope) String() string {
	switch s {
	case ScopeApplication:
		return "application"
	case ScopeModule:
		return "module"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeApplication || s == ScopeModule
}

// ParseScope converts a user-supplied scope token.
func ParseScope(token string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "app", "application", "machine", "global":
		return ScopeApplication, nil
	case "module", "mod", "user", "game":
		return ScopeModule, nil
	default:
		return 0, fmt.Errorf("unknown scope %q (expected application or module)", token)
	}
}

// ValueType is the logical type of an attribute.
type ValueType int

const (
	// TypeInteger is a plain DWORD, optionally range checked.
	TypeInteger ValueType = iota + 1
	// TypeEnumeratedInteger is a DWORD whose ordinals come from a closed table.
	TypeEnumeratedInteger
	// TypeStringList is a REG_MULTI_SZ.
	TypeStringList
	// TypeFlag is a DWORD read as a boolean.
	TypeFlag
)

// String returns the type name.
func (t ValueType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeEnumeratedInteger:
		return "enum"
	case TypeStringList:
		return "string-list"
	case TypeFlag:
		return "flag"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// LegalValue is one (ordinal, label) pair of an enumerated attribute.
type LegalValue struct {
	Ordinal int64  `json:"ordinal"`
	Label   string `json:"label" validate:"required"`
}

// AttributeDefinition describes one configurable setting.
type AttributeDefinition struct {
	Name              string       `json:"name" validate:"required,max=64"`
	RegistryValueName string       `json:"registry_value_name" validate:"required,max=255"`
	Type              ValueType    `json:"type" validate:"required,min=1,max=4"`
	Scope             Scope        `json:"scope" validate:"required,min=1,max=2"`
	Legal             []LegalValue `json:"legal,omitempty" validate:"dive"`
	Default           Value        `json:"default"`
	Min               *int64       `json:"min,omitempty"`
	Max               *int64       `json:"max,omitempty"`
	Description       string       `json:"description,omitempty"`
}

// Labels returns the legal labels in table order.
func (d AttributeDefinition) Labels() []string {
	labels := make([]string, 0, len(d.Legal))
	for _, lv := range d.Legal {
		labels = append(labels, lv.Label)
	}
	return labels
}

// LegalByOrdinal finds the legal value with the given ordinal.
func (d AttributeDefinition) LegalByOrdinal(ordinal int64) (LegalValue, bool) {
	for _, lv := range d.Legal {
		if lv.Ordinal == ordinal {
			return lv, true
		}
	}
	return LegalValue{}, false
}

// LegalByLabel finds the legal value with the given label, ignoring case.
func (d AttributeDefinition) LegalByLabel(label string) (LegalValue, bool) {
	for _, lv := range d.Legal {
		if strings.EqualFold(lv.Label, label) {
			return lv, true
		}
	}
	return LegalValue{}, false
}

// InRange reports whether n respects the Min/Max bounds of an integer attribute.
func (d AttributeDefinition) InRange(n int64) bool {
	if d.Min != nil && n < *d.Min {
		return false
	}
	if d.Max != nil && n > *d.Max {
		return false
	}
	return true
}

// ParseNumber reads decimal or 0x-prefixed hexadecimal text.
func ParseNumber(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, true
	}
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") {
		if n, err := strconv.ParseInt(lower[2:], 16, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

var flagWords = map[string]bool{
	"true": true, "on": true, "yes": true, "enabled": true,
	"false": false, "off": false, "no": false, "disabled": false,
}

// ParseFlagWord reads the words accepted for a flag, ignoring case.
func ParseFlagWord(word string) (on, ok bool) {
	on, ok = flagWords[strings.ToLower(strings.TrimSpace(word))]
	return on, ok
}

// Describe summarises the accepted values for help and error text.
func (d AttributeDefinition) Describe() string {
	switch d.Type {
	case TypeEnumeratedInteger:
		parts := make([]string, 0, len(d.Legal))
		for _, lv := range d.Legal {
			parts = append(parts, fmt.Sprintf("%s (%d)", lv.Label, lv.Ordinal))
		}
		return strings.Join(parts, ", ")
	case TypeInteger:
		switch {
		case d.Min != nil && d.Max != nil:
			return fmt.Sprintf("integer in [%d, %d]", *d.Min, *d.Max)
		case d.Min != nil:
			return fmt.Sprintf("integer >= %d", *d.Min)
		case d.Max != nil:
			return fmt.Sprintf("integer <= %d", *d.Max)
		}
		return "integer"
	case TypeFlag:
		return "true, false (on/off, 1/0)"
	case TypeStringList:
		return "comma-separated list of strings"
	}
	return d.Type.String()
}

// Value is a resolved attribute value.
type Value struct {
	Type    ValueType `json:"-"`
	Int     int64     `json:"int,omitempty"`
	Label   string    `json:"label,omitempty"`
	Strings []string  `json:"strings,omitempty"`
}

// IntValue builds an Integer value.
func IntValue(n int64) Value {
	return Value{Type: TypeInteger, Int: n}
}

// EnumValue builds an EnumeratedInteger value.
func EnumValue(lv LegalValue) Value {
	return Value{Type: TypeEnumeratedInteger, Int: lv.Ordinal, Label: lv.Label}
}

// FlagValue builds a Flag value.
func FlagValue(on bool) Value {
	v := Value{Type: TypeFlag}
	if on {
		v.Int = 1
	}
	return v
}

// StringListValue builds a StringList value.
func StringListValue(items ...string) Value {
	return Value{Type: TypeStringList, Strings: append([]string{}, items...)}
}

// Bool returns the value of a flag.
func (v Value) Bool() bool {
	return v.Int != 0
}

// Interface returns the value in the shape used by profile documents.
func (v Value) Interface() any {
	switch v.Type {
	case TypeEnumeratedInteger:
		return v.Label
	case TypeFlag:
		return v.Bool()
	case TypeStringList:
		return append([]string{}, v.Strings...)
	default:
		return v.Int
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.Type {
	case TypeEnumeratedInteger:
		return v.Label
	case TypeFlag:
		return strconv.FormatBool(v.Bool())
	case TypeStringList:
		return strings.Join(v.Strings, ",")
	default:
		return strconv.FormatInt(v.Int, 10)
	}
}

// Equal compares two values of the same attribute.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeStringList:
		if len(v.Strings) != len(o.Strings) {
			return false
		}
		for i := range v.Strings {
			if v.Strings[i] != o.Strings[i] {
				return false
			}
		}
		return true
	case TypeFlag:
		return v.Bool() == o.Bool()
	default:
		return v.Int == o.Int
	}
}
