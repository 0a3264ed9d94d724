package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnknownAttribute is returned when a scope has no attribute of the requested name.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrInvalidDefinition is returned by New for a malformed attribute table.
	ErrInvalidDefinition = errors.New("invalid attribute definition")
)

// Schema is an immutable set of attribute definitions indexed per scope.
type Schema struct {
	ordered map[Scope][]AttributeDefinition
	byName  map[Scope]map[string]int
	byValue map[Scope]map[string]int
}

var defaultSchema = sync.OnceValue(func() *Schema {
	defs := append(applicationAttributes(), moduleAttributes()...)
	s, err := New(defs...)
	if err != nil {
		panic(fmt.Sprintf("built-in OpenXR Toolkit schema: %v", err))
	}
	return s
})

// Default returns the OpenXR Toolkit schema pinned to UpstreamVersion.
func Default() *Schema {
	return defaultSchema()
}

// New validates defs and builds a schema from them. Definition order is kept.
func New(defs ...AttributeDefinition) (*Schema, error) {
	v := validator.New()
	s := &Schema{
		ordered: make(map[Scope][]AttributeDefinition),
		byName:  make(map[Scope]map[string]int),
		byValue: make(map[Scope]map[string]int),
	}

	for _, def := range defs {
		if err := v.Struct(def); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, def.Name, err)
		}
		if err := checkDefinition(def); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, def.Name, err)
		}

		if s.byName[def.Scope] == nil {
			s.byName[def.Scope] = make(map[string]int)
			s.byValue[def.Scope] = make(map[string]int)
		}

		nameKey := strings.ToLower(def.Name)
		if _, exists := s.byName[def.Scope][nameKey]; exists {
			return nil, fmt.Errorf("%w: duplicate attribute %q in %s scope", ErrInvalidDefinition, def.Name, def.Scope)
		}
		// Registry value names are case-insensitive.
		valueKey := strings.ToLower(def.RegistryValueName)
		if prev, exists := s.byValue[def.Scope][valueKey]; exists {
			return nil, fmt.Errorf("%w: %q and %q share registry value %q in %s scope",
				ErrInvalidDefinition, s.ordered[def.Scope][prev].Name, def.Name, def.RegistryValueName, def.Scope)
		}

		idx := len(s.ordered[def.Scope])
		def.Legal = append([]LegalValue(nil), def.Legal...)
		s.ordered[def.Scope] = append(s.ordered[def.Scope], def)
		s.byName[def.Scope][nameKey] = idx
		s.byValue[def.Scope][valueKey] = idx
	}

	return s, nil
}

func checkDefinition(def AttributeDefinition) error {
	if def.Default.Type != def.Type {
		return fmt.Errorf("default has type %s, want %s", def.Default.Type, def.Type)
	}

	switch def.Type {
	case TypeEnumeratedInteger:
		if len(def.Legal) == 0 {
			return errors.New("enumerated attribute without legal values")
		}
		ordinals := make(map[int64]bool, len(def.Legal))
		labels := make(map[string]bool, len(def.Legal))
		for _, lv := range def.Legal {
			if lv.Ordinal < 0 || lv.Ordinal > 0xFFFFFFFF {
				return fmt.Errorf("ordinal %d of %q does not fit a DWORD", lv.Ordinal, lv.Label)
			}
			if ordinals[lv.Ordinal] {
				return fmt.Errorf("duplicate ordinal %d", lv.Ordinal)
			}
			key := strings.ToLower(lv.Label)
			if labels[key] {
				return fmt.Errorf("duplicate label %q", lv.Label)
			}
			ordinals[lv.Ordinal] = true
			labels[key] = true
		}
		lv, ok := def.LegalByOrdinal(def.Default.Int)
		if !ok || lv.Label != def.Default.Label {
			return fmt.Errorf("default %q is not a legal value", def.Default.Label)
		}
	case TypeInteger:
		if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
			return fmt.Errorf("min %d greater than max %d", *def.Min, *def.Max)
		}
		if !def.InRange(def.Default.Int) {
			return fmt.Errorf("default %d out of range", def.Default.Int)
		}
		if len(def.Legal) > 0 {
			return errors.New("legal values on a non-enumerated attribute")
		}
	default:
		if len(def.Legal) > 0 {
			return errors.New("legal values on a non-enumerated attribute")
		}
	}
	return nil
}

// Lookup returns the definition of name in scope. Names match case-insensitively.
func (s *Schema) Lookup(scope Scope, name string) (AttributeDefinition, error) {
	idx, ok := s.byName[scope][strings.ToLower(name)]
	if !ok {
		return AttributeDefinition{}, fmt.Errorf("%w: %q in %s scope", ErrUnknownAttribute, name, scope)
	}
	return detach(s.ordered[scope][idx]), nil
}

// ByRegistryName finds the attribute stored under the given registry value name.
func (s *Schema) ByRegistryName(scope Scope, valueName string) (AttributeDefinition, bool) {
	idx, ok := s.byValue[scope][strings.ToLower(valueName)]
	if !ok {
		return AttributeDefinition{}, false
	}
	return detach(s.ordered[scope][idx]), true
}

// Attributes returns the definitions of scope in table order.
func (s *Schema) Attributes(scope Scope) []AttributeDefinition {
	defs := make([]AttributeDefinition, 0, len(s.ordered[scope]))
	for _, def := range s.ordered[scope] {
		defs = append(defs, detach(def))
	}
	return defs
}

// detach copies the parts of def that share memory with the schema.
func detach(def AttributeDefinition) AttributeDefinition {
	def.Legal = slices.Clone(def.Legal)
	if def.Min != nil {
		lo := *def.Min
		def.Min = &lo
	}
	if def.Max != nil {
		hi := *def.Max
		def.Max = &hi
	}
	def.Default.Strings = slices.Clone(def.Default.Strings)
	return def
}

// Names returns the attribute names of scope in table order.
func (s *Schema) Names(scope Scope) []string {
	names := make([]string, 0, len(s.ordered[scope]))
	for _, def := range s.ordered[scope] {
		names = append(names, def.Name)
	}
	return names
}
