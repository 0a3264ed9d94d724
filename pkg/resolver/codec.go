package resolver

import (
	"fmt"
	"math"
	"strings"

	"github.com/xrtkcfg/xrtkcfg/pkg/registry"
	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
)

// coerce checks in against def and returns the canonical value.
func coerce(def schema.AttributeDefinition, in Input) (schema.Value, error) {
	invalid := func(format string, args ...any) error {
		return newError(KindInvalidValue, fmt.Sprintf(format, args...), nil).
			WithScope(def.Scope).
			WithAttribute(def.Name).
			WithLegal(legalHint(def)...)
	}

	switch def.Type {
	case schema.TypeEnumeratedInteger:
		switch in.kind {
		case InputLabel:
			if lv, ok := def.LegalByLabel(in.label); ok {
				return schema.EnumValue(lv), nil
			}
			return schema.Value{}, invalid("%q is not a legal value", in.label)
		case InputOrdinal:
			// Labels win over ordinals; "0x8" still reaches ordinal 8 when "8" is a label.
			if in.label != "" {
				if lv, ok := def.LegalByLabel(in.label); ok {
					return schema.EnumValue(lv), nil
				}
			}
			if lv, ok := def.LegalByOrdinal(in.ordinal); ok {
				return schema.EnumValue(lv), nil
			}
			return schema.Value{}, invalid("ordinal %d is not a legal value", in.ordinal)
		}

	case schema.TypeInteger:
		if in.kind != InputOrdinal {
			return schema.Value{}, invalid("%q is not an integer", in.String())
		}
		if !def.InRange(in.ordinal) || in.ordinal < 0 || in.ordinal > math.MaxUint32 {
			return schema.Value{}, invalid("%d is out of range", in.ordinal)
		}
		return schema.IntValue(in.ordinal), nil

	case schema.TypeFlag:
		switch in.kind {
		case InputOrdinal:
			if in.ordinal == 0 || in.ordinal == 1 {
				return schema.FlagValue(in.ordinal == 1), nil
			}
			return schema.Value{}, invalid("%d is not 0 or 1", in.ordinal)
		case InputLabel:
			if on, ok := schema.ParseFlagWord(in.label); ok {
				return schema.FlagValue(on), nil
			}
			return schema.Value{}, invalid("%q is not a boolean", in.label)
		}

	case schema.TypeStringList:
		var items []string
		switch in.kind {
		case InputStrings:
			items = in.items
		case InputLabel:
			items = strings.Split(in.label, ",")
		case InputOrdinal:
			items = []string{in.String()}
			if in.label != "" {
				items = []string{in.label}
			}
		}
		cleaned := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				cleaned = append(cleaned, item)
			}
		}
		return schema.StringListValue(cleaned...), nil
	}

	return schema.Value{}, invalid("%s input is not accepted by %s attributes", inputKindName(in.kind), def.Type)
}

func legalHint(def schema.AttributeDefinition) []string {
	if def.Type == schema.TypeEnumeratedInteger {
		return def.Labels()
	}
	return []string{def.Describe()}
}

func inputKindName(k InputKind) string {
	switch k {
	case InputLabel:
		return "label"
	case InputOrdinal:
		return "numeric"
	case InputStrings:
		return "list"
	}
	return "empty"
}

// encode renders v in its registry representation.
func encode(def schema.AttributeDefinition, v schema.Value) registry.Value {
	switch def.Type {
	case schema.TypeStringList:
		return registry.MultiString(def.RegistryValueName, v.Strings...)
	case schema.TypeFlag:
		if v.Bool() {
			return registry.DWord(def.RegistryValueName, 1)
		}
		return registry.DWord(def.RegistryValueName, 0)
	default:
		return registry.DWord(def.RegistryValueName, uint32(v.Int))
	}
}

// decode interprets a stored value. Integers outside Min/Max are returned as
// stored; only values with no meaning at all are reported as corrupt.
func decode(def schema.AttributeDefinition, raw registry.Value) (schema.Value, error) {
	corrupt := func(format string, args ...any) error {
		return newError(KindCorruptValue, fmt.Sprintf(format, args...), nil).
			WithScope(def.Scope).
			WithAttribute(def.Name)
	}

	switch def.Type {
	case schema.TypeEnumeratedInteger, schema.TypeInteger, schema.TypeFlag:
		// A QWORD here would also be refused on write, so it is not read either.
		if raw.Kind != registry.KindDWord {
			return schema.Value{}, corrupt("stored as %s, expected %s", raw.Kind, registry.KindDWord)
		}
		n := int64(raw.Integer)
		switch def.Type {
		case schema.TypeEnumeratedInteger:
			lv, ok := def.LegalByOrdinal(n)
			if !ok {
				return schema.Value{}, corrupt("stored ordinal %d is not a legal value", n)
			}
			return schema.EnumValue(lv), nil
		case schema.TypeFlag:
			return schema.FlagValue(n != 0), nil
		default:
			return schema.IntValue(n), nil
		}

	case schema.TypeStringList:
		if raw.Kind != registry.KindMultiString {
			return schema.Value{}, corrupt("stored as %s, expected %s", raw.Kind, registry.KindMultiString)
		}
		return schema.StringListValue(raw.Strings...), nil
	}

	return schema.Value{}, corrupt("unsupported attribute type %s", def.Type)
}
