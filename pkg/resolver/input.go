package resolver

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
)

// InputKind tells which variant an Input holds.
type InputKind int

const (
	// InputLabel is a symbolic value such as "On" or "true".
	InputLabel InputKind = iota + 1
	// InputOrdinal is a raw number.
	InputOrdinal
	// InputStrings is an explicit list for string-list attributes.
	InputStrings
)

// Input is a user-supplied value before it is checked against an attribute.
// Enumerated attributes accept either a label or an ordinal.
type Input struct {
	kind InputKind
	// label is the text of a label, or the text a parsed ordinal was read from.
	label   string
	ordinal int64
	items   []string
}

// Label builds a symbolic input.
func Label(label string) Input {
	return Input{kind: InputLabel, label: label}
}

// Ordinal builds a numeric input.
func Ordinal(n int64) Input {
	return Input{kind: InputOrdinal, ordinal: n}
}

// Strings builds a list input.
func Strings(items ...string) Input {
	return Input{kind: InputStrings, items: append([]string{}, items...)}
}

// ParseInput reads command-line text: decimal or 0x-prefixed hexadecimal
// numbers become ordinals, anything else is a label. A numeric input keeps
// its text so an enumerated attribute with a label of the same spelling
// (the digit keys "0" to "9") resolves to that label.
func ParseInput(raw string) Input {
	text := strings.TrimSpace(raw)
	if n, ok := schema.ParseNumber(text); ok {
		return Input{kind: InputOrdinal, label: text, ordinal: n}
	}
	return Label(text)
}

// InputFromAny converts a decoded profile setting.
func InputFromAny(v any) (Input, error) {
	switch t := v.(type) {
	case string:
		return ParseInput(t), nil
	case bool:
		if t {
			return Ordinal(1), nil
		}
		return Ordinal(0), nil
	case int:
		return Ordinal(int64(t)), nil
	case int64:
		return Ordinal(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return Input{}, fmt.Errorf("number %d out of range", t)
		}
		return Ordinal(int64(t)), nil
	case float64:
		if t != math.Trunc(t) {
			return Input{}, fmt.Errorf("number %v is not an integer", t)
		}
		return Ordinal(int64(t)), nil
	case []string:
		return Strings(t...), nil
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return Input{}, fmt.Errorf("list item %v is not a string", item)
			}
			items = append(items, s)
		}
		return Strings(items...), nil
	}
	return Input{}, fmt.Errorf("unsupported value %v (%T)", v, v)
}

// Kind returns the variant held by in.
func (in Input) Kind() InputKind {
	return in.kind
}

// String renders the input as typed.
func (in Input) String() string {
	switch in.kind {
	case InputOrdinal:
		return strconv.FormatInt(in.ordinal, 10)
	case InputStrings:
		return strings.Join(in.items, ",")
	default:
		return in.label
	}
}
