package registry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrKeyNotFound is returned when a registry key does not exist.
	ErrKeyNotFound = errors.New("registry key not found")

	// ErrValueNotFound is returned when a value does not exist under an existing key.
	ErrValueNotFound = errors.New("registry value not found")

	// ErrAccessDenied is returned when the process lacks permission on a key.
	ErrAccessDenied = errors.New("registry access denied")

	// ErrInvalidValueType is returned when a value's payload does not match its kind.
	ErrInvalidValueType = errors.New("invalid registry value type")
)

// Hive identifies a registry root.
type Hive string

const (
	// HiveLocalMachine is HKEY_LOCAL_MACHINE.
	HiveLocalMachine Hive = "HKLM"
	// HiveCurrentUser is HKEY_CURRENT_USER.
	HiveCurrentUser Hive = "HKCU"
)

// Kind is a registry value type. Values match the Win32 REG_* constants.
type Kind uint32

const (
	KindNone         Kind = 0
	KindString       Kind = 1
	KindExpandString Kind = 2
	KindBinary       Kind = 3
	KindDWord        Kind = 4
	KindMultiString  Kind = 7
	KindQWord        Kind = 11
)

// String returns the REG_* name of k.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "REG_NONE"
	case KindString:
		return "REG_SZ"
	case KindExpandString:
		return "REG_EXPAND_SZ"
	case KindBinary:
		return "REG_BINARY"
	case KindDWord:
		return "REG_DWORD"
	case KindMultiString:
		return "REG_MULTI_SZ"
	case KindQWord:
		return "REG_QWORD"
	default:
		return fmt.Sprintf("REG_%d", uint32(k))
	}
}

// Value is a named registry value. Only the payload field matching Kind is used.
type Value struct {
	Name    string
	Kind    Kind
	Integer uint64
	String  string
	Strings []string
	Binary  []byte
}

// DWord builds a REG_DWORD value.
func DWord(name string, n uint32) Value {
	return Value{Name: name, Kind: KindDWord, Integer: uint64(n)}
}

// MultiString builds a REG_MULTI_SZ value.
func MultiString(name string, items ...string) Value {
	return Value{Name: name, Kind: KindMultiString, Strings: append([]string{}, items...)}
}

// Validate checks that the payload is representable for the value's kind.
func (v Value) Validate() error {
	switch v.Kind {
	case KindDWord:
		if v.Integer > math.MaxUint32 {
			return fmt.Errorf("%w: %d does not fit %s", ErrInvalidValueType, v.Integer, v.Kind)
		}
	case KindQWord, KindBinary:
	case KindString, KindExpandString:
		if strings.ContainsRune(v.String, 0) {
			return fmt.Errorf("%w: %s contains NUL", ErrInvalidValueType, v.Kind)
		}
	case KindMultiString:
		for _, s := range v.Strings {
			if s == "" || strings.ContainsRune(s, 0) {
				return fmt.Errorf("%w: %s items must be non-empty and NUL-free", ErrInvalidValueType, v.Kind)
			}
		}
	default:
		return fmt.Errorf("%w: unsupported kind %s", ErrInvalidValueType, v.Kind)
	}
	return nil
}

// Display renders the payload for listings.
func (v Value) Display() string {
	switch v.Kind {
	case KindDWord, KindQWord:
		return fmt.Sprintf("%d", v.Integer)
	case KindString, KindExpandString:
		return v.String
	case KindMultiString:
		return strings.Join(v.Strings, ",")
	case KindBinary:
		return fmt.Sprintf("%x", v.Binary)
	default:
		return ""
	}
}

// Backend is a physical registry store. Paths are backslash separated and
// relative to the hive; comparisons are case-insensitive.
type Backend interface {
	// ListSubkeys returns the names of the immediate children of path.
	ListSubkeys(ctx context.Context, hive Hive, path string) ([]string, error)

	// KeyExists reports whether path exists.
	KeyExists(ctx context.Context, hive Hive, path string) (bool, error)

	// ListValues returns every value stored directly under path.
	ListValues(ctx context.Context, hive Hive, path string) ([]Value, error)

	// GetValue returns ErrKeyNotFound or ErrValueNotFound when absent.
	GetValue(ctx context.Context, hive Hive, path, name string) (Value, error)

	// SetValue writes v under an existing key.
	SetValue(ctx context.Context, hive Hive, path string, v Value) error

	Close() error
}

// joinPath joins registry path segments with backslashes.
func joinPath(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, `\`)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, `\`)
}

// splitPath returns the parent path and leaf name of path.
func splitPath(path string) (parent, name string) {
	path = strings.Trim(path, `\`)
	idx := strings.LastIndex(path, `\`)
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}
