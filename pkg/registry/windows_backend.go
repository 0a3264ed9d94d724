//go:build windows

package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// WindowsBackend implements Backend on the Win32 registry. The registry API
// has no cancellation, so contexts are ignored.
type WindowsBackend struct{}

// NewWindowsBackend returns a backend bound to the live registry.
func NewWindowsBackend() (*WindowsBackend, error) {
	return &WindowsBackend{}, nil
}

func rootKey(hive Hive) (registry.Key, error) {
	switch hive {
	case HiveLocalMachine:
		return registry.LOCAL_MACHINE, nil
	case HiveCurrentUser:
		return registry.CURRENT_USER, nil
	default:
		return 0, fmt.Errorf("unsupported hive %q", hive)
	}
}

func (w *WindowsBackend) open(hive Hive, path string, access uint32) (registry.Key, error) {
	root, err := rootKey(hive)
	if err != nil {
		return 0, err
	}
	k, err := registry.OpenKey(root, joinPath(path), access)
	if err != nil {
		return 0, classifyWin32Error(err, fmt.Sprintf(`%s\%s`, hive, joinPath(path)))
	}
	return k, nil
}

// KeyExists reports whether path exists.
func (w *WindowsBackend) KeyExists(_ context.Context, hive Hive, path string) (bool, error) {
	k, err := w.open(hive, path, registry.QUERY_VALUE)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_ = k.Close()
	return true, nil
}

// ListSubkeys returns the immediate children of path.
func (w *WindowsBackend) ListSubkeys(_ context.Context, hive Hive, path string) ([]string, error) {
	k, err := w.open(hive, path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, classifyWin32Error(err, path)
	}
	sort.Slice(names, func(i, j int) bool { return strings.ToLower(names[i]) < strings.ToLower(names[j]) })
	return names, nil
}

// ListValues returns every value under path.
func (w *WindowsBackend) ListValues(_ context.Context, hive Hive, path string) ([]Value, error) {
	k, err := w.open(hive, path, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadValueNames(-1)
	if err != nil {
		return nil, classifyWin32Error(err, path)
	}
	sort.Slice(names, func(i, j int) bool { return strings.ToLower(names[i]) < strings.ToLower(names[j]) })

	values := make([]Value, 0, len(names))
	for _, name := range names {
		v, err := readValue(k, name)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// GetValue retrieves one value.
func (w *WindowsBackend) GetValue(_ context.Context, hive Hive, path, name string) (Value, error) {
	k, err := w.open(hive, path, registry.QUERY_VALUE)
	if err != nil {
		return Value{}, err
	}
	defer k.Close()
	return readValue(k, name)
}

// SetValue writes v under an existing key.
func (w *WindowsBackend) SetValue(_ context.Context, hive Hive, path string, v Value) error {
	if err := v.Validate(); err != nil {
		return err
	}
	k, err := w.open(hive, path, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	switch v.Kind {
	case KindDWord:
		err = k.SetDWordValue(v.Name, uint32(v.Integer))
	case KindQWord:
		err = k.SetQWordValue(v.Name, v.Integer)
	case KindString:
		err = k.SetStringValue(v.Name, v.String)
	case KindExpandString:
		err = k.SetExpandStringValue(v.Name, v.String)
	case KindMultiString:
		err = k.SetStringsValue(v.Name, v.Strings)
	case KindBinary:
		err = k.SetBinaryValue(v.Name, v.Binary)
	}
	if err != nil {
		return classifyWin32Error(err, v.Name)
	}
	return nil
}

// Close is a no-op; keys are closed after each call.
func (w *WindowsBackend) Close() error {
	return nil
}

func readValue(k registry.Key, name string) (Value, error) {
	size, valtype, err := k.GetValue(name, nil)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Value{}, fmt.Errorf("%w: %s", ErrValueNotFound, name)
		}
		return Value{}, classifyWin32Error(err, name)
	}

	v := Value{Name: name, Kind: Kind(valtype)}
	switch valtype {
	case registry.DWORD, registry.QWORD:
		v.Integer, _, err = k.GetIntegerValue(name)
	case registry.SZ, registry.EXPAND_SZ:
		v.String, _, err = k.GetStringValue(name)
	case registry.MULTI_SZ:
		v.Strings, _, err = k.GetStringsValue(name)
	default:
		v.Binary = make([]byte, size)
		_, _, err = k.GetValue(name, v.Binary)
	}
	if err != nil {
		return Value{}, classifyWin32Error(err, name)
	}
	return v, nil
}

func classifyWin32Error(err error, target string) error {
	switch {
	case errors.Is(err, registry.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrKeyNotFound, target)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %s", ErrAccessDenied, target)
	case errors.Is(err, registry.ErrUnexpectedType):
		return fmt.Errorf("%w: %s: %w", ErrInvalidValueType, target, err)
	default:
		return fmt.Errorf("registry operation on %s failed: %w", target, err)
	}
}

func openWindowsBackend() (Backend, error) {
	return NewWindowsBackend()
}
