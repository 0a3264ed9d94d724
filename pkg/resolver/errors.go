package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xrtkcfg/xrtkcfg/pkg/registry"
	"github.com/xrtkcfg/xrtkcfg/pkg/schema"
)

// Kind classifies a resolver failure.
type Kind string

const (
	// KindUnknownAttribute: the attribute is not defined for the scope.
	KindUnknownAttribute Kind = "UnknownAttribute"

	// KindModuleNotFound: the module has no per-user key.
	KindModuleNotFound Kind = "ModuleNotFound"

	// KindInvalidValue: the supplied value is not legal for the attribute.
	KindInvalidValue Kind = "InvalidValue"

	// KindAccessDenied: the process may not read or write the key.
	KindAccessDenied Kind = "AccessDenied"

	// KindCorruptValue: a stored value cannot be decoded per the schema.
	KindCorruptValue Kind = "CorruptValue"

	// KindInvalidValueType: the registry rejected the value's representation.
	KindInvalidValueType Kind = "InvalidValueType"
)

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrUnknownAttribute = &Error{Kind: KindUnknownAttribute, Message: "unknown attribute"}
	ErrModuleNotFound   = &Error{Kind: KindModuleNotFound, Message: "module not found"}
	ErrInvalidValue     = &Error{Kind: KindInvalidValue, Message: "invalid value"}
	ErrAccessDenied     = &Error{Kind: KindAccessDenied, Message: "access denied"}
	ErrCorruptValue     = &Error{Kind: KindCorruptValue, Message: "corrupt value"}
	ErrInvalidValueType = &Error{Kind: KindInvalidValueType, Message: "invalid value type"}
)

const elevationHint = "re-run from an elevated (Run as administrator) prompt"

// Error is a classified resolver error with its context.
type Error struct {
	// Kind is the failure class.
	Kind Kind `json:"kind"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Scope, Module and Attribute locate the failure, when known.
	Scope     string `json:"scope,omitempty"`
	Module    string `json:"module,omitempty"`
	Attribute string `json:"attribute,omitempty"`

	// Legal lists the accepted values for InvalidValue errors.
	Legal []string `json:"legal,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Attribute != "" {
		fmt.Fprintf(&b, " (attribute=%s", e.Attribute)
		if e.Module != "" {
			fmt.Fprintf(&b, ", module=%s", e.Module)
		}
		b.WriteString(")")
	} else if e.Module != "" {
		fmt.Fprintf(&b, " (module=%s)", e.Module)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err)
	}
	if len(e.Legal) > 0 {
		fmt.Fprintf(&b, "; legal values: %s", strings.Join(e.Legal, ", "))
	}
	if e.Kind == KindAccessDenied {
		fmt.Fprintf(&b, "; %s", elevationHint)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithScope adds scope context to an error.
func (e *Error) WithScope(scope schema.Scope) *Error {
	e.Scope = scope.String()
	return e
}

// WithModule adds module context to an error.
func (e *Error) WithModule(module string) *Error {
	e.Module = module
	return e
}

// WithAttribute adds attribute context to an error.
func (e *Error) WithAttribute(name string) *Error {
	e.Attribute = name
	return e
}

// WithLegal lists the accepted values.
func (e *Error) WithLegal(legal ...string) *Error {
	e.Legal = legal
	return e
}

// KindOf classifies err. It returns "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, schema.ErrUnknownAttribute):
		return KindUnknownAttribute
	case errors.Is(err, registry.ErrAccessDenied):
		return KindAccessDenied
	case errors.Is(err, registry.ErrInvalidValueType):
		return KindInvalidValueType
	}
	return ""
}

// Exit statuses, one per Kind.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitUsage            = 2
	ExitUnknownAttribute = 10
	ExitModuleNotFound   = 11
	ExitInvalidValue     = 12
	ExitAccessDenied     = 13
	ExitCorruptValue     = 14
	ExitInvalidValueType = 15
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case KindUnknownAttribute:
		return ExitUnknownAttribute
	case KindModuleNotFound:
		return ExitModuleNotFound
	case KindInvalidValue:
		return ExitInvalidValue
	case KindAccessDenied:
		return ExitAccessDenied
	case KindCorruptValue:
		return ExitCorruptValue
	case KindInvalidValueType:
		return ExitInvalidValueType
	}
	return ExitFailure
}

// classify turns accessor failures into resolver errors.
func classify(err error, scope schema.Scope, module, attribute string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, registry.ErrAccessDenied):
		return newError(KindAccessDenied, "access denied", err).
			WithScope(scope).WithModule(module).WithAttribute(attribute)
	case errors.Is(err, registry.ErrInvalidValueType):
		return newError(KindInvalidValueType, "registry rejected the value", err).
			WithScope(scope).WithModule(module).WithAttribute(attribute)
	}
	return err
}

// metricKind labels err for the error counter.
func metricKind(err error) string {
	if err == nil {
		return ""
	}
	if k := KindOf(err); k != "" {
		return string(k)
	}
	return "Other"
}
