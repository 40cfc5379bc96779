package ctorex

import (
	"fmt"
	"strings"
)

// RegistrationError reports a duplicate type or enum name. The registry
// rejects duplicates rather than silently overwriting.
type RegistrationError struct {
	Kind string // "type" or "enum"
	Name string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s %q is already registered", e.Kind, e.Name)
}

// UnknownTypeError reports a constructor name that is not in the registry.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

// UnknownEnumError reports a signature referencing an enum that was never
// registered.
type UnknownEnumError struct {
	Name string
}

func (e *UnknownEnumError) Error() string {
	return fmt.Sprintf("unknown enum %q", e.Name)
}

// UnknownEnumSymbolError reports a symbol that is not a member of the
// target enum's table.
type UnknownEnumSymbolError struct {
	Enum   string
	Symbol string
}

func (e *UnknownEnumSymbolError) Error() string {
	return fmt.Sprintf("symbol %q is not a member of enum %q", e.Symbol, e.Enum)
}

// UnknownMemberError reports a method or static function name absent from
// a type's descriptor.
type UnknownMemberError struct {
	TypeName string
	Member   string
	Static   bool
}

func (e *UnknownMemberError) Error() string {
	kind := "method"
	if e.Static {
		kind = "static function"
	}
	return fmt.Sprintf("type %q has no %s %q", e.TypeName, kind, e.Member)
}

// NoMatchingSignatureError reports that zero registered signatures are
// compatible with the supplied argument vector.
type NoMatchingSignatureError struct {
	Target string // type name, or "Type.method" for dispatch
	Kinds  []ValueKind
}

func (e *NoMatchingSignatureError) Error() string {
	return fmt.Sprintf("no matching signature for %s(%s)", e.Target, joinKinds(e.Kinds))
}

// AmbiguousSignatureError reports that more than one signature is
// compatible. Ties are never broken arbitrarily.
type AmbiguousSignatureError struct {
	Target  string
	Kinds   []ValueKind
	Matches int
}

func (e *AmbiguousSignatureError) Error() string {
	return fmt.Sprintf("ambiguous signature for %s(%s): %d candidates match",
		e.Target, joinKinds(e.Kinds), e.Matches)
}

// CapabilityError reports that a resolved type lacks a capability required
// by the caller.
type CapabilityError struct {
	TypeName   string
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("type %q does not implement capability %q", e.TypeName, e.Capability)
}

// InvocationError wraps a failure raised by a user-supplied constructor,
// method or static function body.
type InvocationError struct {
	Target string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation of %s failed: %v", e.Target, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

func joinKinds(kinds []ValueKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}

func kindsOf(args []Value) []ValueKind {
	kinds := make([]ValueKind, len(args))
	for i, a := range args {
		kinds[i] = a.Kind()
	}
	return kinds
}
