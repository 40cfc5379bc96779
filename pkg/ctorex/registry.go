// Package ctorex instantiates polymorphic objects and dispatches method
// calls from short textual constructor expressions such as
//
//	Resample(Momentum(SMA,[100,50,20],[0.2,0.3,0.5]),900)
//
// Types and enums announce their constructors, methods, static functions and
// capabilities to a registry; expressions are parsed into an AST and
// evaluated bottom-up against the registered signatures. The caller never
// needs to know at compile time which concrete type an expression produces.
package ctorex

import "sync"

type ParamKind string

const (
	INT_PARAM        ParamKind = "INT"
	FLOAT_PARAM      ParamKind = "FLOAT"
	SYMBOL_PARAM     ParamKind = "SYMBOL"
	ENUM_PARAM       ParamKind = "ENUM"
	INT_LIST_PARAM   ParamKind = "INT_LIST"
	FLOAT_LIST_PARAM ParamKind = "FLOAT_LIST"
	INSTANCE_PARAM   ParamKind = "INSTANCE"
)

// Param is one expected parameter of a signature. Enum is set for
// ENUM_PARAM, Capability for INSTANCE_PARAM.
type Param struct {
	Kind       ParamKind
	Enum       string
	Capability string
}

func IntParam() Param             { return Param{Kind: INT_PARAM} }
func FloatParam() Param           { return Param{Kind: FLOAT_PARAM} }
func SymbolParam() Param          { return Param{Kind: SYMBOL_PARAM} }
func EnumParam(enum string) Param { return Param{Kind: ENUM_PARAM, Enum: enum} }
func IntListParam() Param         { return Param{Kind: INT_LIST_PARAM} }
func FloatListParam() Param       { return Param{Kind: FLOAT_LIST_PARAM} }

func InstanceParam(capability string) Param {
	return Param{Kind: INSTANCE_PARAM, Capability: capability}
}

// CtorFn builds a new underlying object from an already-coerced argument
// vector. The engine wraps the returned object in an Instance.
type CtorFn func(args []Value) (any, error)

// MethodFn invokes a method on the underlying object of an instance.
type MethodFn func(recv any, args []Value) (Value, error)

// StaticFn invokes a static function; no instance is involved.
type StaticFn func(args []Value) (Value, error)

type Constructor struct {
	Params []Param
	Fn     CtorFn
}

type Method struct {
	Name   string
	Params []Param
	Fn     MethodFn
}

type StaticFunction struct {
	Name   string
	Params []Param
	Fn     StaticFn
}

// TypeDescriptor is the registry entry for one type. Descriptors are built
// once during registration and never mutated afterwards.
type TypeDescriptor struct {
	Name         string
	Capabilities []string
	Constructors []*Constructor
	Methods      []*Method
	Statics      []*StaticFunction
}

func (d *TypeDescriptor) HasCapability(name string) bool {
	for _, c := range d.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

func (d *TypeDescriptor) methodsNamed(name string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func (d *TypeDescriptor) staticsNamed(name string) []*StaticFunction {
	var out []*StaticFunction
	for _, f := range d.Statics {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

// EnumSymbol is one label of an enum, with its integral value. Order is
// the registration order.
type EnumSymbol struct {
	Label string
	Value int64
}

type EnumDescriptor struct {
	Name    string
	Symbols []EnumSymbol
}

// Lookup finds the integral value for a label. Enums are closed: an
// unknown label is never coerced into a new value.
func (e *EnumDescriptor) Lookup(label string) (int64, bool) {
	for _, s := range e.Symbols {
		if s.Label == label {
			return s.Value, true
		}
	}
	return 0, false
}

// Registry is the write-once-then-read-only catalog of types and enums.
// Registration must complete before the first lookup; afterwards the
// registry is safely shared across concurrent parse/create/dispatch calls.
//
// Thread-safe: registration happens once at startup; reads happen from
// multiple goroutines.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*TypeDescriptor
	enums map[string]*EnumDescriptor
}

func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*TypeDescriptor),
		enums: make(map[string]*EnumDescriptor),
	}
}

// RegisterType adds a type descriptor. Duplicate names are rejected rather
// than overwritten.
func (r *Registry) RegisterType(desc *TypeDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[desc.Name]; ok {
		return &RegistrationError{Kind: "type", Name: desc.Name}
	}
	r.types[desc.Name] = desc
	return nil
}

// RegisterEnum adds an enum descriptor. Duplicate names are rejected.
func (r *Registry) RegisterEnum(desc *EnumDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enums[desc.Name]; ok {
		return &RegistrationError{Kind: "enum", Name: desc.Name}
	}
	r.enums[desc.Name] = desc
	return nil
}

func (r *Registry) FindType(name string) (*TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[name]
	return d, ok
}

func (r *Registry) FindEnum(name string) (*EnumDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[name]
	return e, ok
}

// defaultRegistry backs the package-level functions, mirroring the usual
// single process-wide registry populated during init.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry { return defaultRegistry }

func RegisterType(desc *TypeDescriptor) error { return defaultRegistry.RegisterType(desc) }
func RegisterEnum(desc *EnumDescriptor) error { return defaultRegistry.RegisterEnum(desc) }

func FindType(name string) (*TypeDescriptor, bool) { return defaultRegistry.FindType(name) }
func FindEnum(name string) (*EnumDescriptor, bool) { return defaultRegistry.FindEnum(name) }
