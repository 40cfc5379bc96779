// Package register builds ctorex type and enum descriptors from ordinary
// Go functions using reflection. It plays the role of the declarative
// registration step: a fluent builder inspects constructor, method and
// static function signatures, maps Go parameter types to signature
// parameter kinds and wraps each function so that tagged runtime values are
// unboxed on the way in and boxed on the way out.
package register

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/funvibe/ctorex/pkg/ctorex"
)

// bindings maps Go types to the registry names they were registered
// under, so parameter and result types can be recognized later.
// Thread-safe: registration happens once at startup; reads happen from
// wrapped functions on any goroutine.
var bindings = struct {
	mu    sync.RWMutex
	enums map[reflect.Type]string
	types map[reflect.Type]string
}{
	enums: make(map[reflect.Type]string),
	types: make(map[reflect.Type]string),
}

func enumNameFor(t reflect.Type) (string, bool) {
	bindings.mu.RLock()
	defer bindings.mu.RUnlock()
	name, ok := bindings.enums[t]
	return name, ok
}

func typeNameFor(t reflect.Type) (string, bool) {
	bindings.mu.RLock()
	defer bindings.mu.RUnlock()
	name, ok := bindings.types[t]
	return name, ok
}

// Enum registers an enum descriptor and binds the Go type of sample to it.
// Constructor and method parameters of that type are resolved as
// symbol-of-enum parameters afterwards. Symbol order is preserved.
func Enum(reg *ctorex.Registry, name string, sample any, symbols []ctorex.EnumSymbol) error {
	if err := reg.RegisterEnum(&ctorex.EnumDescriptor{Name: name, Symbols: symbols}); err != nil {
		return err
	}
	bindings.mu.Lock()
	bindings.enums[reflect.TypeOf(sample)] = name
	bindings.mu.Unlock()
	return nil
}

// TypeBuilder collects the raw Go functions of one type. Nothing is
// inspected until Into runs, so build errors surface at registration time
// in one place.
type TypeBuilder struct {
	name         string
	capabilities []string
	ctors        []any
	methods      []namedFn
	statics      []namedFn
}

type namedFn struct {
	name string
	fn   any
}

// Type starts a descriptor for the given registry name.
func Type(name string) *TypeBuilder {
	return &TypeBuilder{name: name}
}

// Capability declares interfaces the type satisfies; the dispatch engine
// checks these by name.
func (b *TypeBuilder) Capability(names ...string) *TypeBuilder {
	b.capabilities = append(b.capabilities, names...)
	return b
}

// Ctor adds a constructor: func(params...) T or func(params...) (T, error).
func (b *TypeBuilder) Ctor(fn any) *TypeBuilder {
	b.ctors = append(b.ctors, fn)
	return b
}

// Method adds a method given as a method expression or any function whose
// first parameter is the receiver: func(recv T, params...) (R[, error]).
func (b *TypeBuilder) Method(name string, fn any) *TypeBuilder {
	b.methods = append(b.methods, namedFn{name: name, fn: fn})
	return b
}

// Static adds a static function: func(params...) (R[, error]).
func (b *TypeBuilder) Static(name string, fn any) *TypeBuilder {
	b.statics = append(b.statics, namedFn{name: name, fn: fn})
	return b
}

// Register compiles the builder against the default registry.
func (b *TypeBuilder) Register() error {
	return b.Into(ctorex.Default())
}

// Into compiles every collected function into a signature, binds the
// constructor result type to the registry name and registers the
// descriptor. The first constructor determines the bound Go type.
func (b *TypeBuilder) Into(reg *ctorex.Registry) error {
	if len(b.ctors) == 0 {
		return fmt.Errorf("type %q: at least one constructor is required", b.name)
	}

	desc := &ctorex.TypeDescriptor{Name: b.name, Capabilities: b.capabilities}

	for i, fn := range b.ctors {
		ctor, objType, err := compileCtor(reg, fn)
		if err != nil {
			return fmt.Errorf("type %q ctor #%d: %w", b.name, i+1, err)
		}
		if i == 0 {
			bindings.mu.Lock()
			bindings.types[objType] = b.name
			bindings.mu.Unlock()
		}
		desc.Constructors = append(desc.Constructors, ctor)
	}

	for _, nf := range b.methods {
		m, err := compileMethod(reg, nf.name, nf.fn)
		if err != nil {
			return fmt.Errorf("type %q method %q: %w", b.name, nf.name, err)
		}
		desc.Methods = append(desc.Methods, m)
	}

	for _, nf := range b.statics {
		s, err := compileStatic(reg, nf.name, nf.fn)
		if err != nil {
			return fmt.Errorf("type %q static %q: %w", b.name, nf.name, err)
		}
		desc.Statics = append(desc.Statics, s)
	}

	return reg.RegisterType(desc)
}

func compileCtor(reg *ctorex.Registry, fn any) (*ctorex.Constructor, reflect.Type, error) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, nil, fmt.Errorf("not a function: %T", fn)
	}
	if err := checkResults(ft); err != nil {
		return nil, nil, err
	}

	params, err := paramsOf(ft, 0)
	if err != nil {
		return nil, nil, err
	}

	objType := ft.Out(0)
	ctor := &ctorex.Constructor{
		Params: params,
		Fn: func(args []ctorex.Value) (any, error) {
			in, err := unboxArgs(ft, 0, args)
			if err != nil {
				return nil, err
			}
			out := fv.Call(in)
			if err := errOf(ft, out); err != nil {
				return nil, err
			}
			return out[0].Interface(), nil
		},
	}
	return ctor, objType, nil
}

func compileMethod(reg *ctorex.Registry, name string, fn any) (*ctorex.Method, error) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("not a function: %T", fn)
	}
	if ft.NumIn() == 0 {
		return nil, fmt.Errorf("missing receiver parameter")
	}
	if err := checkMethodResults(ft); err != nil {
		return nil, err
	}

	params, err := paramsOf(ft, 1)
	if err != nil {
		return nil, err
	}

	recvType := ft.In(0)
	return &ctorex.Method{
		Name:   name,
		Params: params,
		Fn: func(recv any, args []ctorex.Value) (ctorex.Value, error) {
			rv := reflect.ValueOf(recv)
			if !rv.Type().AssignableTo(recvType) {
				return nil, fmt.Errorf("receiver %s is not assignable to %s", rv.Type(), recvType)
			}
			in, err := unboxArgs(ft, 1, args)
			if err != nil {
				return nil, err
			}
			out := fv.Call(append([]reflect.Value{rv}, in...))
			if err := errOf(ft, out); err != nil {
				return nil, err
			}
			return boxResult(reg, ft, out)
		},
	}, nil
}

func compileStatic(reg *ctorex.Registry, name string, fn any) (*ctorex.StaticFunction, error) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("not a function: %T", fn)
	}
	if err := checkMethodResults(ft); err != nil {
		return nil, err
	}

	params, err := paramsOf(ft, 0)
	if err != nil {
		return nil, err
	}

	return &ctorex.StaticFunction{
		Name:   name,
		Params: params,
		Fn: func(args []ctorex.Value) (ctorex.Value, error) {
			in, err := unboxArgs(ft, 0, args)
			if err != nil {
				return nil, err
			}
			out := fv.Call(in)
			if err := errOf(ft, out); err != nil {
				return nil, err
			}
			return boxResult(reg, ft, out)
		},
	}, nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// errOf extracts a non-nil trailing error result, if the function has one.
func errOf(ft reflect.Type, out []reflect.Value) error {
	n := ft.NumOut()
	if n == 0 || ft.Out(n-1) != errType {
		return nil
	}
	if ev := out[n-1]; !ev.IsNil() {
		return ev.Interface().(error)
	}
	return nil
}

// checkResults validates a constructor: one object result plus an optional
// trailing error.
func checkResults(ft reflect.Type) error {
	switch ft.NumOut() {
	case 1:
		if ft.Out(0) == errType {
			return fmt.Errorf("constructor must return an object")
		}
		return nil
	case 2:
		if ft.Out(1) != errType {
			return fmt.Errorf("second result must be error, got %s", ft.Out(1))
		}
		return nil
	default:
		return fmt.Errorf("want 1 or 2 results, got %d", ft.NumOut())
	}
}

// checkMethodResults validates a method or static function: zero or one
// value result plus an optional trailing error.
func checkMethodResults(ft reflect.Type) error {
	switch ft.NumOut() {
	case 0:
		return nil
	case 1:
		return nil
	case 2:
		if ft.Out(1) != errType {
			return fmt.Errorf("second result must be error, got %s", ft.Out(1))
		}
		return nil
	default:
		return fmt.Errorf("want at most 2 results, got %d", ft.NumOut())
	}
}

// paramsOf maps the Go parameter types (starting at skip) to signature
// parameter kinds.
func paramsOf(ft reflect.Type, skip int) ([]ctorex.Param, error) {
	if ft.IsVariadic() {
		return nil, fmt.Errorf("variadic functions are not supported")
	}
	params := make([]ctorex.Param, 0, ft.NumIn()-skip)
	for i := skip; i < ft.NumIn(); i++ {
		p, err := paramFor(ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i-skip+1, err)
		}
		params = append(params, p)
	}
	return params, nil
}

func paramFor(t reflect.Type) (ctorex.Param, error) {
	if enum, ok := enumNameFor(t); ok {
		return ctorex.EnumParam(enum), nil
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		return ctorex.IntParam(), nil
	case reflect.Float32, reflect.Float64:
		return ctorex.FloatParam(), nil
	case reflect.String:
		return ctorex.SymbolParam(), nil
	case reflect.Slice:
		switch t.Elem().Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			return ctorex.IntListParam(), nil
		case reflect.Float32, reflect.Float64:
			return ctorex.FloatListParam(), nil
		}
		return ctorex.Param{}, fmt.Errorf("unsupported list element type %s", t.Elem())
	case reflect.Interface:
		// interface parameters are capability parameters, matched by the
		// interface's short name
		if t.Name() == "" {
			return ctorex.Param{}, fmt.Errorf("anonymous interface types cannot name a capability")
		}
		return ctorex.InstanceParam(t.Name()), nil
	}
	return ctorex.Param{}, fmt.Errorf("unsupported parameter type %s", t)
}

// unboxArgs converts coerced runtime values into reflect call arguments.
// The resolver has already matched kinds, so mismatches here indicate a
// caller bypassing resolution.
func unboxArgs(ft reflect.Type, skip int, args []ctorex.Value) ([]reflect.Value, error) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := ft.In(i + skip)
		rv, err := unbox(pt, arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in[i] = rv
	}
	return in, nil
}

func unbox(pt reflect.Type, arg ctorex.Value) (reflect.Value, error) {
	switch v := arg.(type) {
	case *ctorex.Integer:
		// covers int parameters and enum-typed parameters, which receive
		// the enum's integral value from the resolver
		return reflect.ValueOf(v.Value).Convert(pt), nil
	case *ctorex.Float:
		return reflect.ValueOf(v.Value).Convert(pt), nil
	case *ctorex.Symbol:
		return reflect.ValueOf(v.Name).Convert(pt), nil
	case *ctorex.List:
		out := reflect.MakeSlice(pt, len(v.Elements), len(v.Elements))
		for i, el := range v.Elements {
			ev, err := unbox(pt.Elem(), el)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case *ctorex.Instance:
		rv := reflect.ValueOf(v.Object)
		if !rv.Type().AssignableTo(pt) {
			return reflect.Value{}, fmt.Errorf("instance of %s is not assignable to %s", rv.Type(), pt)
		}
		return rv, nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported value kind %s", arg.Kind())
}

// boxResult converts the reflect call results back into a runtime value.
func boxResult(reg *ctorex.Registry, ft reflect.Type, out []reflect.Value) (ctorex.Value, error) {
	if ft.NumOut() == 0 || (ft.NumOut() == 1 && ft.Out(0) == errType) {
		return nil, nil
	}
	return box(reg, out[0])
}

func box(reg *ctorex.Registry, rv reflect.Value) (ctorex.Value, error) {
	t := rv.Type()

	if name, ok := typeNameFor(t); ok {
		desc, found := reg.FindType(name)
		if !found {
			return nil, fmt.Errorf("result type %q is not registered", name)
		}
		return ctorex.NewInstance(desc, rv.Interface()), nil
	}
	if _, ok := enumNameFor(t); ok {
		return ctorex.Int(rv.Int()), nil
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		return ctorex.Int(rv.Int()), nil
	case reflect.Float32, reflect.Float64:
		return ctorex.Flt(rv.Float()), nil
	case reflect.String:
		return ctorex.Sym(rv.String()), nil
	case reflect.Slice:
		els := make([]ctorex.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := box(reg, rv.Index(i))
			if err != nil {
				return nil, err
			}
			els[i] = ev
		}
		return ctorex.Lst(els...), nil
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return box(reg, rv.Elem())
	}
	return nil, fmt.Errorf("unsupported result type %s", t)
}
