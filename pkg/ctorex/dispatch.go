package ctorex

import "fmt"

// CallMethod resolves and invokes a method on an existing instance. The
// arguments are raw values supplied directly by the caller; no expression
// parsing is involved.
func (r *Registry) CallMethod(inst *Instance, name string, args []Value) (Value, error) {
	desc := inst.Descriptor
	methods := desc.methodsNamed(name)
	if len(methods) == 0 {
		return nil, &UnknownMemberError{TypeName: desc.Name, Member: name}
	}

	target := desc.Name + "." + name
	idx, coerced, err := r.resolve(target, methodCandidates(methods), args)
	if err != nil {
		return nil, err
	}

	return invokeMethod(methods[idx], target, inst.Object, coerced)
}

// CallStatic resolves and invokes a static function of a named type; no
// instance is involved.
func (r *Registry) CallStatic(typeName, name string, args []Value) (Value, error) {
	desc, found := r.FindType(typeName)
	if !found {
		return nil, &UnknownTypeError{Name: typeName}
	}
	statics := desc.staticsNamed(name)
	if len(statics) == 0 {
		return nil, &UnknownMemberError{TypeName: typeName, Member: name, Static: true}
	}

	target := typeName + "." + name
	idx, coerced, err := r.resolve(target, staticCandidates(statics), args)
	if err != nil {
		return nil, err
	}

	return invokeStatic(statics[idx], target, coerced)
}

func invokeMethod(m *Method, target string, recv any, args []Value) (out Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &InvocationError{Target: target, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	out, callErr := m.Fn(recv, args)
	if callErr != nil {
		return nil, &InvocationError{Target: target, Err: callErr}
	}
	return out, nil
}

func invokeStatic(f *StaticFunction, target string, args []Value) (out Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &InvocationError{Target: target, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	out, callErr := f.Fn(args)
	if callErr != nil {
		return nil, &InvocationError{Target: target, Err: callErr}
	}
	return out, nil
}

// Package-level helpers operating on the default registry.

func CallMethod(inst *Instance, name string, args []Value) (Value, error) {
	return defaultRegistry.CallMethod(inst, name, args)
}

func CallStatic(typeName, name string, args []Value) (Value, error) {
	return defaultRegistry.CallStatic(typeName, name, args)
}
