package ctorex

// resolve selects the single signature compatible with the supplied
// argument vector. Candidates whose arity differs are discarded first; the
// rest are checked position by position. Exactly one surviving candidate is
// a match and its index is returned together with the coerced arguments.
// Zero survivors is a NoMatchingSignatureError (or UnknownEnumSymbolError
// when the only obstacle was an enum symbol miss); two or more is an
// AmbiguousSignatureError. The outcome is deterministic for identical
// inputs, including failures.
func (r *Registry) resolve(target string, candidates [][]Param, args []Value) (int, []Value, error) {
	matchIdx := -1
	matches := 0
	var coerced []Value
	var enumMiss *UnknownEnumSymbolError

	for i, params := range candidates {
		if len(params) != len(args) {
			continue
		}

		converted := make([]Value, len(args))
		ok := true
		enumOnly := true
		var miss *UnknownEnumSymbolError
		for pos, param := range params {
			v, compatible, symMiss := r.coerce(param, args[pos])
			if !compatible {
				ok = false
				if symMiss != nil {
					if miss == nil {
						miss = symMiss
					}
				} else {
					enumOnly = false
				}
				continue
			}
			converted[pos] = v
		}

		if ok {
			matches++
			if matchIdx == -1 {
				matchIdx = i
				coerced = converted
			}
			continue
		}
		if enumOnly && miss != nil && enumMiss == nil {
			enumMiss = miss
		}
	}

	switch {
	case matches == 1:
		return matchIdx, coerced, nil
	case matches == 0 && enumMiss != nil:
		return -1, nil, enumMiss
	case matches == 0:
		return -1, nil, &NoMatchingSignatureError{Target: target, Kinds: kindsOf(args)}
	default:
		return -1, nil, &AmbiguousSignatureError{Target: target, Kinds: kindsOf(args), Matches: matches}
	}
}

// coerce checks one argument against one parameter slot and returns the
// (possibly widened) value to pass on. The third result is non-nil only
// when the argument is a symbol that is not a member of the slot's enum.
func (r *Registry) coerce(param Param, arg Value) (Value, bool, *UnknownEnumSymbolError) {
	switch param.Kind {
	case INT_PARAM:
		if v, ok := arg.(*Integer); ok {
			return v, true, nil
		}
	case FLOAT_PARAM:
		switch v := arg.(type) {
		case *Float:
			return v, true, nil
		case *Integer:
			// integer arguments widen to float parameters
			return &Float{Value: float64(v.Value)}, true, nil
		}
	case SYMBOL_PARAM:
		if v, ok := arg.(*Symbol); ok {
			return v, true, nil
		}
	case ENUM_PARAM:
		v, ok := arg.(*Symbol)
		if !ok {
			return nil, false, nil
		}
		enum, found := r.FindEnum(param.Enum)
		if !found {
			return nil, false, nil
		}
		val, member := enum.Lookup(v.Name)
		if !member {
			return nil, false, &UnknownEnumSymbolError{Enum: param.Enum, Symbol: v.Name}
		}
		// the callee receives the enum's integral value
		return &Integer{Value: val}, true, nil
	case INT_LIST_PARAM:
		v, ok := arg.(*List)
		if !ok {
			return nil, false, nil
		}
		for _, el := range v.Elements {
			if _, isInt := el.(*Integer); !isInt {
				return nil, false, nil
			}
		}
		return v, true, nil
	case FLOAT_LIST_PARAM:
		v, ok := arg.(*List)
		if !ok {
			return nil, false, nil
		}
		widened := make([]Value, len(v.Elements))
		for i, el := range v.Elements {
			switch e := el.(type) {
			case *Float:
				widened[i] = e
			case *Integer:
				widened[i] = &Float{Value: float64(e.Value)}
			default:
				return nil, false, nil
			}
		}
		return &List{Elements: widened}, true, nil
	case INSTANCE_PARAM:
		v, ok := arg.(*Instance)
		if !ok {
			return nil, false, nil
		}
		if !v.Descriptor.HasCapability(param.Capability) {
			return nil, false, nil
		}
		return v, true, nil
	}
	return nil, false, nil
}

func ctorCandidates(ctors []*Constructor) [][]Param {
	out := make([][]Param, len(ctors))
	for i, c := range ctors {
		out[i] = c.Params
	}
	return out
}

func methodCandidates(methods []*Method) [][]Param {
	out := make([][]Param, len(methods))
	for i, m := range methods {
		out[i] = m.Params
	}
	return out
}

func staticCandidates(fns []*StaticFunction) [][]Param {
	out := make([][]Param, len(fns))
	for i, f := range fns {
		out[i] = f.Params
	}
	return out
}
