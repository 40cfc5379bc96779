package ctorex

import (
	"errors"
	"testing"
)

func testRegistry() *Registry {
	r := NewRegistry()
	_ = r.RegisterEnum(&EnumDescriptor{
		Name: "MAKind",
		Symbols: []EnumSymbol{
			{Label: "SMA", Value: 0},
			{Label: "EMA", Value: 1},
		},
	})
	return r
}

func TestResolveCompatibility(t *testing.T) {
	r := testRegistry()

	signalDesc := &TypeDescriptor{Name: "Dummy", Capabilities: []string{"Signal"}}
	plainDesc := &TypeDescriptor{Name: "Plain"}

	testCases := []struct {
		name   string
		params []Param
		args   []Value
		ok     bool
	}{
		{"int_to_int", []Param{IntParam()}, []Value{Int(7)}, true},
		{"int_widens_to_float", []Param{FloatParam()}, []Value{Int(7)}, true},
		{"float_to_float", []Param{FloatParam()}, []Value{Flt(1.5)}, true},
		{"float_not_int", []Param{IntParam()}, []Value{Flt(1.5)}, false},
		{"symbol_plain", []Param{SymbolParam()}, []Value{Sym("anything")}, true},
		{"symbol_enum_member", []Param{EnumParam("MAKind")}, []Value{Sym("EMA")}, true},
		{"symbol_enum_nonmember", []Param{EnumParam("MAKind")}, []Value{Sym("Bogus")}, false},
		{"int_not_enum", []Param{EnumParam("MAKind")}, []Value{Int(1)}, false},
		{"int_list", []Param{IntListParam()}, []Value{IntList(1, 2, 3)}, true},
		{"int_list_rejects_float", []Param{IntListParam()}, []Value{Lst(Int(1), Flt(2.5))}, false},
		{"float_list_widens", []Param{FloatListParam()}, []Value{Lst(Int(1), Flt(2.5))}, true},
		{"float_list_rejects_symbol", []Param{FloatListParam()}, []Value{Lst(Sym("x"))}, false},
		{"instance_with_capability", []Param{InstanceParam("Signal")}, []Value{NewInstance(signalDesc, struct{}{})}, true},
		{"instance_without_capability", []Param{InstanceParam("Signal")}, []Value{NewInstance(plainDesc, struct{}{})}, false},
		{"arity_mismatch", []Param{IntParam(), IntParam()}, []Value{Int(1)}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idx, _, err := r.resolve("Test", [][]Param{tc.params}, tc.args)
			if tc.ok {
				if err != nil {
					t.Fatalf("resolve failed: %v", err)
				}
				if idx != 0 {
					t.Fatalf("idx = %d, want 0", idx)
				}
			} else if err == nil {
				t.Fatalf("resolve succeeded, want failure")
			}
		})
	}
}

func TestResolveCoercions(t *testing.T) {
	r := testRegistry()

	// integer argument widens to a float parameter
	_, coerced, err := r.resolve("Test", [][]Param{{FloatParam()}}, []Value{Int(7)})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	f, ok := coerced[0].(*Float)
	if !ok || f.Value != 7.0 {
		t.Errorf("coerced = %v, want Float 7", coerced[0])
	}

	// enum symbols are delivered as their integral value
	_, coerced, err = r.resolve("Test", [][]Param{{EnumParam("MAKind")}}, []Value{Sym("EMA")})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	i, ok := coerced[0].(*Integer)
	if !ok || i.Value != 1 {
		t.Errorf("coerced = %v, want Integer 1", coerced[0])
	}

	// float-list elements widen individually
	_, coerced, err = r.resolve("Test", [][]Param{{FloatListParam()}}, []Value{Lst(Int(1), Flt(0.5))})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	list := coerced[0].(*List)
	for i, el := range list.Elements {
		if _, ok := el.(*Float); !ok {
			t.Errorf("element %d = %T, want *Float", i, el)
		}
	}
}

func TestResolveSelectsByArity(t *testing.T) {
	r := testRegistry()
	candidates := [][]Param{
		{IntParam()},
		{IntParam(), FloatParam()},
	}

	idx, _, err := r.resolve("Test", candidates, []Value{Int(1), Flt(2.0)})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1", idx)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	r := testRegistry()
	// an integer matches both an int and a float parameter
	candidates := [][]Param{
		{IntParam()},
		{FloatParam()},
	}

	// determinism: the same inputs produce the same failure every time
	for i := 0; i < 3; i++ {
		_, _, err := r.resolve("Test", candidates, []Value{Int(1)})
		var ambiguous *AmbiguousSignatureError
		if !errors.As(err, &ambiguous) {
			t.Fatalf("attempt %d: err = %v, want AmbiguousSignatureError", i, err)
		}
		if ambiguous.Matches != 2 {
			t.Errorf("attempt %d: matches = %d, want 2", i, ambiguous.Matches)
		}
	}
}

func TestResolveNoMatch(t *testing.T) {
	r := testRegistry()
	_, _, err := r.resolve("Test", [][]Param{{IntParam()}}, []Value{Sym("x")})
	var noMatch *NoMatchingSignatureError
	if !errors.As(err, &noMatch) {
		t.Fatalf("err = %v, want NoMatchingSignatureError", err)
	}
}

func TestResolveUnknownEnumSymbol(t *testing.T) {
	r := testRegistry()
	_, _, err := r.resolve("Test", [][]Param{{EnumParam("MAKind")}}, []Value{Sym("Bogus")})
	var miss *UnknownEnumSymbolError
	if !errors.As(err, &miss) {
		t.Fatalf("err = %v, want UnknownEnumSymbolError", err)
	}
	if miss.Enum != "MAKind" || miss.Symbol != "Bogus" {
		t.Errorf("got %v, want enum MAKind symbol Bogus", miss)
	}
}
