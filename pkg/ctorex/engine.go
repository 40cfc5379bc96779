package ctorex

import (
	"fmt"

	"github.com/funvibe/ctorex/internal/parser"
	"github.com/funvibe/ctorex/pkg/ast"
)

// Parse turns expression text into an AST without touching the registry.
// The returned error is a parse diagnostic carrying the source position.
func Parse(text string) (ast.Node, error) {
	return parser.Parse(text)
}

// Create parses text and instantiates the described object against the
// registry. If a required capability is given, the root instance's type
// must declare it. Construction is all-or-nothing: the first failure
// anywhere in the tree aborts the call and nothing is returned.
func (r *Registry) Create(text string, requiredCapability ...string) (*Instance, error) {
	node, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return r.CreateFromAST(node, requiredCapability...)
}

// CreateFromAST instantiates an already-parsed expression tree.
func (r *Registry) CreateFromAST(node ast.Node, requiredCapability ...string) (*Instance, error) {
	ctor, ok := node.(*ast.CtorExpression)
	if !ok {
		return nil, fmt.Errorf("expression %q is a literal, not a constructor", node.String())
	}

	inst, err := r.instantiate(ctor)
	if err != nil {
		return nil, err
	}

	for _, capability := range requiredCapability {
		if !inst.Descriptor.HasCapability(capability) {
			return nil, &CapabilityError{TypeName: inst.Descriptor.Name, Capability: capability}
		}
	}
	return inst, nil
}

// instantiate evaluates a constructor node: look up the type, evaluate the
// arguments bottom-up, resolve the constructor overload and invoke it.
func (r *Registry) instantiate(ctor *ast.CtorExpression) (*Instance, error) {
	desc, found := r.FindType(ctor.Name)
	if !found {
		return nil, &UnknownTypeError{Name: ctor.Name}
	}

	args := make([]Value, len(ctor.Args))
	for i, argNode := range ctor.Args {
		v, err := r.eval(argNode)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	idx, coerced, err := r.resolve(ctor.Name, ctorCandidates(desc.Constructors), args)
	if err != nil {
		return nil, err
	}

	obj, err := invokeCtor(desc.Constructors[idx], ctor.Name, coerced)
	if err != nil {
		return nil, err
	}

	return NewInstance(desc, obj), nil
}

// eval maps an AST node to a runtime value. Literals evaluate to
// themselves, lists to their evaluated elements (homogeneity is checked
// later, against a specific parameter slot), nested constructors to
// instances.
func (r *Registry) eval(node ast.Node) (Value, error) {
	switch n := node.(type) {
	case *ast.IntegerLiteral:
		return &Integer{Value: n.Value}, nil
	case *ast.FloatLiteral:
		return &Float{Value: n.Value}, nil
	case *ast.SymbolLiteral:
		return &Symbol{Name: n.Name}, nil
	case *ast.ListLiteral:
		els := make([]Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := r.eval(el)
			if err != nil {
				return nil, err
			}
			els[i] = v
		}
		return &List{Elements: els}, nil
	case *ast.CtorExpression:
		return r.instantiate(n)
	default:
		return nil, fmt.Errorf("unsupported AST node %T", node)
	}
}

func invokeCtor(c *Constructor, target string, args []Value) (obj any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			obj = nil
			err = &InvocationError{Target: target, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	obj, callErr := c.Fn(args)
	if callErr != nil {
		return nil, &InvocationError{Target: target, Err: callErr}
	}
	return obj, nil
}

// Package-level helpers operating on the default registry.

func Create(text string, requiredCapability ...string) (*Instance, error) {
	return defaultRegistry.Create(text, requiredCapability...)
}

func CreateFromAST(node ast.Node, requiredCapability ...string) (*Instance, error) {
	return defaultRegistry.CreateFromAST(node, requiredCapability...)
}
