package ctorex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type ValueKind string

const (
	INTEGER_VAL  ValueKind = "INTEGER"
	FLOAT_VAL    ValueKind = "FLOAT"
	SYMBOL_VAL   ValueKind = "SYMBOL"
	LIST_VAL     ValueKind = "LIST"
	INSTANCE_VAL ValueKind = "INSTANCE"
)

// Value is the tagged runtime value threaded through instantiation and
// dispatch. Every resolver and dispatch path switches on Kind rather than
// performing unchecked casts.
type Value interface {
	Kind() ValueKind
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Kind() ValueKind { return INTEGER_VAL }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Kind() ValueKind { return FLOAT_VAL }
func (f *Float) Inspect() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

// Symbol is an identifier-shaped literal. During resolution it either names
// an enum member or matches a plain symbol parameter as-is.
type Symbol struct {
	Name string
}

func (s *Symbol) Kind() ValueKind { return SYMBOL_VAL }
func (s *Symbol) Inspect() string { return s.Name }

type List struct {
	Elements []Value
}

func (l *List) Kind() ValueKind { return LIST_VAL }
func (l *List) Inspect() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, el := range l.Elements {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(el.Inspect())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Instance is an opaque handle to a constructed object, tagged with the
// descriptor of its concrete type. Handles may be shared: embedding an
// instance as a constructor argument does not copy the underlying object.
type Instance struct {
	ID         uuid.UUID
	Descriptor *TypeDescriptor
	Object     any
}

// NewInstance wraps a constructed object in a freshly tagged handle.
func NewInstance(desc *TypeDescriptor, obj any) *Instance {
	return &Instance{ID: uuid.New(), Descriptor: desc, Object: obj}
}

func (in *Instance) Kind() ValueKind { return INSTANCE_VAL }
func (in *Instance) Inspect() string {
	return fmt.Sprintf("<%s %s>", in.Descriptor.Name, in.ID)
}

// Convenience constructors used by callers supplying raw argument vectors.

func Int(v int64) *Integer    { return &Integer{Value: v} }
func Flt(v float64) *Float    { return &Float{Value: v} }
func Sym(name string) *Symbol { return &Symbol{Name: name} }
func Lst(els ...Value) *List  { return &List{Elements: els} }

func IntList(vs ...int64) *List {
	els := make([]Value, len(vs))
	for i, v := range vs {
		els[i] = Int(v)
	}
	return &List{Elements: els}
}
func FloatList(vs ...float64) *List {
	els := make([]Value, len(vs))
	for i, v := range vs {
		els[i] = Flt(v)
	}
	return &List{Elements: els}
}
