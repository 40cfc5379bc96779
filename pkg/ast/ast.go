// Package ast defines the abstract syntax tree produced by parsing a
// constructor expression. A tree is made of literal, list and constructor
// nodes and mirrors the nesting of the source text exactly. Nodes are
// immutable once built; the parser performs no semantic validation, so a
// well-formed tree may still fail to instantiate.
package ast

import (
	"strconv"
	"strings"
)

// Pos is a source position: byte offset plus 1-based line and column.
type Pos struct {
	Offset int
	Line   int
	Column int
}

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() Pos
	// String renders the node back to canonical expression text.
	String() string
	node()
}

// IntegerLiteral is a whole-number literal such as 42.
type IntegerLiteral struct {
	Position Pos
	Value    int64
}

func (n *IntegerLiteral) Pos() Pos { return n.Position }
func (n *IntegerLiteral) node()    {}
func (n *IntegerLiteral) String() string {
	return strconv.FormatInt(n.Value, 10)
}

// FloatLiteral is a literal containing a decimal point, such as 3.14 or 3.
type FloatLiteral struct {
	Position Pos
	Value    float64
	// Lexeme preserves the source spelling so re-serialization is canonical.
	Lexeme string
}

func (n *FloatLiteral) Pos() Pos { return n.Position }
func (n *FloatLiteral) node()    {}
func (n *FloatLiteral) String() string {
	if n.Lexeme != "" {
		return n.Lexeme
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// SymbolLiteral is an identifier-shaped literal such as SMA. Whether it
// names an enum member is decided later, during argument resolution.
type SymbolLiteral struct {
	Position Pos
	Name     string
}

func (n *SymbolLiteral) Pos() Pos       { return n.Position }
func (n *SymbolLiteral) node()          {}
func (n *SymbolLiteral) String() string { return n.Name }

// ListLiteral is a bracketed sequence of primitive literals, e.g.
// [100,50,20]. Elements may be syntactically mixed; homogeneity is checked
// during argument resolution, not here.
type ListLiteral struct {
	Position Pos
	Elements []Node
}

func (n *ListLiteral) Pos() Pos { return n.Position }
func (n *ListLiteral) node()    {}
func (n *ListLiteral) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, el := range n.Elements {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(el.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// CtorExpression is a named constructor application, e.g.
// Momentum(SMA,[100,50],[0.3,0.7]).
type CtorExpression struct {
	Position Pos
	Name     string
	Args     []Node
}

func (n *CtorExpression) Pos() Pos { return n.Position }
func (n *CtorExpression) node()    {}
func (n *CtorExpression) String() string {
	var sb strings.Builder
	sb.WriteString(n.Name)
	sb.WriteByte('(')
	for i, arg := range n.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Depth returns the constructor nesting depth of the tree: literals and
// lists have depth 0, a constructor is one deeper than its deepest argument.
func Depth(n Node) int {
	ctor, ok := n.(*CtorExpression)
	if !ok {
		return 0
	}
	max := 0
	for _, arg := range ctor.Args {
		if d := Depth(arg); d > max {
			max = d
		}
	}
	return max + 1
}
