// Package diagnostics defines the coded errors produced by the expression
// parser. Every diagnostic carries the byte offset and line/column of the
// token that triggered it so callers can point at the offending input
// without re-running the parse.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/ctorex/internal/token"
)

type ErrorCode string

const (
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // unexpected end of input
	ErrP003 ErrorCode = "P003" // trailing input after a complete expression
	ErrP004 ErrorCode = "P004" // empty input
	ErrP005 ErrorCode = "P005" // illegal character
)

// Diagnostic is a parse error with a source position.
type Diagnostic struct {
	Code    ErrorCode
	Message string
	Offset  int
	Line    int
	Column  int
}

func NewError(code ErrorCode, tok token.Token, message string) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Message: message,
		Offset:  tok.Offset,
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("[%s] %d:%d (offset %d): %s", d.Code, d.Line, d.Column, d.Offset, d.Message)
}
