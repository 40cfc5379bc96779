package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Literals
	INT   = "INT"   // 42
	FLOAT = "FLOAT" // 3.14, 3., 0.2e3
	IDENT = "IDENT" // Momentum, SMA

	// Delimiters
	LPAREN   = "("
	RPAREN   = ")"
	LBRACKET = "["
	RBRACKET = "]"
	COMMA    = ","
)

// Token is a single lexeme with its position in the source text.
// Offset is the byte offset of the first character, Line/Column are 1-based.
type Token struct {
	Type   TokenType
	Lexeme string
	Offset int
	Line   int
	Column int
}
