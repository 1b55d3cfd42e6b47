package reader

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenString  // "hello"
	TokenNumber  // 42, 3.14, -1e10
	TokenSymbol  // foo, strlib/join, +
	TokenKeyword // :name

	// Delimiters
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenHashBrace    // #{

	// Reader macros
	TokenQuote         // '
	TokenSyntaxQuote   // `
	TokenUnquote       // ~
	TokenUnquoteSplice // ~@
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenString:
		return "(string)"
	case TokenNumber:
		return "(number)"
	case TokenSymbol:
		return "(symbol)"
	case TokenKeyword:
		return "(keyword)"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	case TokenLeftBracket:
		return "["
	case TokenRightBracket:
		return "]"
	case TokenLeftBrace:
		return "{"
	case TokenRightBrace:
		return "}"
	case TokenHashBrace:
		return "#{"
	case TokenQuote:
		return "'"
	case TokenSyntaxQuote:
		return "`"
	case TokenUnquote:
		return "~"
	case TokenUnquoteSplice:
		return "~@"
	}
	return "(unknown)"
}

// Token is one lexical token together with its 1-based source position.
type Token struct {
	Type   TokenType
	Text   string  // raw text for symbols, keywords, strings and errors
	Number float64 // parsed value for TokenNumber
	Line   int
	Column int
}
