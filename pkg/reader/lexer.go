// Package reader turns Clover source text into Form trees. It is the
// external collaborator at the front of the pipeline: every form it
// produces carries source-position metadata, and malformed input is
// reported here so it never reaches the compiler core.
package reader

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cloverlang/clover/pkg/types"
)

const eof = -1

// Lexer converts Clover source text into a sequence of tokens.
// The implementation follows Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string
	current int // byte offset of the next rune
	width   int // width of the last rune read
	line    int // 1-based line of the next rune
	column  int // 1-based column of the next rune

	// Position where the current token started.
	startLine   int
	startColumn int

	// Error code of the last TokenError produced.
	errCode types.ErrorCode
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// Next returns the next token from the input. When the end of the input is
// reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() Token {
	l.skipWhitespace()
	l.startLine, l.startColumn = l.line, l.column

	ch := l.nextRune()
	switch ch {
	case eof:
		return l.token(TokenEOF, "")
	case '(':
		return l.token(TokenLeftParen, "(")
	case ')':
		return l.token(TokenRightParen, ")")
	case '[':
		return l.token(TokenLeftBracket, "[")
	case ']':
		return l.token(TokenRightBracket, "]")
	case '{':
		return l.token(TokenLeftBrace, "{")
	case '}':
		return l.token(TokenRightBrace, "}")
	case '\'':
		return l.token(TokenQuote, "'")
	case '`':
		return l.token(TokenSyntaxQuote, "`")
	case '~':
		if l.peekRune() == '@' {
			l.nextRune()
			return l.token(TokenUnquoteSplice, "~@")
		}
		return l.token(TokenUnquote, "~")
	case '#':
		if l.peekRune() == '{' {
			l.nextRune()
			return l.token(TokenHashBrace, "#{")
		}
		l.backup()
		return l.scanSymbol()
	case '"':
		return l.scanString()
	case ':':
		return l.scanKeyword()
	}

	if isDigit(ch) || (ch == '-' && isDigit(l.peekRune())) {
		l.backup()
		return l.scanNumber()
	}

	l.backup()
	return l.scanSymbol()
}

// Tokens reads the whole input and returns every token up to EOF. A lexing
// error is returned as a *types.Error with its source position.
func (l *Lexer) Tokens() ([]Token, error) {
	var out []Token
	for {
		tok := l.Next()
		if tok.Type == TokenError {
			return nil, types.NewError(l.errCode, tok.Text).
				WithPosition(tok.Line, tok.Column)
		}
		out = append(out, tok)
		if tok.Type == TokenEOF {
			return out, nil
		}
	}
}

func (l *Lexer) token(tt TokenType, text string) Token {
	return Token{Type: tt, Text: text, Line: l.startLine, Column: l.startColumn}
}

func (l *Lexer) errorToken(code types.ErrorCode, msg string) Token {
	l.errCode = code
	return Token{Type: TokenError, Text: msg, Line: l.startLine, Column: l.startColumn}
}

func (l *Lexer) scanString() Token {
	var b strings.Builder
	for {
		ch := l.nextRune()
		switch ch {
		case eof:
			return l.errorToken(types.ErrStringNotClosed, "unterminated string literal")
		case '"':
			tok := l.token(TokenString, "")
			tok.Text = b.String()
			return tok
		case '\\':
			esc := l.nextRune()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case eof:
				return l.errorToken(types.ErrStringNotClosed, "unterminated string literal")
			default:
				b.WriteRune(esc)
			}
		default:
			b.WriteRune(ch)
		}
	}
}

func (l *Lexer) scanNumber() Token {
	start := l.current
	if l.peekRune() == '-' {
		l.nextRune()
	}
	for isDigit(l.peekRune()) {
		l.nextRune()
	}
	if l.peekRune() == '.' {
		l.nextRune()
		for isDigit(l.peekRune()) {
			l.nextRune()
		}
	}
	if r := l.peekRune(); r == 'e' || r == 'E' {
		l.nextRune()
		if r := l.peekRune(); r == '+' || r == '-' {
			l.nextRune()
		}
		for isDigit(l.peekRune()) {
			l.nextRune()
		}
	}
	text := l.input[start:l.current]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return l.errorToken(types.ErrNumberInvalid, "invalid number literal "+text)
	}
	tok := l.token(TokenNumber, text)
	tok.Number = n
	return tok
}

func (l *Lexer) scanKeyword() Token {
	start := l.current
	for isSymbolRune(l.peekRune()) {
		l.nextRune()
	}
	name := l.input[start:l.current]
	if name == "" {
		return l.errorToken(types.ErrUnexpectedEOF, "empty keyword")
	}
	tok := l.token(TokenKeyword, name)
	return tok
}

func (l *Lexer) scanSymbol() Token {
	start := l.current
	for isSymbolRune(l.peekRune()) {
		l.nextRune()
	}
	text := l.input[start:l.current]
	if text == "" {
		r := l.nextRune()
		return l.errorToken(types.ErrUnexpectedEOF, "unexpected character "+string(r))
	}
	return l.token(TokenSymbol, text)
}

// skipWhitespace consumes whitespace, commas (treated as whitespace) and
// line comments.
func (l *Lexer) skipWhitespace() {
	for {
		ch := l.peekRune()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == ',':
			l.nextRune()
		case ch == ';':
			for {
				c := l.nextRune()
				if c == '\n' || c == eof {
					break
				}
			}
		default:
			return
		}
	}
}

func (l *Lexer) nextRune() rune {
	if l.current >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.current += w
	l.width = w
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

// backup steps back one rune. Only valid once per call to nextRune, and
// never across a newline boundary for column accuracy.
func (l *Lexer) backup() {
	l.current -= l.width
	if l.width > 0 {
		l.column--
	}
	l.width = 0
}

func (l *Lexer) peekRune() rune {
	if l.current >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.current:])
	return r
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// isSymbolRune reports whether r may appear inside a symbol or keyword.
func isSymbolRune(r rune) bool {
	switch r {
	case eof, ' ', '\t', '\r', '\n', ',', '(', ')', '[', ']', '{', '}', '"', ';', '\'', '`', '~':
		return false
	}
	return true
}
