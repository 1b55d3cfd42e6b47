package reader

import (
	"github.com/cloverlang/clover/pkg/types"
)

// Reader builds Form trees from a token stream.
type Reader struct {
	tokens []Token
	pos    int
	file   string
}

// New creates a reader over the given source text.
func New(src string) (*Reader, error) {
	tokens, err := NewLexer(src).Tokens()
	if err != nil {
		return nil, err
	}
	return &Reader{tokens: tokens}, nil
}

// WithFile records the file name attached to every form's metadata.
func (r *Reader) WithFile(name string) *Reader {
	r.file = name
	return r
}

// ReadString reads every top-level form from the source text, in order.
func ReadString(src string) ([]*types.Form, error) {
	r, err := New(src)
	if err != nil {
		return nil, err
	}
	return r.ReadAll()
}

// ReadAll reads every remaining top-level form.
func (r *Reader) ReadAll() ([]*types.Form, error) {
	var forms []*types.Form
	for r.peek().Type != TokenEOF {
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func (r *Reader) peek() Token {
	if r.pos >= len(r.tokens) {
		return Token{Type: TokenEOF}
	}
	return r.tokens[r.pos]
}

func (r *Reader) next() Token {
	tok := r.peek()
	if r.pos < len(r.tokens) {
		r.pos++
	}
	return tok
}

func (r *Reader) meta(tok Token) types.Meta {
	m := types.Meta{types.MetaLine: tok.Line, types.MetaColumn: tok.Column}
	if r.file != "" {
		m[types.MetaFile] = r.file
	}
	return m
}

func (r *Reader) readForm() (*types.Form, error) {
	tok := r.next()
	switch tok.Type {
	case TokenEOF:
		return nil, types.NewError(types.ErrUnexpectedEOF, "unexpected end of input").
			WithPosition(tok.Line, tok.Column)
	case TokenString:
		return types.Str(tok.Text).WithMeta(r.meta(tok)), nil
	case TokenNumber:
		return types.Number(tok.Number).WithMeta(r.meta(tok)), nil
	case TokenKeyword:
		return types.Keyword(tok.Text).WithMeta(r.meta(tok)), nil
	case TokenSymbol:
		return types.Symbol(tok.Text).WithMeta(r.meta(tok)), nil
	case TokenLeftParen:
		return r.readColl(tok, types.CatList, TokenRightParen)
	case TokenLeftBracket:
		return r.readColl(tok, types.CatVector, TokenRightBracket)
	case TokenLeftBrace:
		form, err := r.readColl(tok, types.CatMap, TokenRightBrace)
		if err != nil {
			return nil, err
		}
		if len(form.Children)%2 != 0 {
			return nil, types.NewError(types.ErrOddMapLiteral, "map literal needs an even number of forms").
				WithPosition(tok.Line, tok.Column)
		}
		return form, nil
	case TokenHashBrace:
		return r.readColl(tok, types.CatSet, TokenRightBrace)
	case TokenQuote:
		return r.readWrapped(tok, "quote")
	case TokenSyntaxQuote:
		return r.readWrapped(tok, "syntax-quote")
	case TokenUnquote:
		return r.readWrapped(tok, "unquote")
	case TokenUnquoteSplice:
		return r.readWrapped(tok, "unquote-splice")
	case TokenRightParen, TokenRightBracket, TokenRightBrace:
		return nil, types.Errorf(types.ErrUnmatchedDelim, "unmatched %s", tok.Type).
			WithPosition(tok.Line, tok.Column)
	}
	return nil, types.Errorf(types.ErrUnexpectedEOF, "unexpected token %s", tok.Type).
		WithPosition(tok.Line, tok.Column)
}

func (r *Reader) readColl(open Token, category types.Category, close TokenType) (*types.Form, error) {
	var children []*types.Form
	for {
		tok := r.peek()
		if tok.Type == TokenEOF {
			return nil, types.Errorf(types.ErrUnmatchedDelim, "missing %s", close).
				WithPosition(open.Line, open.Column)
		}
		if tok.Type == close {
			r.next()
			return types.Coll(category, children, r.meta(open)), nil
		}
		child, err := r.readForm()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
}

// readWrapped reads one form and wraps it as (head form), used by the
// quote, syntax-quote, unquote and unquote-splice reader macros.
func (r *Reader) readWrapped(tok Token, head string) (*types.Form, error) {
	form, err := r.readForm()
	if err != nil {
		return nil, err
	}
	meta := r.meta(tok)
	return types.List(types.Symbol(head).WithMeta(meta), form).WithMeta(meta), nil
}
