package emitter

import "strings"

// escapeTokens maps each non-identifier character that may appear in a
// Clover name to a unique textual token, so distinct raw names never
// collide after escaping and every output identifier is valid JavaScript.
var escapeTokens = map[rune]string{
	'+': "_PLUS_",
	'-': "_DASH_",
	'*': "_STAR_",
	'/': "_SLASH_",
	'?': "_QMARK_",
	'!': "_BANG_",
	'<': "_LT_",
	'>': "_GT_",
	'=': "_EQ_",
}

// EscapeName transliterates a symbol or keyword name into a valid
// JavaScript identifier fragment.
func EscapeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if tok, ok := escapeTokens[r]; ok {
			b.WriteString(tok)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
