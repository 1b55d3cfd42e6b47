package types

import "fmt"

// ErrorCode identifies a class of compilation error.
type ErrorCode string

// Error codes, grouped by pipeline stage: Rxxxx reader, Xxxxx expander,
// Axxxx analyzer.
const (
	// Reader errors
	ErrStringNotClosed ErrorCode = "R0101"
	ErrNumberInvalid   ErrorCode = "R0102"
	ErrUnexpectedEOF   ErrorCode = "R0104"
	ErrUnmatchedDelim  ErrorCode = "R0105"
	ErrOddMapLiteral   ErrorCode = "R0106"

	// Expander errors
	ErrSyntaxQuote    ErrorCode = "X0101" // unquote-splice at an unspliceable position
	ErrExpansionDepth ErrorCode = "X0102" // fixed-point budget exhausted
	ErrMacro          ErrorCode = "X0103" // a macro function returned an error

	// Analyzer errors
	ErrClassification ErrorCode = "A0101" // form fits no recognized category
	ErrSyntax         ErrorCode = "A0201" // structurally invalid special form
	ErrScope          ErrorCode = "A0301" // recur without an active recur point
)

// Error is a structured compilation error. It carries a human-readable
// message plus the offending form and its source position when available.
// All compilation errors are fatal: the first one aborts the remaining
// top-level forms, since later forms may depend on namespace state mutated
// by earlier ones.
type Error struct {
	Code    ErrorCode
	Message string
	Form    *Form
	Line    int // 1-based, 0 when unknown
	Column  int // 1-based, 0 when unknown
	Err     error
}

// NewError creates a new compilation error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new compilation error with a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithForm attaches the offending form, pulling its source position out of
// the form's metadata when present.
func (e *Error) WithForm(f *Form) *Error {
	e.Form = f
	if f != nil {
		if line, ok := f.Meta[MetaLine].(int); ok {
			e.Line = line
		}
		if col, ok := f.Meta[MetaColumn].(int); ok {
			e.Column = col
		}
	}
	return e
}

// WithPosition attaches an explicit source position.
func (e *Error) WithPosition(line, column int) *Error {
	e.Line = line
	e.Column = column
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Form != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Form)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Code, e.Line, e.Column, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}
