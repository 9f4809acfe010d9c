package parser

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// Error is a grammar error at a 1-based line and column
type Error struct {
	Message    string
	Line       int
	Column     int
	Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Unwrap returns the participle error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// WrapError converts a participle or lexer error into *Error
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}
	var pe participle.Error
	if errors.As(err, &pe) {
		pos := pe.Position()
		return &Error{Message: pe.Message(), Line: pos.Line, Column: pos.Column, Underlying: err}
	}
	return &Error{Message: err.Error(), Line: 1, Column: 1, Underlying: err}
}
