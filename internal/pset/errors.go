package pset

import "errors"

var (
	// ErrUnknownParameter is returned when a module has no parameter with the requested name.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrTypeMismatch is returned by typed accessors when the stored value has another kind.
	ErrTypeMismatch = errors.New("parameter type mismatch")
	// ErrSyntax is returned by Parse for malformed configuration text.
	ErrSyntax = errors.New("syntax error")
)
