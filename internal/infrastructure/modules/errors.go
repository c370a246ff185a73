package modules

import "errors"

var (
	// ErrUnknownModuleType is returned when no factory is registered for a module's type.
	ErrUnknownModuleType = errors.New("unknown module type")
	// ErrSchemaMismatch is returned when a parameter name or type is not accepted by the type's schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// ErrInvalidParameters is returned when parameters match the schema but violate
// a constraint of the module type (ordering, arity, ranges).
var ErrInvalidParameters = errors.New("invalid parameters")
