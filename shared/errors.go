package shared

import "errors"

// Error kinds for all failures surfaced by the core. Callers match on these
// with errors.Is to decide how to proceed.
var (
	// ErrInvalidData indicates malformed, out of order or incomplete input data.
	ErrInvalidData = errors.New("invalid data")
	// ErrInvalidParameter indicates an out of range or unknown parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInsufficientData indicates there is not enough history for the requested operation.
	ErrInsufficientData = errors.New("insufficient data")
)
