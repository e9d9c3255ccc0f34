package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidMass indicates a gravitating body with a non-positive or non-finite mass.
	ErrInvalidMass = errors.New("dynamo: gravitating mass must be positive and finite")

	// ErrInvalidState indicates a vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParameter indicates a parameter name a scene does not expose.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrNoScene indicates an operation that needs an instantiated scene ran before the first reload.
	ErrNoScene = errors.New("dynamo: no scene instantiated yet")

	// ErrUnknownScene indicates a scene name missing from the catalog.
	ErrUnknownScene = errors.New("dynamo: unknown scene")

	// ErrInvalidConfig indicates a configuration that fails validation.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")
)

// ParamError wraps a parameter error with the offending name and value.
type ParamError struct {
	Name    string
	Value   float64
	Wrapped error
}

func (e *ParamError) Error() string {
	return e.Wrapped.Error() + ": " + e.Name
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}
