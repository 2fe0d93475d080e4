package field

import "errors"

var (
	// ErrDimensions indicates a negative viewport width or height.
	ErrDimensions = errors.New("field: viewport dimensions must be non-negative")

	// ErrInvalidPoint indicates a restored point carrying NaN or Inf.
	ErrInvalidPoint = errors.New("field: point has non-finite coordinates")
)
