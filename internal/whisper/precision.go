package whisper

import (
	"errors"
	"fmt"
)

// Precision is the numeric representation the engine uses internally; it
// trades speed and memory against accuracy.
type Precision string

const (
	PrecisionInt8    Precision = "int8"
	PrecisionFloat16 Precision = "float16"
	PrecisionFloat32 Precision = "float32"
)

const DefaultPrecision = PrecisionInt8

var ErrInvalidPrecision = errors.New("invalid compute precision")

// ParsePrecision validates a precision mode at the boundary, before any
// load attempt. Matching is exact; no case folding.
func ParsePrecision(value string) (Precision, error) {
	switch Precision(value) {
	case PrecisionInt8, PrecisionFloat16, PrecisionFloat32:
		return Precision(value), nil
	default:
		return "", fmt.Errorf("%w: %q (expected int8, float16 or float32)", ErrInvalidPrecision, value)
	}
}
