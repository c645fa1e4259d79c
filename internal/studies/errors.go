package studies

import (
	"errors"
	"fmt"

	domrepo "FinStudies/internal/domain/repository"
)

var (
	// ErrMissingColumn matches a *MissingColumnError.
	ErrMissingColumn = errors.New("missing column")
	// ErrPrimitiveFailure matches a *PrimitiveError.
	ErrPrimitiveFailure = errors.New("indicator primitive failed")
	// ErrUnknownStudy is returned by Lookup for unregistered names.
	ErrUnknownStudy = errors.New("unknown study")
)

// MissingColumnError reports a required input column absent from the fetched series.
type MissingColumnError struct {
	Study  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: column %q not in series", e.Study, e.Column)
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// PrimitiveError wraps a failure raised by the indicator primitive.
type PrimitiveError struct {
	Study string
	Err   error
}

func (e *PrimitiveError) Error() string {
	return fmt.Sprintf("%s: primitive failed: %v", e.Study, e.Err)
}

func (e *PrimitiveError) Unwrap() error { return e.Err }

func (e *PrimitiveError) Is(target error) bool { return target == ErrPrimitiveFailure }

// Kind classifies err into a short label for metrics and result messages.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domrepo.ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrPrimitiveFailure):
		return "primitive_failure"
	case errors.Is(err, ErrUnknownStudy):
		return "unknown_study"
	default:
		return "internal"
	}
}
