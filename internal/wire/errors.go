package wire

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel causes of a LiftError.
var (
	ErrUnknownDiscriminant = errors.New("unknown enum discriminant")
	ErrTruncated           = errors.New("buffer truncated")
	ErrTrailingBytes       = errors.New("trailing bytes after value")
	ErrInvalidUTF8         = errors.New("invalid UTF-8")
	ErrInvalidTag          = errors.New("invalid optional tag")
	ErrNegativeLength      = errors.New("negative length")
	ErrKindMismatch        = errors.New("wire kind mismatch")
)

// LiftError is a runtime failure of a lift: the wire value does not decode
// to any value of the target type. Generated bindings raise the equivalent
// exception (or panic) on the same conditions.
type LiftError struct {
	Type   string
	Offset int
	Err    error
}

func (e *LiftError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("lift %s at offset %d: %v", e.Type, e.Offset, e.Err)
	}
	return fmt.Sprintf("lift %s: %v", e.Type, e.Err)
}

func (e *LiftError) Unwrap() error {
	return e.Err
}

// IsLiftError reports whether err is or wraps a *LiftError.
func IsLiftError(err error) bool {
	var le *LiftError
	return errors.As(err, &le)
}

// IsUnknownDiscriminant reports whether err is a lift of an undeclared
// enum discriminant.
func IsUnknownDiscriminant(err error) bool {
	return errors.Is(err, ErrUnknownDiscriminant)
}
