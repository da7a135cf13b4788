package engine

import (
	"github.com/cockroachdb/errors"

	"github.com/rpl/application-services/internal/model"
)

// ErrNoMapping is returned by a Contract for a type it cannot express.
// The engine turns it into a MISSING_MAPPING generation error; it never
// emits a placeholder instead.
var ErrNoMapping = errors.New("no mapping for type")

// Contract is the type conversion contract of one binding language.
//
// Declare, Lift and Lower cover the FFI boundary: the declared type of a
// value in a C-compatible signature, and the expressions converting between
// that representation and the idiomatic native value. Native, Read and
// Write cover the serialized form used inside buffers, which composite
// types and records are built from.
//
// All methods are pure. Expressions are source text in the binding
// language; expr and buf are expressions naming the input value and the
// byte stream.
type Contract interface {
	// Declare returns the FFI-boundary type of t.
	Declare(t model.TypeRef) (string, error)

	// Lift returns an expression converting expr from its boundary
	// representation to the native value.
	Lift(expr string, t model.TypeRef) (string, error)

	// Lower returns an expression converting the native value expr to its
	// boundary representation.
	Lower(expr string, t model.TypeRef) (string, error)

	// Native returns the idiomatic native type of t.
	Native(t model.TypeRef) (string, error)

	// Read returns an expression decoding one value of t from buf.
	Read(buf string, t model.TypeRef) (string, error)

	// Write returns a statement encoding the native value expr into buf.
	Write(expr, buf string, t model.TypeRef) (string, error)
}

// NoMapping wraps ErrNoMapping with the offending type.
func NoMapping(t model.TypeRef) error {
	return errors.Wrapf(ErrNoMapping, "%s", model.TypeString(t))
}
