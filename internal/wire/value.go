// Package wire is the executable reference for the FFI wire format.
//
// Generated bindings never import this package. It exists so the lift and
// lower semantics every backend emits as source text can be exercised in Go:
// round-trip tests, runtime failure modes, and the test vectors printed by
// "ffigen wire".
//
// Boundary representation per type:
//
//	bool                  int8 (0 false, nonzero true)
//	u32, enum             uint32
//	u64, object           uint64
//	string                buffer of raw UTF-8 bytes
//	record, optional,
//	sequence, map         buffer of serialized bytes
//
// Serialized form inside buffers is big-endian. Strings carry an int32
// byte length, optionals an int8 tag, sequences and maps an int32 count.
package wire

// Value is a sealed interface over the values that can cross the boundary.
type Value interface {
	value()
}

// Bool is a boolean value.
type Bool bool

// U32 is an unsigned 32-bit value.
type U32 uint32

// U64 is an unsigned 64-bit value.
type U64 uint64

// Str is a string value.
type Str string

// Enum is an enum value identified by its variant name.
type Enum struct {
	Variant string
}

// Handle is an opaque object handle.
type Handle uint64

// Record maps field names to values.
type Record map[string]Value

// Optional holds Some, or nothing when Some is nil.
type Optional struct {
	Some Value
}

// Sequence is an ordered list of values.
type Sequence []Value

// Map is an ordered list of entries. Order is preserved on the wire.
type Map []Entry

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   Value
	Value Value
}

func (Bool) value()     {}
func (U32) value()      {}
func (U64) value()      {}
func (Str) value()      {}
func (Enum) value()     {}
func (Handle) value()   {}
func (Record) value()   {}
func (Optional) value() {}
func (Sequence) value() {}
func (Map) value()      {}

// None is the absent Optional.
var None = Optional{}

// Some wraps v in an Optional.
func Some(v Value) Optional {
	return Optional{Some: v}
}
