package model

import "fmt"

// TypeRef is a sealed interface over the supported value types.
// Only the types in this file implement it.
type TypeRef interface {
	// String returns the canonical type expression, e.g. "optional<sequence<Point>>".
	String() string
	typeRef()
}

// Boolean is a true/false value.
type Boolean struct{}

// U32 is an unsigned 32-bit integer.
type U32 struct{}

// U64 is an unsigned 64-bit integer.
type U64 struct{}

// String is a UTF-8 string.
type String struct{}

// EnumRef names an EnumType in the same Component.
type EnumRef struct{ Name string }

// RecordRef names a RecordType in the same Component.
type RecordRef struct{ Name string }

// ObjectRef names an ObjectType in the same Component.
type ObjectRef struct{ Name string }

// Optional is a value that may be absent.
type Optional struct{ Inner TypeRef }

// Sequence is an ordered list of values.
type Sequence struct{ Elem TypeRef }

// Map is a set of key/value pairs.
type Map struct{ Key, Value TypeRef }

func (Boolean) String() string     { return "bool" }
func (U32) String() string         { return "u32" }
func (U64) String() string         { return "u64" }
func (String) String() string      { return "string" }
func (r EnumRef) String() string   { return r.Name }
func (r RecordRef) String() string { return r.Name }
func (r ObjectRef) String() string { return r.Name }
func (o Optional) String() string  { return fmt.Sprintf("optional<%s>", typeString(o.Inner)) }
func (s Sequence) String() string  { return fmt.Sprintf("sequence<%s>", typeString(s.Elem)) }
func (m Map) String() string {
	return fmt.Sprintf("map<%s, %s>", typeString(m.Key), typeString(m.Value))
}

func (Boolean) typeRef()   {}
func (U32) typeRef()       {}
func (U64) typeRef()       {}
func (String) typeRef()    {}
func (EnumRef) typeRef()   {}
func (RecordRef) typeRef() {}
func (ObjectRef) typeRef() {}
func (Optional) typeRef()  {}
func (Sequence) typeRef()  {}
func (Map) typeRef()       {}

// MarshalText renders type references as their canonical expression so
// that JSON output of a model stays readable.
func (b Boolean) MarshalText() ([]byte, error)   { return []byte(b.String()), nil }
func (u U32) MarshalText() ([]byte, error)       { return []byte(u.String()), nil }
func (u U64) MarshalText() ([]byte, error)       { return []byte(u.String()), nil }
func (s String) MarshalText() ([]byte, error)    { return []byte(s.String()), nil }
func (r EnumRef) MarshalText() ([]byte, error)   { return []byte(r.String()), nil }
func (r RecordRef) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
func (r ObjectRef) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
func (o Optional) MarshalText() ([]byte, error)  { return []byte(o.String()), nil }
func (s Sequence) MarshalText() ([]byte, error)  { return []byte(s.String()), nil }
func (m Map) MarshalText() ([]byte, error)       { return []byte(m.String()), nil }

func typeString(t TypeRef) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// TypeString is like t.String but tolerates a nil reference.
func TypeString(t TypeRef) string {
	return typeString(t)
}

// Walk calls fn for t and every type nested inside it, outermost first.
// Walking stops early when fn returns false.
func Walk(t TypeRef, fn func(TypeRef) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch tt := t.(type) {
	case Optional:
		Walk(tt.Inner, fn)
	case Sequence:
		Walk(tt.Elem, fn)
	case Map:
		Walk(tt.Key, fn)
		Walk(tt.Value, fn)
	}
}

// NamedRef returns the referenced member name and kind for EnumRef,
// RecordRef and ObjectRef. ok is false for every other type.
func NamedRef(t TypeRef) (name string, kind MemberKind, ok bool) {
	switch tt := t.(type) {
	case EnumRef:
		return tt.Name, KindEnum, true
	case RecordRef:
		return tt.Name, KindRecord, true
	case ObjectRef:
		return tt.Name, KindObject, true
	default:
		return "", "", false
	}
}

// Resolve returns the member a named reference points at. It fails when the
// name is missing or names a member of a different kind.
func (c *Component) Resolve(t TypeRef) (Member, error) {
	name, kind, ok := NamedRef(t)
	if !ok {
		return nil, fmt.Errorf("type %s is not a named reference", typeString(t))
	}
	m, found := c.Lookup(name)
	if !found {
		return nil, fmt.Errorf("unresolved %s reference %q", kind, name)
	}
	if m.Kind() != kind {
		return nil, fmt.Errorf("%q is a %s, not a %s", name, m.Kind(), kind)
	}
	return m, nil
}

// Equal reports whether two type references denote the same type.
func Equal(a, b TypeRef) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String() && sameShape(a, b)
}

func sameShape(a, b TypeRef) bool {
	switch at := a.(type) {
	case EnumRef:
		_, ok := b.(EnumRef)
		return ok
	case RecordRef:
		_, ok := b.(RecordRef)
		return ok
	case ObjectRef:
		_, ok := b.(ObjectRef)
		return ok
	case Optional:
		bt, ok := b.(Optional)
		return ok && sameShape(at.Inner, bt.Inner)
	case Sequence:
		bt, ok := b.(Sequence)
		return ok && sameShape(at.Elem, bt.Elem)
	case Map:
		bt, ok := b.(Map)
		return ok && sameShape(at.Key, bt.Key) && sameShape(at.Value, bt.Value)
	default:
		return true
	}
}
