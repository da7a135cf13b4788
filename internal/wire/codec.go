package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/rpl/application-services/internal/model"
)

// Kind is the boundary representation of a lowered value.
type Kind int

const (
	KindInt8 Kind = iota + 1
	KindUint32
	KindUint64
	KindBuffer
)

func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Lowered is a value in boundary representation. Int carries the scalar
// kinds; Buffer carries the bytes a RustBuffer would own.
type Lowered struct {
	Kind   Kind
	Int    uint64
	Buffer []byte
}

// Hex renders the lowered value as a test vector, e.g. "uint32:00000002".
func (l Lowered) Hex() string {
	var raw []byte
	switch l.Kind {
	case KindInt8:
		raw = []byte{byte(l.Int)}
	case KindUint32:
		raw = binary.BigEndian.AppendUint32(nil, uint32(l.Int))
	case KindUint64:
		raw = binary.BigEndian.AppendUint64(nil, l.Int)
	default:
		raw = l.Buffer
	}
	return l.Kind.String() + ":" + hex.EncodeToString(raw)
}

// ParseHex parses a test vector rendered by Lowered.Hex.
func ParseHex(s string) (Lowered, error) {
	name, digits, ok := strings.Cut(s, ":")
	if !ok {
		return Lowered{}, errors.Newf("test vector %q: missing kind prefix", s)
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return Lowered{}, errors.Wrapf(err, "test vector %q", s)
	}

	want := map[string]struct {
		kind Kind
		size int
	}{
		"int8":   {KindInt8, 1},
		"uint32": {KindUint32, 4},
		"uint64": {KindUint64, 8},
		"buffer": {KindBuffer, -1},
	}
	k, ok := want[name]
	if !ok {
		return Lowered{}, errors.Newf("test vector %q: unknown kind %q", s, name)
	}
	if k.kind == KindBuffer {
		return Lowered{Kind: KindBuffer, Buffer: raw}, nil
	}
	if len(raw) != k.size {
		return Lowered{}, errors.Newf("test vector %q: %s needs %d bytes, got %d", s, name, k.size, len(raw))
	}
	var n uint64
	for _, b := range raw {
		n = n<<8 | uint64(b)
	}
	return Lowered{Kind: k.kind, Int: n}, nil
}

// KindOf returns the boundary kind of t.
func KindOf(t model.TypeRef) (Kind, error) {
	switch t.(type) {
	case model.Boolean:
		return KindInt8, nil
	case model.U32, model.EnumRef:
		return KindUint32, nil
	case model.U64, model.ObjectRef:
		return KindUint64, nil
	case model.String, model.RecordRef, model.Optional, model.Sequence, model.Map:
		return KindBuffer, nil
	default:
		return 0, errors.Newf("no wire kind for type %s", model.TypeString(t))
	}
}

// Codec lowers and lifts values of one component's types.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	component *model.Component
}

// NewCodec returns a codec resolving named types against c.
func NewCodec(c *model.Component) *Codec {
	return &Codec{component: c}
}

// Lower converts v into its boundary representation for type t.
func (c *Codec) Lower(t model.TypeRef, v Value) (Lowered, error) {
	switch tt := t.(type) {
	case model.Boolean:
		b, ok := v.(Bool)
		if !ok {
			return Lowered{}, mismatch(t, v)
		}
		if b {
			return Lowered{Kind: KindInt8, Int: 1}, nil
		}
		return Lowered{Kind: KindInt8, Int: 0}, nil
	case model.U32:
		u, ok := v.(U32)
		if !ok {
			return Lowered{}, mismatch(t, v)
		}
		return Lowered{Kind: KindUint32, Int: uint64(u)}, nil
	case model.U64:
		u, ok := v.(U64)
		if !ok {
			return Lowered{}, mismatch(t, v)
		}
		return Lowered{Kind: KindUint64, Int: uint64(u)}, nil
	case model.ObjectRef:
		h, ok := v.(Handle)
		if !ok {
			return Lowered{}, mismatch(t, v)
		}
		return Lowered{Kind: KindUint64, Int: uint64(h)}, nil
	case model.EnumRef:
		d, err := c.discriminant(tt, v)
		if err != nil {
			return Lowered{}, err
		}
		return Lowered{Kind: KindUint32, Int: uint64(d)}, nil
	case model.String:
		s, ok := v.(Str)
		if !ok {
			return Lowered{}, mismatch(t, v)
		}
		return Lowered{Kind: KindBuffer, Buffer: []byte(s)}, nil
	case model.RecordRef, model.Optional, model.Sequence, model.Map:
		var buf bytes.Buffer
		if err := c.Write(&buf, t, v); err != nil {
			return Lowered{}, err
		}
		return Lowered{Kind: KindBuffer, Buffer: buf.Bytes()}, nil
	default:
		return Lowered{}, errors.Newf("cannot lower type %s", model.TypeString(t))
	}
}

// Lift reconstructs a value of type t from its boundary representation.
// Invalid wire data yields a *LiftError.
func (c *Codec) Lift(t model.TypeRef, l Lowered) (Value, error) {
	want, err := KindOf(t)
	if err != nil {
		return nil, err
	}
	if l.Kind != want {
		return nil, &LiftError{Type: t.String(), Err: errors.Wrapf(ErrKindMismatch, "got %s, want %s", l.Kind, want)}
	}

	switch tt := t.(type) {
	case model.Boolean:
		return Bool(l.Int != 0), nil
	case model.U32:
		if l.Int > math.MaxUint32 {
			return nil, &LiftError{Type: t.String(), Err: errors.Newf("value %d overflows u32", l.Int)}
		}
		return U32(l.Int), nil
	case model.U64:
		return U64(l.Int), nil
	case model.ObjectRef:
		return Handle(l.Int), nil
	case model.EnumRef:
		return c.variant(tt, l.Int, 0)
	case model.String:
		if !utf8.Valid(l.Buffer) {
			return nil, &LiftError{Type: t.String(), Err: ErrInvalidUTF8}
		}
		return Str(l.Buffer), nil
	default:
		r := bytes.NewReader(l.Buffer)
		v, err := c.Read(r, t)
		if err != nil {
			return nil, err
		}
		if r.Len() != 0 {
			return nil, &LiftError{Type: t.String(), Offset: len(l.Buffer) - r.Len(), Err: ErrTrailingBytes}
		}
		return v, nil
	}
}

// Write appends the serialized form of v to buf.
func (c *Codec) Write(buf *bytes.Buffer, t model.TypeRef, v Value) error {
	switch tt := t.(type) {
	case model.Boolean:
		b, ok := v.(Bool)
		if !ok {
			return mismatch(t, v)
		}
		if b {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case model.U32:
		u, ok := v.(U32)
		if !ok {
			return mismatch(t, v)
		}
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(u)))
	case model.U64:
		u, ok := v.(U64)
		if !ok {
			return mismatch(t, v)
		}
		buf.Write(binary.BigEndian.AppendUint64(nil, uint64(u)))
	case model.ObjectRef:
		h, ok := v.(Handle)
		if !ok {
			return mismatch(t, v)
		}
		buf.Write(binary.BigEndian.AppendUint64(nil, uint64(h)))
	case model.EnumRef:
		d, err := c.discriminant(tt, v)
		if err != nil {
			return err
		}
		buf.Write(binary.BigEndian.AppendUint32(nil, d))
	case model.String:
		s, ok := v.(Str)
		if !ok {
			return mismatch(t, v)
		}
		if err := writeLength(buf, len(s)); err != nil {
			return err
		}
		buf.WriteString(string(s))
	case model.RecordRef:
		rec, ok := v.(Record)
		if !ok {
			return mismatch(t, v)
		}
		rt, err := c.record(tt)
		if err != nil {
			return err
		}
		for _, f := range rt.Fields {
			fv, ok := rec[f.Name]
			if !ok {
				return errors.Newf("record %s: missing field %q", rt.Name, f.Name)
			}
			if err := c.Write(buf, f.Type, fv); err != nil {
				return errors.Wrapf(err, "record %s.%s", rt.Name, f.Name)
			}
		}
		if len(rec) > len(rt.Fields) {
			return errors.Newf("record %s: %d unknown fields", rt.Name, len(rec)-len(rt.Fields))
		}
	case model.Optional:
		o, ok := v.(Optional)
		if !ok {
			return mismatch(t, v)
		}
		if o.Some == nil {
			buf.WriteByte(0)
			return nil
		}
		buf.WriteByte(1)
		return c.Write(buf, tt.Inner, o.Some)
	case model.Sequence:
		s, ok := v.(Sequence)
		if !ok {
			return mismatch(t, v)
		}
		if err := writeLength(buf, len(s)); err != nil {
			return err
		}
		for i, item := range s {
			if err := c.Write(buf, tt.Elem, item); err != nil {
				return errors.Wrapf(err, "sequence[%d]", i)
			}
		}
	case model.Map:
		m, ok := v.(Map)
		if !ok {
			return mismatch(t, v)
		}
		if err := writeLength(buf, len(m)); err != nil {
			return err
		}
		for i, e := range m {
			if err := c.Write(buf, tt.Key, e.Key); err != nil {
				return errors.Wrapf(err, "map key %d", i)
			}
			if err := c.Write(buf, tt.Value, e.Value); err != nil {
				return errors.Wrapf(err, "map value %d", i)
			}
		}
	default:
		return errors.Newf("cannot write type %s", model.TypeString(t))
	}
	return nil
}

// Read decodes one value of type t from r.
func (c *Codec) Read(r *bytes.Reader, t model.TypeRef) (Value, error) {
	start := int(r.Size()) - r.Len()
	switch tt := t.(type) {
	case model.Boolean:
		b, err := r.ReadByte()
		if err != nil {
			return nil, truncated(t, start)
		}
		return Bool(b != 0), nil
	case model.U32:
		u, err := readUint32(r)
		if err != nil {
			return nil, truncated(t, start)
		}
		return U32(u), nil
	case model.U64:
		u, err := readUint64(r)
		if err != nil {
			return nil, truncated(t, start)
		}
		return U64(u), nil
	case model.ObjectRef:
		u, err := readUint64(r)
		if err != nil {
			return nil, truncated(t, start)
		}
		return Handle(u), nil
	case model.EnumRef:
		u, err := readUint32(r)
		if err != nil {
			return nil, truncated(t, start)
		}
		return c.variant(tt, uint64(u), start)
	case model.String:
		n, err := readLength(r, t, start)
		if err != nil {
			return nil, err
		}
		if n > r.Len() {
			return nil, truncated(t, start)
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, truncated(t, start)
		}
		if !utf8.Valid(raw) {
			return nil, &LiftError{Type: t.String(), Offset: start, Err: ErrInvalidUTF8}
		}
		return Str(raw), nil
	case model.RecordRef:
		rt, err := c.record(tt)
		if err != nil {
			return nil, err
		}
		rec := make(Record, len(rt.Fields))
		for _, f := range rt.Fields {
			fv, err := c.Read(r, f.Type)
			if err != nil {
				return nil, err
			}
			rec[f.Name] = fv
		}
		return rec, nil
	case model.Optional:
		tag, err := r.ReadByte()
		if err != nil {
			return nil, truncated(t, start)
		}
		switch tag {
		case 0:
			return None, nil
		case 1:
			inner, err := c.Read(r, tt.Inner)
			if err != nil {
				return nil, err
			}
			return Some(inner), nil
		default:
			return nil, &LiftError{Type: t.String(), Offset: start, Err: errors.Wrapf(ErrInvalidTag, "tag %d", tag)}
		}
	case model.Sequence:
		n, err := readLength(r, t, start)
		if err != nil {
			return nil, err
		}
		out := make(Sequence, 0, min(n, r.Len()))
		for i := 0; i < n; i++ {
			item, err := c.Read(r, tt.Elem)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case model.Map:
		n, err := readLength(r, t, start)
		if err != nil {
			return nil, err
		}
		out := make(Map, 0, min(n, r.Len()))
		for i := 0; i < n; i++ {
			k, err := c.Read(r, tt.Key)
			if err != nil {
				return nil, err
			}
			v, err := c.Read(r, tt.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, Entry{Key: k, Value: v})
		}
		return out, nil
	default:
		return nil, errors.Newf("cannot read type %s", model.TypeString(t))
	}
}

func (c *Codec) enum(ref model.EnumRef) (*model.EnumType, error) {
	m, err := c.component.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return m.(*model.EnumType), nil
}

func (c *Codec) record(ref model.RecordRef) (*model.RecordType, error) {
	m, err := c.component.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return m.(*model.RecordType), nil
}

func (c *Codec) discriminant(ref model.EnumRef, v Value) (uint32, error) {
	e, ok := v.(Enum)
	if !ok {
		return 0, mismatch(ref, v)
	}
	et, err := c.enum(ref)
	if err != nil {
		return 0, err
	}
	for _, variant := range et.Variants {
		if variant.Name == e.Variant {
			if variant.Discriminant < 0 || variant.Discriminant > math.MaxUint32 {
				return 0, errors.Newf("enum %s: discriminant %d out of u32 range", et.Name, variant.Discriminant)
			}
			return uint32(variant.Discriminant), nil
		}
	}
	return 0, errors.Newf("enum %s has no variant %q", et.Name, e.Variant)
}

func (c *Codec) variant(ref model.EnumRef, d uint64, offset int) (Value, error) {
	et, err := c.enum(ref)
	if err != nil {
		return nil, err
	}
	for _, variant := range et.Variants {
		if variant.Discriminant >= 0 && uint64(variant.Discriminant) == d {
			return Enum{Variant: variant.Name}, nil
		}
	}
	return nil, &LiftError{
		Type:   ref.String(),
		Offset: offset,
		Err:    errors.Wrapf(ErrUnknownDiscriminant, "%d", d),
	}
}

func mismatch(t model.TypeRef, v Value) error {
	return errors.Newf("value of type %T does not match %s", v, model.TypeString(t))
}

func truncated(t model.TypeRef, offset int) error {
	return &LiftError{Type: t.String(), Offset: offset, Err: ErrTruncated}
}

func writeLength(buf *bytes.Buffer, n int) error {
	if n > math.MaxInt32 {
		return errors.Newf("length %d exceeds int32", n)
	}
	buf.Write(binary.BigEndian.AppendUint32(nil, uint32(n)))
	return nil
}

func readLength(r *bytes.Reader, t model.TypeRef, offset int) (int, error) {
	u, err := readUint32(r)
	if err != nil {
		return 0, truncated(t, offset)
	}
	n := int32(u)
	if n < 0 {
		return 0, &LiftError{Type: t.String(), Offset: offset, Err: ErrNegativeLength}
	}
	return int(n), nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var raw [4]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(raw[:]), nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var raw [8]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(raw[:]), nil
}
