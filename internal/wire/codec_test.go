package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpl/application-services/internal/model"
)

func testComponent() *model.Component {
	return &model.Component{
		Name: "Demo",
		Members: []model.Member{
			&model.EnumType{
				Name:     "Status",
				Variants: []model.Variant{{Name: "Ok", Discriminant: 0}, {Name: "Failed", Discriminant: 1}},
			},
			&model.RecordType{
				Name: "Point",
				Fields: []model.Field{
					{Name: "x", Type: model.U32{}},
					{Name: "y", Type: model.U32{}},
					{Name: "label", Type: model.Optional{Inner: model.String{}}},
				},
			},
			&model.ObjectType{Name: "Counter"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	codec := NewCodec(testComponent())

	tests := []struct {
		name string
		typ  model.TypeRef
		val  Value
	}{
		{"false", model.Boolean{}, Bool(false)},
		{"true", model.Boolean{}, Bool(true)},
		{"u32 zero", model.U32{}, U32(0)},
		{"u32 max", model.U32{}, U32(math.MaxUint32)},
		{"u64 max", model.U64{}, U64(math.MaxUint64)},
		{"empty string", model.String{}, Str("")},
		{"unicode string", model.String{}, Str("héllo, 世界")},
		{"enum", model.EnumRef{Name: "Status"}, Enum{Variant: "Failed"}},
		{"handle", model.ObjectRef{Name: "Counter"}, Handle(42)},
		{"record", model.RecordRef{Name: "Point"}, Record{"x": U32(1), "y": U32(2), "label": Some(Str("origin"))}},
		{"none", model.Optional{Inner: model.U64{}}, None},
		{"some", model.Optional{Inner: model.U64{}}, Some(U64(7))},
		{"sequence", model.Sequence{Elem: model.String{}}, Sequence{Str("a"), Str(""), Str("c")}},
		{"empty sequence", model.Sequence{Elem: model.U32{}}, Sequence{}},
		{"map", model.Map{Key: model.String{}, Value: model.EnumRef{Name: "Status"}},
			Map{{Key: Str("a"), Value: Enum{Variant: "Ok"}}, {Key: Str("b"), Value: Enum{Variant: "Failed"}}}},
		{"nested", model.Sequence{Elem: model.Optional{Inner: model.RecordRef{Name: "Point"}}},
			Sequence{None, Some(Record{"x": U32(3), "y": U32(4), "label": None})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lowered, err := codec.Lower(tt.typ, tt.val)
			require.NoError(t, err)

			lifted, err := codec.Lift(tt.typ, lowered)
			require.NoError(t, err)
			assert.Equal(t, tt.val, lifted)
		})
	}
}

func TestLowerBoolean(t *testing.T) {
	codec := NewCodec(testComponent())

	l, err := codec.Lower(model.Boolean{}, Bool(true))
	require.NoError(t, err)
	assert.Equal(t, Lowered{Kind: KindInt8, Int: 1}, l)

	l, err = codec.Lower(model.Boolean{}, Bool(false))
	require.NoError(t, err)
	assert.Equal(t, Lowered{Kind: KindInt8, Int: 0}, l)
}

func TestLiftBooleanNonzeroIsTrue(t *testing.T) {
	codec := NewCodec(testComponent())

	v, err := codec.Lift(model.Boolean{}, Lowered{Kind: KindInt8, Int: 0xff})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}

// A lift of a discriminant that no variant declares is a runtime error,
// never a default variant.
func TestLiftUnknownDiscriminant(t *testing.T) {
	codec := NewCodec(testComponent())

	v, err := codec.Lift(model.EnumRef{Name: "Status"}, Lowered{Kind: KindUint32, Int: 2})
	require.Error(t, err)
	assert.Nil(t, v)
	assert.True(t, IsLiftError(err))
	assert.True(t, IsUnknownDiscriminant(err))
	assert.Contains(t, err.Error(), "lift Status")
}

func TestLiftUnknownDiscriminantInsideBuffer(t *testing.T) {
	codec := NewCodec(testComponent())
	typ := model.Sequence{Elem: model.EnumRef{Name: "Status"}}

	// count=2, Ok, then 9
	buf := []byte{0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 9}
	_, err := codec.Lift(typ, Lowered{Kind: KindBuffer, Buffer: buf})
	require.Error(t, err)
	assert.True(t, IsUnknownDiscriminant(err))

	var le *LiftError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 8, le.Offset)
}

func TestSerializedLayout(t *testing.T) {
	codec := NewCodec(testComponent())

	l, err := codec.Lower(model.RecordRef{Name: "Point"}, Record{"x": U32(1), "y": U32(2), "label": Some(Str("ab"))})
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 0, 0, 1, // x
		0, 0, 0, 2, // y
		1,          // some
		0, 0, 0, 2, // len
		'a', 'b',
	}, l.Buffer)

	// Top-level strings carry raw bytes without a length prefix.
	l, err = codec.Lower(model.String{}, Str("ab"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), l.Buffer)
}

func TestLiftFailures(t *testing.T) {
	codec := NewCodec(testComponent())

	tests := []struct {
		name    string
		typ     model.TypeRef
		lowered Lowered
		cause   error
	}{
		{"truncated u64 in sequence", model.Sequence{Elem: model.U64{}}, Lowered{Kind: KindBuffer, Buffer: []byte{0, 0, 0, 1, 0, 0}}, ErrTruncated},
		{"trailing bytes", model.Optional{Inner: model.U32{}}, Lowered{Kind: KindBuffer, Buffer: []byte{0, 9}}, ErrTrailingBytes},
		{"bad optional tag", model.Optional{Inner: model.U32{}}, Lowered{Kind: KindBuffer, Buffer: []byte{2}}, ErrInvalidTag},
		{"invalid utf8", model.String{}, Lowered{Kind: KindBuffer, Buffer: []byte{0xff, 0xfe}}, ErrInvalidUTF8},
		{"negative count", model.Sequence{Elem: model.U32{}}, Lowered{Kind: KindBuffer, Buffer: []byte{0xff, 0xff, 0xff, 0xff}}, ErrNegativeLength},
		{"string longer than buffer", model.Sequence{Elem: model.String{}}, Lowered{Kind: KindBuffer, Buffer: []byte{0, 0, 0, 1, 0, 0, 0, 5, 'a'}}, ErrTruncated},
		{"kind mismatch", model.U32{}, Lowered{Kind: KindUint64, Int: 1}, ErrKindMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Lift(tt.typ, tt.lowered)
			require.Error(t, err)
			assert.True(t, IsLiftError(err))
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestLowerRejectsMismatchedValues(t *testing.T) {
	codec := NewCodec(testComponent())

	_, err := codec.Lower(model.U32{}, Str("x"))
	require.Error(t, err)

	_, err = codec.Lower(model.EnumRef{Name: "Status"}, Enum{Variant: "Unknown"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no variant "Unknown"`)

	_, err = codec.Lower(model.RecordRef{Name: "Point"}, Record{"x": U32(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing field "y"`)
}

func TestHex(t *testing.T) {
	assert.Equal(t, "int8:01", Lowered{Kind: KindInt8, Int: 1}.Hex())
	assert.Equal(t, "uint32:00000002", Lowered{Kind: KindUint32, Int: 2}.Hex())
	assert.Equal(t, "uint64:000000000000002a", Lowered{Kind: KindUint64, Int: 42}.Hex())
	assert.Equal(t, "buffer:6869", Lowered{Kind: KindBuffer, Buffer: []byte("hi")}.Hex())
}

func TestParseHex(t *testing.T) {
	for _, l := range []Lowered{
		{Kind: KindInt8, Int: 1},
		{Kind: KindUint32, Int: 2},
		{Kind: KindUint64, Int: 42},
		{Kind: KindBuffer, Buffer: []byte("hi")},
	} {
		got, err := ParseHex(l.Hex())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	for _, bad := range []string{"00000002", "uint32:0002", "float:00", "buffer:zz"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseJSON(t *testing.T) {
	codec := NewCodec(testComponent())

	v, err := codec.ParseJSON(model.RecordRef{Name: "Point"}, []byte(`{"x": 1, "y": 2, "label": null}`))
	require.NoError(t, err)
	assert.Equal(t, Record{"x": U32(1), "y": U32(2), "label": None}, v)

	v, err = codec.ParseJSON(model.Map{Key: model.U32{}, Value: model.Boolean{}}, []byte(`{"2": true, "1": false}`))
	require.NoError(t, err)
	assert.Equal(t, Map{{Key: U32(1), Value: Bool(false)}, {Key: U32(2), Value: Bool(true)}}, v)

	v, err = codec.ParseJSON(model.EnumRef{Name: "Status"}, []byte(`"Ok"`))
	require.NoError(t, err)
	assert.Equal(t, Enum{Variant: "Ok"}, v)

	_, err = codec.ParseJSON(model.U32{}, []byte(`4294967296`))
	require.Error(t, err, "overflows u32")

	_, err = codec.ParseJSON(model.Sequence{Elem: model.U32{}}, []byte(`{}`))
	require.Error(t, err)
}
