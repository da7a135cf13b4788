package kotlin

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
	"github.com/rpl/application-services/internal/testutil"
)

func TestContract(t *testing.T) {
	b := New()
	point := model.RecordRef{Name: "Point"}

	tests := []struct {
		name     string
		typ      model.TypeRef
		declared string
		native   string
		lift     string
		lower    string
	}{
		{"bool", model.Boolean{}, "Byte", "Boolean", "(x.toInt() != 0)", "(if (x) 1 else 0).toByte()"},
		{"u32", model.U32{}, "Int", "UInt", "x.toUInt()", "x.toInt()"},
		{"u64", model.U64{}, "Long", "ULong", "x.toULong()", "x.toLong()"},
		{"string", model.String{}, "RustBuffer.ByValue", "String", "liftString(x)", "lowerString(x)"},
		{"enum", model.EnumRef{Name: "status"}, "Int", "Status", "Status.lift(x)", "x.lower()"},
		{"record", point, "RustBuffer.ByValue", "Point", "Point.lift(x)", "x.lower()"},
		{"object", model.ObjectRef{Name: "Counter"}, "Handle", "Counter", "Counter(x)", "x.lower()"},
		{
			"optional", model.Optional{Inner: point}, "RustBuffer.ByValue", "Point?",
			"liftFromRustBuffer(x) { buf -> (if (buf.get().toInt() == 0) null else Point.read(buf)) }",
			"lowerIntoRustBuffer { buf -> x.let { v0 -> if (v0 == null) { buf.put(0.toByte()) } else { buf.put(1.toByte()); v0.write(buf) } } }",
		},
		{
			"sequence", model.Sequence{Elem: model.U32{}}, "RustBuffer.ByValue", "List<UInt>",
			"liftFromRustBuffer(x) { buf -> List(buf.getInt()) { buf.getInt().toUInt() } }",
			"lowerIntoRustBuffer { buf -> x.let { v0 -> buf.putInt(v0.size); v0.forEach { e0 -> buf.putInt(e0.toInt()) } } }",
		},
		{
			"map", model.Map{Key: model.String{}, Value: model.Boolean{}}, "RustBuffer.ByValue", "Map<String, Boolean>",
			"liftFromRustBuffer(x) { buf -> (0 until buf.getInt()).associate { readString(buf) to (buf.get().toInt() != 0) } }",
			"lowerIntoRustBuffer { buf -> x.let { v0 -> buf.putInt(v0.size); v0.forEach { (k0, e0) -> writeString(k0, buf); buf.put((if (e0) 1 else 0).toByte()) } } }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			declared, err := b.Declare(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.declared, declared)

			native, err := b.Native(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.native, native)

			lift, err := b.Lift("x", tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.lift, lift)

			lower, err := b.Lower("x", tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.lower, lower)
		})
	}
}

func TestContractRejectsNil(t *testing.T) {
	b := New()
	_, err := b.Declare(nil)
	assert.ErrorIs(t, err, engine.ErrNoMapping)
	_, err = b.Native(model.Optional{Inner: nil})
	assert.ErrorIs(t, err, engine.ErrNoMapping)
}

func TestNaming(t *testing.T) {
	b := New()
	assert.Equal(t, "SyncManager", b.TypeName("sync_manager"))
	assert.Equal(t, "cloneCounter", b.FunctionName("clone_counter"))
	assert.Equal(t, "`object`", b.FunctionName("object"))
	assert.Equal(t, "close_", b.FunctionName("close"))
	assert.Equal(t, "hashCode_", b.FunctionName("hash_code"))
	assert.Equal(t, "String_", b.TypeName("string"))
	assert.Equal(t, "RustBuffer_", b.TypeName("rust_buffer"))
	assert.Equal(t, "IN_PROGRESS", b.VariantName("InProgress"))
	assert.Equal(t, "handle_", b.ArgName("handle"))
	assert.Equal(t, "`val`", b.ArgName("val"))
	assert.Equal(t, "Demo.kt", b.FileName("demo"))
}

func TestGenerateFile(t *testing.T) {
	out, err := engine.GenerateFile(context.Background(), testutil.Demo(), New(),
		engine.WithBackendOptions(map[string]string{OptionPackage: "org.example.demo"}))
	require.NoError(t, err)
	assert.Equal(t, "Demo.kt", out.FileName)

	src := string(out.Source)
	for _, want := range []string{
		"package org.example.demo",
		"internal interface LibDemo : com.sun.jna.Library {",
		"    fun Counter_free(handle: Handle, err: RustError.ByReference)",
		"    fun Counter_new(err: RustError.ByReference): Handle",
		"    fun Math_add(a: Int, b: Int, err: RustError.ByReference): Int",
		"    fun Library_store(handle: Handle, points: RustBuffer.ByValue, flags: RustBuffer.ByValue, err: RustError.ByReference)",
		"class Counter internal constructor(handle: Handle) : AutoCloseable {",
		"rustCall { err -> LibDemo.INSTANCE.Counter_free(h, err) }",
		"fun withCapacity(capacity: UInt): Library =",
		"rustCallChecked { err -> LibDemo.INSTANCE.Library_with_capacity(capacity.toInt(), err) }",
		"object Math {",
		"data class Point(",
		"enum class Status(val value: UInt) {",
		"    ACTIVE(0u),",
		// every lift path fails on bad input
		`?: throw InternalException("invalid Status discriminant ${value.toUInt()}")`,
		`throw InternalException("${buf.remaining()} trailing bytes after lifting")`,
		`throw InternalException("buffer truncated at offset ${buf.position()}")`,
		`throw InternalException("negative string length $len")`,
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "TODO")
	assert.NotContains(t, src, "import com.sun.jna.Library")
}

func TestGenerateFileRenamesWrapperMembers(t *testing.T) {
	out, err := engine.GenerateFile(context.Background(), testutil.Component(testutil.Conn()), New())
	require.NoError(t, err)

	src := string(out.Source)
	for _, want := range []string{
		"    fun close_() {",
		"    fun lower_(): UInt {",
		"    fun read_() {",
		"    fun toString_(): String {",
	} {
		assert.Contains(t, src, want)
	}
	assert.Equal(t, 1, strings.Count(src, "override fun close()"))
	assert.Equal(t, 1, strings.Count(src, "internal fun lower(): Handle"))
}

func TestNameCollisions(t *testing.T) {
	tests := []struct {
		name      string
		members   []model.Member
		conflicts []string
	}{
		{
			name: "types differ only in case",
			members: []model.Member{
				&model.RecordType{Name: "point", Fields: []model.Field{{Name: "x", Type: model.U32{}}}},
				testutil.Point(),
			},
			conflicts: []string{"members[0] record point: type", "members[1] record Point: type"},
		},
		{
			name: "method escapes onto another method",
			members: []model.Member{&model.ObjectType{
				Name:    "Conn",
				Members: []model.ObjectMember{&model.Method{Name: "close"}, &model.Method{Name: "close_"}},
			}},
			conflicts: []string{"members[0] object Conn: method close", "members[0] object Conn: method close_"},
		},
		{
			name:      "component exception",
			members:   []model.Member{&model.RecordType{Name: "demo_exception", Fields: []model.Field{{Name: "x", Type: model.U32{}}}}},
			conflicts: []string{engine.RuntimeOrigin, "members[0] record demo_exception: type"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags, err := engine.Generate(context.Background(), testutil.Component(tt.members...), New())
			assert.Nil(t, frags)

			var ge *engine.GenerationError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, engine.ErrCodeNameCollision, ge.Code)
			assert.Equal(t, tt.conflicts, ge.Conflicts)
		})
	}
}

func TestGenerateFileDefaultPackage(t *testing.T) {
	out, err := engine.GenerateFile(context.Background(), testutil.Component(testutil.Point()), New())
	require.NoError(t, err)
	assert.Contains(t, string(out.Source), "package ffigen.demo\n")
}
