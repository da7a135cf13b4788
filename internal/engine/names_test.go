package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpl/application-services/internal/model"
	"github.com/rpl/application-services/internal/testutil"
)

// casedBackend capitalizes type names and lower-cases functions and
// arguments, so distinct model names can meet.
type casedBackend struct {
	*stubBackend
}

func (b casedBackend) TypeName(name string) string     { return strings.ToUpper(name[:1]) + name[1:] }
func (b casedBackend) FunctionName(name string) string { return strings.ToLower(name) }
func (b casedBackend) ArgName(name string) string      { return strings.ToLower(name) }

// scopedBackend declares a runtime type and one package-level maker per
// object, the way a backend without nested scopes would.
type scopedBackend struct {
	casedBackend
}

func (b scopedBackend) RuntimeNames(component string) []string {
	return []string{"Runtime", strings.ToUpper(component[:1]) + component[1:] + "Error"}
}

func (b scopedBackend) ScopedNames(index int, m model.Member) []ScopedName {
	if _, ok := m.(*model.ObjectType); !ok {
		return nil
	}
	return []ScopedName{{
		Scope:  FileScope,
		Name:   "Make" + b.TypeName(m.MemberName()),
		Origin: MemberOrigin(index, m, "maker"),
	}}
}

func record(name string) *model.RecordType {
	return &model.RecordType{Name: name, Fields: []model.Field{{Name: "x", Type: model.U32{}}}}
}

func TestNativeNames_Object(t *testing.T) {
	names := NativeNames(newStubBackend(), 2, testutil.Library())

	var got []string
	for _, n := range names {
		got = append(got, n.Scope+"|"+n.Name)
	}
	assert.Equal(t, []string{
		"|Library",
		"Library.<init>|name",
		"Library|with_capacity",
		"Library.with_capacity|capacity",
		"Library|lookup",
		"Library.lookup|key",
		"Library|store",
		"Library.store|points",
		"Library.store|flags",
		"Library|status",
		"Library|clone_counter",
	}, got)
	assert.Equal(t, "members[2] object Library: method store arg flags", names[8].Origin)
}

func TestGenerate_TypeNamesCollideAfterCasing(t *testing.T) {
	frags, err := Generate(context.Background(), testutil.Component(record("point"), record("Point")), casedBackend{newStubBackend()})
	assert.Nil(t, frags)

	ge := generationError(t, err)
	assert.True(t, IsNameCollision(err))
	assert.Equal(t, []string{"members[0] record point: type", "members[1] record Point: type"}, ge.Conflicts)
	assert.Contains(t, ge.Error(), `native name "Point"`)
}

func TestGenerate_MethodNamesCollideAfterCasing(t *testing.T) {
	obj := &model.ObjectType{
		Name: "Conn",
		Members: []model.ObjectMember{
			&model.Method{Name: "Reset"},
			&model.Method{Name: "reset"},
		},
	}
	_, err := Generate(context.Background(), testutil.Component(obj), casedBackend{newStubBackend()})

	ge := generationError(t, err)
	assert.Equal(t, ErrCodeNameCollision, ge.Code)
	assert.Equal(t, []string{"members[0] object Conn: method Reset", "members[0] object Conn: method reset"}, ge.Conflicts)
}

func TestGenerate_ArgumentNamesCollideAfterCasing(t *testing.T) {
	ns := &model.NamespaceType{
		Name: "Math",
		Functions: []model.Function{{
			Name: "clamp",
			Args: []model.Argument{{Name: "Max", Type: model.U32{}}, {Name: "max", Type: model.U32{}}},
		}},
	}
	_, err := Generate(context.Background(), testutil.Component(ns), casedBackend{newStubBackend()})

	ge := generationError(t, err)
	assert.Equal(t, ErrCodeNameCollision, ge.Code)
	assert.Equal(t, "members[0] namespace Math: function clamp arg max", ge.Member)
}

func TestGenerate_SameNameInDifferentScopesIsFine(t *testing.T) {
	a := &model.ObjectType{Name: "A", Members: []model.ObjectMember{&model.Method{Name: "get"}}}
	b := &model.ObjectType{Name: "B", Members: []model.ObjectMember{&model.Method{Name: "get"}}}
	frags := generate(t, testutil.Component(a, b), casedBackend{newStubBackend()})
	assert.Len(t, frags, 2)
}

func TestGenerate_MemberCollidesWithRuntimeName(t *testing.T) {
	tests := []struct {
		name   string
		member string
		native string
	}{
		{"static", "runtime", "Runtime"},
		{"component dependent", "demoError", "DemoError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(context.Background(), testutil.Component(record(tt.member)), scopedBackend{casedBackend{newStubBackend()}})

			ge := generationError(t, err)
			assert.Equal(t, ErrCodeNameCollision, ge.Code)
			assert.Equal(t, []string{RuntimeOrigin, "members[0] record " + tt.member + ": type"}, ge.Conflicts)
			assert.Contains(t, ge.Error(), tt.native)
		})
	}
}

func TestGenerate_ScopedNameCollidesWithType(t *testing.T) {
	obj := &model.ObjectType{Name: "Widget", Members: []model.ObjectMember{&model.Constructor{Name: "new"}}}
	_, err := Generate(context.Background(), testutil.Component(obj, record("MakeWidget")), scopedBackend{casedBackend{newStubBackend()}})

	ge := generationError(t, err)
	assert.Equal(t, ErrCodeNameCollision, ge.Code)
	assert.Equal(t, []string{"members[0] object Widget: maker", "members[1] record MakeWidget: type"}, ge.Conflicts)
}

func TestCheckNativeNames_Demo(t *testing.T) {
	require.NoError(t, CheckNativeNames(testutil.Demo(), scopedBackend{casedBackend{newStubBackend()}}))
}
