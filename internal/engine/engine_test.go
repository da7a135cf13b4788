package engine

import (
	"context"
	"testing"
	"text/template"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rpl/application-services/internal/model"
	"github.com/rpl/application-services/internal/testutil"
)

func generate(t *testing.T, c *model.Component, b Backend, opts ...Option) []Fragment {
	t.Helper()
	frags, err := Generate(context.Background(), c, b, opts...)
	require.NoError(t, err)
	return frags
}

func generationError(t *testing.T, err error) *GenerationError {
	t.Helper()
	require.Error(t, err)
	var ge *GenerationError
	require.True(t, errors.As(err, &ge), "expected *GenerationError, got %T: %v", err, err)
	return ge
}

// An object with a primary constructor and one method emits free,
// constructor and method symbols in that order.
func TestGenerate_ObjectScenario(t *testing.T) {
	frags := generate(t, testutil.Component(testutil.Counter()), newStubBackend())
	require.Len(t, frags, 1)

	f := frags[0]
	assert.Equal(t, "Counter", f.Member)
	assert.Equal(t, model.KindObject, f.Kind)
	assert.Equal(t, []string{"Counter_free", "Counter_new", "Counter_increment"}, f.SymbolNames())

	assert.Equal(t, "Counter_free(handle: handle)\n"+
		"Counter_new() -> handle\n"+
		"Counter_increment(handle: handle) -> u64\n", f.Declarations)
	assert.Equal(t, "class Counter frees Counter_free\n"+
		"  ctor new primary\n"+
		"  method increment = lift_u64(ret)\n", f.Definitions)
}

func TestGenerate_ObjectWithoutConstructorsStillFrees(t *testing.T) {
	obj := &model.ObjectType{
		Name:    "Session",
		Members: []model.ObjectMember{&model.Method{Name: "close_all"}},
	}
	frags := generate(t, testutil.Component(obj), newStubBackend())
	require.Len(t, frags, 1)
	assert.Equal(t, []string{"Session_free", "Session_close_all"}, frags[0].SymbolNames())
	assert.Equal(t, "Session_free(handle: handle)\nSession_close_all(handle: handle)\n", frags[0].Declarations)
}

// A namespace function lowers its arguments and lifts its result.
func TestGenerate_NamespaceScenario(t *testing.T) {
	frags := generate(t, testutil.Component(testutil.Math()), newStubBackend())
	require.Len(t, frags, 1)

	f := frags[0]
	assert.Equal(t, model.KindNamespace, f.Kind)
	assert.Equal(t, "Math_add(a: u32, b: u32) -> u32\n", f.Declarations)
	assert.Equal(t, "fn add(lower_u32(a), lower_u32(b)) = lift_u32(ret)\n", f.Definitions)
	require.Len(t, f.Symbols, 1)
	assert.Equal(t, "Math_add(a: u32, b: u32, err: &error) -> u32", f.Symbols[0].String())
}

func TestGenerate_RecordComposesFields(t *testing.T) {
	frags := generate(t, testutil.Component(testutil.Point()), newStubBackend())
	require.Len(t, frags, 1)

	f := frags[0]
	assert.Equal(t, model.KindRecord, f.Kind)
	assert.Empty(t, f.Symbols)
	assert.Empty(t, f.Declarations)
	assert.Equal(t, "record Point\n"+
		"  x: u32 = read_u32(buf); write_u32(value.x, buf)\n"+
		"  y: u32 = read_u32(buf); write_u32(value.y, buf)\n"+
		"  lift = lift_Point(value)\n"+
		"  lower = lower_Point(value)\n", f.Definitions)
}

func TestGenerate_EnumMirrorsDiscriminants(t *testing.T) {
	frags := generate(t, testutil.Component(testutil.Status()), newStubBackend())
	require.Len(t, frags, 1)
	assert.Equal(t, model.KindEnum, frags[0].Kind)
	assert.Empty(t, frags[0].Symbols)
	assert.Equal(t, "enum Status Active=0 Inactive=1\n", frags[0].Definitions)
}

func TestGenerate_FragmentsFollowDeclarationOrder(t *testing.T) {
	frags := generate(t, testutil.Demo(), newStubBackend())

	var names []string
	for _, f := range frags {
		names = append(names, f.Member)
	}
	assert.Equal(t, []string{"Counter", "Math", "Status", "Point", "Library"}, names)
}

func TestGenerate_Deterministic(t *testing.T) {
	first := generate(t, testutil.Demo(), newStubBackend())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, generate(t, testutil.Demo(), newStubBackend()))
	}
}

func TestGenerate_WorkersDoNotChangeOutput(t *testing.T) {
	sequential := generate(t, testutil.Demo(), newStubBackend())
	for _, n := range []int{2, 4, 16} {
		assert.Equal(t, sequential, generate(t, testutil.Demo(), newStubBackend(), WithWorkers(n)), "workers=%d", n)
	}
}

// Two objects named Widget collide on every symbol; the first collision
// is reported before any fragment exists.
func TestGenerate_DuplicateSymbolScenario(t *testing.T) {
	frags, err := Generate(context.Background(), testutil.DuplicateWidgets(), newStubBackend())
	assert.Nil(t, frags)

	ge := generationError(t, err)
	assert.True(t, IsDuplicateSymbol(err))
	assert.Equal(t, []string{
		"members[0] object Widget: free",
		"members[1] object Widget: free",
	}, ge.Conflicts)
	assert.Contains(t, ge.Error(), `"Widget_free"`)
}

func TestGenerate_DuplicateSymbolAcrossScopes(t *testing.T) {
	ns := &model.NamespaceType{
		Name:      "Foo",
		Functions: []model.Function{{Name: "bar_baz"}},
	}
	obj := &model.ObjectType{
		Name:    "Foo_bar",
		Members: []model.ObjectMember{&model.Method{Name: "baz"}},
	}

	_, err := Generate(context.Background(), testutil.Component(ns, obj), newStubBackend())
	ge := generationError(t, err)
	assert.Equal(t, ErrCodeDuplicateSymbol, ge.Code)
	assert.Equal(t, []string{
		"members[0] namespace Foo: function bar_baz",
		"members[1] object Foo_bar: method baz",
	}, ge.Conflicts)
}

func TestGenerate_MissingMapping(t *testing.T) {
	_, err := Generate(context.Background(), testutil.Component(testutil.Counter()), newStubBackend("u64"))

	ge := generationError(t, err)
	assert.True(t, IsMissingMapping(err))
	assert.Equal(t, "Counter", ge.Member)
	assert.Equal(t, "members[1].returns", ge.Path)
	assert.Equal(t, "u64", ge.Type)
	assert.True(t, errors.Is(err, ErrNoMapping))
}

func TestGenerate_MissingMappingForHandle(t *testing.T) {
	_, err := Generate(context.Background(), testutil.Component(testutil.Counter()), newStubBackend("Counter"))
	ge := generationError(t, err)
	assert.Equal(t, ErrCodeMissingMapping, ge.Code)
	assert.Equal(t, "handle", ge.Path)
}

func TestGenerate_UnresolvedType(t *testing.T) {
	obj := &model.ObjectType{
		Name: "Counter",
		Members: []model.ObjectMember{
			&model.Method{Name: "snapshot", Return: model.RecordRef{Name: "Ghost"}},
		},
	}
	_, err := Generate(context.Background(), testutil.Component(obj), newStubBackend())

	ge := generationError(t, err)
	assert.True(t, IsUnresolvedType(err))
	assert.Equal(t, "members[0].members[0].returns", ge.Path)
}

func TestGenerate_MalformedModel(t *testing.T) {
	empty := &model.EnumType{Name: "Nothing"}
	_, err := Generate(context.Background(), testutil.Component(empty), newStubBackend())
	assert.True(t, IsMalformedModel(err))

	_, err = Generate(context.Background(), nil, newStubBackend())
	assert.True(t, IsMalformedModel(err))

	_, err = Generate(context.Background(), testutil.Demo(), nil)
	assert.True(t, IsMalformedModel(err))
}

func TestGenerate_RenderFailure(t *testing.T) {
	_, err := Generate(context.Background(), testutil.Component(testutil.Counter()), newBrokenBackend("object_definitions"))

	ge := generationError(t, err)
	assert.Equal(t, ErrCodeRenderFailed, ge.Code)
	assert.Equal(t, "Counter", ge.Member)
	assert.Error(t, ge.Err)
}

func TestGenerate_MissingTemplate(t *testing.T) {
	b := newStubBackend()
	b.tmpl = template.New("empty")

	_, err := Generate(context.Background(), testutil.Component(testutil.Status()), b)
	ge := generationError(t, err)
	assert.Equal(t, ErrCodeRenderFailed, ge.Code)
	assert.Contains(t, ge.Message, `"enum_definitions"`)
}

func TestGenerate_ConcurrentReportsEarliestFailure(t *testing.T) {
	_, err := Generate(context.Background(), testutil.Demo(), newStubBackend("u32"), WithWorkers(4))
	ge := generationError(t, err)
	assert.Equal(t, ErrCodeMissingMapping, ge.Code)
	// Counter does not use u32; Math is the first member that does.
	assert.Equal(t, "Math", ge.Member)
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, testutil.Demo(), newStubBackend())
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Generate(ctx, testutil.Demo(), newStubBackend(), WithWorkers(3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ReturnsSymbolsAndFingerprint(t *testing.T) {
	c := testutil.Component(testutil.Counter())
	res, err := Run(context.Background(), c, newStubBackend())
	require.NoError(t, err)

	assert.Equal(t, "demo", res.Component)
	assert.Equal(t, "stub", res.Backend)
	assert.Equal(t, model.MustFingerprint(c), res.Fingerprint)
	assert.Equal(t, []string{
		"Counter_free(handle: handle<Counter>, err: &error)",
		"Counter_new(err: &error) -> handle<Counter>",
		"Counter_increment(handle: handle<Counter>, err: &error) -> u64",
	}, res.Symbols.Lines())
}

func TestRun_LogsSummary(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core).Sugar()

	_, err := Run(context.Background(), testutil.Demo(), newStubBackend(), WithLogger(log))
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("generated bindings").Len())
	assert.Equal(t, 5, logs.FilterMessage("member generated").Len())

	entry := logs.FilterMessage("generated bindings").All()[0]
	assert.Equal(t, "demo", entry.ContextMap()["component"])
	assert.Equal(t, "stub", entry.ContextMap()["backend"])
}

func TestGenerateFile(t *testing.T) {
	c := testutil.Component(testutil.Counter(), testutil.Point())
	out, err := GenerateFile(context.Background(), c, newStubBackend(),
		WithBackendOptions(map[string]string{"lib": "libdemo"}))
	require.NoError(t, err)

	assert.Equal(t, "demo.stub", out.FileName)
	want := "// demo " + out.Fingerprint + " lib=libdemo\n" +
		out.Fragments[0].Declarations +
		out.Fragments[0].Definitions +
		out.Fragments[1].Definitions +
		"objects: Counter\n"
	assert.Equal(t, want, string(out.Source))
}

func TestGenerateFile_DefaultOption(t *testing.T) {
	out, err := GenerateFile(context.Background(), testutil.Component(testutil.Status()), newStubBackend())
	require.NoError(t, err)
	assert.Contains(t, string(out.Source), "lib=none")
	assert.Contains(t, string(out.Source), "objects:\n")
}

func TestFragmentText(t *testing.T) {
	assert.Equal(t, "d\n\nx", Fragment{Declarations: "d\n", Definitions: "x"}.Text())
	assert.Equal(t, "x", Fragment{Definitions: "x"}.Text())
	assert.Equal(t, "d", Fragment{Declarations: "d"}.Text())
}
