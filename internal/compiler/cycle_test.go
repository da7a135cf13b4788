package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpl/application-services/internal/model"
)

func records(recs ...*model.RecordType) *model.Component {
	c := &model.Component{Name: "Demo"}
	for _, r := range recs {
		c.Members = append(c.Members, r)
	}
	return c
}

func field(name string, t model.TypeRef) model.Field {
	return model.Field{Name: name, Type: t}
}

// TestRecordCycles_Empty tests that a component without records has no cycles.
func TestRecordCycles_Empty(t *testing.T) {
	assert.Empty(t, RecordCycles(&model.Component{Name: "Demo"}))
}

// TestRecordCycles_DAG tests that shared but acyclic containment is allowed.
func TestRecordCycles_DAG(t *testing.T) {
	c := records(
		&model.RecordType{Name: "Line", Fields: []model.Field{
			field("from", model.RecordRef{Name: "Point"}),
			field("to", model.RecordRef{Name: "Point"}),
		}},
		&model.RecordType{Name: "Point", Fields: []model.Field{field("x", model.U32{})}},
	)
	assert.Empty(t, RecordCycles(c))
}

// TestRecordCycles_SelfLoop tests a record that contains itself.
func TestRecordCycles_SelfLoop(t *testing.T) {
	c := records(
		&model.RecordType{Name: "Node", Fields: []model.Field{
			field("next", model.Optional{Inner: model.RecordRef{Name: "Node"}}),
		}},
	)

	cycles := RecordCycles(c)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"Node", "Node"}, cycles[0])
}

// TestRecordCycles_ThroughCollections tests cycles through sequences and maps.
func TestRecordCycles_ThroughCollections(t *testing.T) {
	c := records(
		&model.RecordType{Name: "Tree", Fields: []model.Field{
			field("children", model.Sequence{Elem: model.RecordRef{Name: "Branch"}}),
		}},
		&model.RecordType{Name: "Branch", Fields: []model.Field{
			field("leaves", model.Map{Key: model.String{}, Value: model.RecordRef{Name: "Tree"}}),
		}},
	)

	cycles := RecordCycles(c)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"Tree", "Branch", "Tree"}, cycles[0])
}

// TestRecordCycles_Deterministic tests that path order follows declaration order.
func TestRecordCycles_Deterministic(t *testing.T) {
	build := func() *model.Component {
		return records(
			&model.RecordType{Name: "A", Fields: []model.Field{field("b", model.RecordRef{Name: "B"})}},
			&model.RecordType{Name: "B", Fields: []model.Field{field("c", model.RecordRef{Name: "C"})}},
			&model.RecordType{Name: "C", Fields: []model.Field{field("a", model.RecordRef{Name: "A"})}},
			&model.RecordType{Name: "D", Fields: []model.Field{field("d", model.RecordRef{Name: "D"})}},
		)
	}

	first := RecordCycles(build())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RecordCycles(build()))
	}
	require.Len(t, first, 2)
	assert.Equal(t, []string{"A", "B", "C", "A"}, first[0])
	assert.Equal(t, []string{"D", "D"}, first[1])
}

// TestRecordCycles_UnresolvedIgnored tests that dangling references do not panic.
func TestRecordCycles_UnresolvedIgnored(t *testing.T) {
	c := records(
		&model.RecordType{Name: "A", Fields: []model.Field{field("m", model.RecordRef{Name: "Missing"})}},
	)
	assert.Empty(t, RecordCycles(c))
}

func TestValidateReportsRecordCycle(t *testing.T) {
	c := records(
		&model.RecordType{Name: "Node", Fields: []model.Field{
			field("next", model.Optional{Inner: model.RecordRef{Name: "Node"}}),
		}},
	)

	errs := Validate(c)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrRecordCycle, errs[0].Code)
	assert.Contains(t, errs[0].Message, "Node -> Node")
}
