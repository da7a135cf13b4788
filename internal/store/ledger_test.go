package store

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpl/application-services/internal/model"
	"github.com/rpl/application-services/internal/testutil"
)

func TestRecordRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := record(t, s, testutil.Demo())
	assert.Equal(t, "run-0001", run.ID)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, "demo", run.Component)
	assert.Equal(t, "kotlin", run.Backend)
	assert.Equal(t, model.GeneratorVersion, run.GeneratorVersion)
	assert.Equal(t, testutil.Epoch, run.CreatedAt)

	latest, err := s.LatestRun(ctx, "demo", "kotlin")
	require.NoError(t, err)
	assert.Equal(t, run, latest)
	require.Len(t, latest.Symbols, 11)
	assert.Equal(t, "Counter_free", latest.Symbols[0].Symbol)
	assert.Equal(t, "Library_clone_counter", latest.Symbols[10].Symbol)
}

func TestRecordRunRejectsEmptyResult(t *testing.T) {
	s := createTestStore(t)
	_, err := s.RecordRun(context.Background(), nil, "")
	require.Error(t, err)
}

func TestLatestRunNone(t *testing.T) {
	s := createTestStore(t)
	_, err := s.LatestRun(context.Background(), "demo", "kotlin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRun))
}

func TestPreviousRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := record(t, s, testutil.Component(testutil.Counter()))
	other := testutil.Component(testutil.Math())
	other.Name = "other"
	record(t, s, other)
	third := record(t, s, testutil.Component(testutil.Counter(), testutil.Math()))

	prev, err := s.PreviousRun(ctx, third)
	require.NoError(t, err)
	assert.Equal(t, first.ID, prev.ID)

	_, err = s.PreviousRun(ctx, first)
	assert.True(t, errors.Is(err, ErrNoRun))
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	record(t, s, testutil.Component(testutil.Counter()))
	other := testutil.Component(testutil.Math())
	other.Name = "other"
	record(t, s, other)
	record(t, s, testutil.Component(testutil.Math()))

	all, err := s.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"run-0003", "run-0002", "run-0001"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Nil(t, all[0].Symbols)

	demo, err := s.ListRuns(ctx, "demo", 1)
	require.NoError(t, err)
	require.Len(t, demo, 1)
	assert.Equal(t, "run-0003", demo[0].ID)

	none, err := s.ListRuns(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRunSymbolsDeletedWithRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := record(t, s, testutil.Component(testutil.Counter()))
	_, err := s.db.Exec("DELETE FROM runs WHERE id = ?", run.ID)
	require.NoError(t, err)

	sigs, err := s.RunSymbols(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestDefaultRunIDsAreUUIDv7(t *testing.T) {
	id, err := uuid.Parse(NewRunID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
