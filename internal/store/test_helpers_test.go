package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
	"github.com/rpl/application-services/internal/testutil"
)

// createTestStore creates a ledger in a temp dir with sequential run IDs
// and a clock advancing one second per run.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	ids := testutil.NewSequenceIDs("run")
	clock := testutil.NewStepClock(time.Second)
	s, err := Open(path, WithIDGenerator(ids.Generate), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// generate builds the result a kotlin run over c would record.
func generate(t *testing.T, c *model.Component) *engine.Result {
	t.Helper()
	table, err := engine.BuildSymbolTable(c)
	if err != nil {
		t.Fatalf("BuildSymbolTable() failed: %v", err)
	}
	fp, err := model.Fingerprint(c)
	if err != nil {
		t.Fatalf("Fingerprint() failed: %v", err)
	}
	return &engine.Result{
		Component:   c.Name,
		Backend:     "kotlin",
		Fingerprint: fp,
		Symbols:     table,
	}
}

func record(t *testing.T, s *Store, c *model.Component) Run {
	t.Helper()
	run, err := s.RecordRun(context.Background(), generate(t, c), "out/Demo.kt")
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	return run
}
