package harness

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sebdah/goldie/v2"
)

// GoldenPath returns the golden file of the named scenario under dir.
func GoldenPath(dir, name string) string {
	return filepath.Join(dir, name+".golden")
}

// CompareGolden reports whether the snapshot of result matches its golden
// file under dir. A missing golden file is an error.
func CompareGolden(dir string, result *Result) (bool, error) {
	want, err := os.ReadFile(GoldenPath(dir, result.Scenario))
	if err != nil {
		return false, errors.Wrapf(err, "read golden for %s", result.Scenario)
	}
	return bytes.Equal(want, result.Snapshot()), nil
}

// UpdateGolden writes the snapshot of result as its golden file under dir.
func UpdateGolden(dir string, result *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create golden directory")
	}
	if err := os.WriteFile(GoldenPath(dir, result.Scenario), result.Snapshot(), 0o644); err != nil {
		return errors.Wrapf(err, "write golden for %s", result.Scenario)
	}
	return nil
}

// Snapshot renders the comparable outcome of a scenario: the symbol table,
// one signature per line, or the error code of a failing generation.
func (r *Result) Snapshot() []byte {
	var buf strings.Builder
	buf.WriteString("# " + r.Scenario + " (" + r.Backend + ")\n")
	if r.ErrorCode != "" {
		buf.WriteString("error: " + r.ErrorCode + "\n")
		return []byte(buf.String())
	}
	for _, line := range r.Symbols {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

// RunWithGolden executes a scenario, fails t on any failed expectation and
// compares the snapshot against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	for _, e := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, e)
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the snapshot of an existing result against its
// golden file without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, result.Snapshot())
}
