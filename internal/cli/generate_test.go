package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mathV2 = `component: demo
members:
  - namespace: Math
    functions:
      - name: add
        args:
          - {name: a, type: u64}
          - {name: b, type: u64}
        returns: u64
      - name: sub
        args:
          - {name: a, type: u32}
          - {name: b, type: u32}
        returns: u32
`

func TestGenerateWritesFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out", "Demo.kt")

	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("math.yaml"), "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Generated demo (kotlin) -> "+target)
	assert.Contains(t, out, "1 symbol(s), 1 fragment(s)")

	src, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(src), "fun Math_add(a: Int, b: Int, err: RustError.ByReference): Int")
}

func TestGenerateDefaultFileName(t *testing.T) {
	dir := t.TempDir()
	opts := &RootOptions{Format: "json"}
	cfg := opts.config()
	cfg.Generate.OutDir = dir
	opts.Config = cfg

	cmd := NewGenerateCommand(opts)
	out, err := execute(t, cmd, testModel("counter.yaml"), "--backend", "python")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   GenerateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, filepath.Join(dir, "demo.py"), resp.Data.Output)
	assert.Equal(t, "python", resp.Data.Backend)
	assert.Equal(t, 3, resp.Data.Symbols)
	assert.Empty(t, resp.Data.RunID)
	assert.FileExists(t, resp.Data.Output)
}

func TestGenerateStdout(t *testing.T) {
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("counter.yaml"), "-b", "go", "-o", "-", "--option", "package=counterffi")
	require.NoError(t, err)
	assert.Contains(t, out, "package counterffi")
	assert.NotContains(t, out, "✓ Generated")
}

func TestGenerateBadOption(t *testing.T) {
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("math.yaml"), "-o", "-", "--option", "package")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E013]")
	assert.Contains(t, out, "hint: use key=value")
}

func TestGenerateUnknownBackend(t *testing.T) {
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("math.yaml"), "-b", "cobol")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E012]")
	assert.Contains(t, out, `"cobol"`)
}

func TestGenerateDuplicateSymbol(t *testing.T) {
	target := filepath.Join(t.TempDir(), "Demo.kt")

	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("collision.yaml"), "-o", target, "--workers", "4")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [DUPLICATE_SYMBOL]")
	assert.NoFileExists(t, target)
}

func TestGenerateLedgerDiff(t *testing.T) {
	dir := t.TempDir()
	ledger := filepath.Join(dir, "ffigen.db")
	v2 := filepath.Join(dir, "math_v2.yaml")
	writeFile(t, v2, mathV2)

	first := NewGenerateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, first, testModel("math.yaml"), "-o", filepath.Join(dir, "v1", "Demo.kt"), "--ledger", ledger)
	require.NoError(t, err)
	assert.Contains(t, out, "  run: ")
	assert.Contains(t, out, "  first recorded run")

	second := NewGenerateCommand(&RootOptions{Format: "text"})
	out, err = execute(t, second, v2, "-o", filepath.Join(dir, "v2", "Demo.kt"), "--ledger", ledger)
	require.NoError(t, err)
	assert.Contains(t, out, "⚠ ABI break since previous run:")
	assert.Contains(t, out, "    ~ Math_add(a: u64, b: u64, err: &error) -> u64")
	assert.Contains(t, out, "        was Math_add(a: u32, b: u32, err: &error) -> u32")
	assert.Contains(t, out, "    + Math_sub(a: u32, b: u32, err: &error) -> u32")

	third := NewGenerateCommand(&RootOptions{Format: "json"})
	out, err = execute(t, third, v2, "-o", filepath.Join(dir, "v3", "Demo.kt"), "--ledger", ledger)
	require.NoError(t, err)

	var resp struct {
		Data GenerateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Data.Diff)
	assert.True(t, resp.Data.Diff.Empty())
	assert.NotEmpty(t, resp.Data.RunID)
}
