package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpl/application-services/internal/config"
)

func TestSymbolsText(t *testing.T) {
	cmd := NewSymbolsCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("counter.yaml"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"Counter_free(handle: handle<Counter>, err: &error)",
		"Counter_new(err: &error) -> handle<Counter>",
		"Counter_increment(handle: handle<Counter>, err: &error) -> u64",
	}, lines)
}

func TestSymbolsMarksThrows(t *testing.T) {
	cmd := NewSymbolsCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("library.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Library_with_capacity(capacity: u32, err: &error) -> handle<Library>  [throws]")
}

func TestSymbolsJSON(t *testing.T) {
	cmd := NewSymbolsCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, testModel("math.yaml"))
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Component string `json:"component"`
			Symbols   []struct {
				Symbol string `json:"symbol"`
			} `json:"symbols"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "demo", resp.Data.Component)
	require.Len(t, resp.Data.Symbols, 1)
	assert.Equal(t, "Math_add", resp.Data.Symbols[0].Symbol)
}

func TestBackends(t *testing.T) {
	cmd := NewBackendsCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "  go       .go   e.g. demo_ffi.go", lines[0])
	assert.Equal(t, "* kotlin   .kt   e.g. Demo.kt", lines[1])
	assert.Equal(t, "  python   .py   e.g. demo.py", lines[2])
}

func TestBackendsJSON(t *testing.T) {
	cmd := NewBackendsCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd)
	require.NoError(t, err)

	var resp struct {
		Data []BackendInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "kotlin", resp.Data[1].Name)
	assert.True(t, resp.Data[1].Default)
}

func TestHistoryMissingLedger(t *testing.T) {
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--ledger", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "ledger not found")
	assert.Contains(t, out, "hint: record runs with")
}

func TestHistoryListsRuns(t *testing.T) {
	dir := t.TempDir()
	ledger := filepath.Join(dir, "ffigen.db")
	v2 := filepath.Join(dir, "math_v2.yaml")
	writeFile(t, v2, mathV2)

	for i, model := range []string{testModel("math.yaml"), v2} {
		gen := NewGenerateCommand(&RootOptions{Format: "text"})
		_, err := execute(t, gen, model, "-o", filepath.Join(dir, string(rune('a'+i)), "Demo.kt"), "--ledger", ledger)
		require.NoError(t, err)
	}

	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "demo", "--ledger", ledger, "--diff")
	require.NoError(t, err)
	assert.Contains(t, out, "#2 ")
	assert.Contains(t, out, "#1 ")
	assert.Less(t, strings.Index(out, "#2 "), strings.Index(out, "#1 "))
	assert.Contains(t, out, "demo/kotlin")
	assert.Contains(t, out, "    + Math_sub(a: u32, b: u32, err: &error) -> u32")

	limited := NewHistoryCommand(&RootOptions{Format: "json"})
	out, err = execute(t, limited, "--ledger", ledger, "-n", "1")
	require.NoError(t, err)

	var resp struct {
		Data []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(2), resp.Data[0].Seq)
	assert.Nil(t, resp.Data[0].Diff)
}

func TestHistoryUnknownComponent(t *testing.T) {
	dir := t.TempDir()
	ledger := filepath.Join(dir, "ffigen.db")
	gen := NewGenerateCommand(&RootOptions{Format: "text"})
	_, err := execute(t, gen, testModel("math.yaml"), "-o", filepath.Join(dir, "Demo.kt"), "--ledger", ledger)
	require.NoError(t, err)

	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "other", "--ledger", ledger)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestWireLower(t *testing.T) {
	cmd := NewWireCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("math.yaml"), "u32", "7")
	require.NoError(t, err)
	assert.Equal(t, "uint32:00000007  u32 = 7\n", out)
}

func TestWireLowerJSON(t *testing.T) {
	cmd := NewWireCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, testModel("status.yaml"), "Status", `"Failed"`)
	require.NoError(t, err)

	var resp struct {
		Data WireResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Status", resp.Data.Type)
	assert.Equal(t, "uint32:00000001", resp.Data.Hex)
}

func TestWireLift(t *testing.T) {
	cmd := NewWireCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("math.yaml"), "u32", "--lift", "uint32:00000007")
	require.NoError(t, err)
	assert.Equal(t, "uint32:00000007  u32 = 7\n", out)
}

func TestWireLiftFails(t *testing.T) {
	cmd := NewWireCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, testModel("status.yaml"), "Status", "--lift", "uint32:00000002")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E014]")
}

func TestWireBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown type", []string{testModel("math.yaml"), "Point", "{}"}},
		{"missing value", []string{testModel("math.yaml"), "u32"}},
		{"value and lift", []string{testModel("math.yaml"), "u32", "7", "--lift", "uint32:00000007"}},
		{"bad vector", []string{testModel("math.yaml"), "u32", "--lift", "00000007"}},
		{"bad json", []string{testModel("math.yaml"), "u32", `"seven"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewWireCommand(&RootOptions{Format: "text"})
			out, err := execute(t, cmd, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error [E013]")
		})
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	cmd := NewInitCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "✓ Wrote "+path+"\n", out)

	cfg, err := config.Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, "kotlin", cfg.Generate.Backend)

	again := NewInitCommand(&RootOptions{Format: "text"})
	out, err = execute(t, again, "--dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "hint: pass --force to overwrite it")

	writeFile(t, path, "broken")
	forced := NewInitCommand(&RootOptions{Format: "text"})
	_, err = execute(t, forced, "--dir", dir, "--force")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[generate]")
}
