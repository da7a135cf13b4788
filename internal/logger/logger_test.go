package logger

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(0))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(1))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(2))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}

func TestNewJSONWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Verbosity: VerbosityInfo, JSON: true, Output: &buf})

	log.Infow("generated", FieldComponent, "demo", FieldSymbolCount, 3)
	require.NoError(t, log.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "generated", line["msg"])
	assert.Equal(t, "demo", line[FieldComponent])
	assert.EqualValues(t, 3, line[FieldSymbolCount])
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Verbosity: VerbosityQuiet, Output: &buf})

	log.Info("hidden")
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "WARN")
}

func TestComponentNamesLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(Options{Verbosity: VerbosityDebug, JSON: true, Output: &buf}), "engine")
	log.Debug("x")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "engine", line["logger"])

	assert.NotNil(t, Component(nil, "engine"))
}
