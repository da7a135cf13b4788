// Package logger configures the structured zap logger shared by the
// generator and the CLI.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field names used across ffigen log lines.
const (
	FieldComponent   = "component"
	FieldMember      = "member"
	FieldKind        = "kind"
	FieldBackend     = "backend"
	FieldSymbol      = "symbol"
	FieldSymbolCount = "symbols"
	FieldFingerprint = "fingerprint"
	FieldWorkers     = "workers"
	FieldRunID       = "run_id"
	FieldPath        = "path"
	FieldScenario    = "scenario"
	FieldDurationMS  = "duration_ms"
	FieldError       = "error"
	FieldErrorCode   = "error_code"
)

// Verbosity levels counted from repeated -v flags.
const (
	VerbosityQuiet = 0 // warnings and errors
	VerbosityInfo  = 1 // -v: run summaries
	VerbosityDebug = 2 // -vv: per-member progress
)

// VerbosityToLevel maps a -v count to a zap level.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Options controls New.
type Options struct {
	Verbosity int
	JSON      bool
	Output    io.Writer // defaults to os.Stderr
}

// New builds a logger. Console output is compact and meant for humans;
// JSON output is one object per line.
func New(opts Options) *zap.SugaredLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encCfg.CallerKey = ""
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), VerbosityToLevel(opts.Verbosity))
	return zap.New(core).Sugar()
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Component returns a named child logger, e.g. "engine" or "store".
func Component(parent *zap.SugaredLogger, name string) *zap.SugaredLogger {
	if parent == nil {
		parent = Nop()
	}
	return parent.Named(name)
}
