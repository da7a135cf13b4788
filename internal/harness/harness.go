package harness

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/rpl/application-services/internal/backend"
	"github.com/rpl/application-services/internal/compiler"
	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/logger"
	"github.com/rpl/application-services/internal/model"
	"github.com/rpl/application-services/internal/wire"
)

// Harness runs scenarios.
type Harness struct {
	logger *zap.SugaredLogger
}

// New creates a harness logging to l. A nil logger discards output.
func New(l *zap.SugaredLogger) *Harness {
	if l == nil {
		l = logger.Nop()
	}
	return &Harness{logger: l}
}

// Run executes scenario with a silent logger.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run loads the scenario's model, generates it with the scenario's backend
// and checks every expectation.
//
// The returned error reports a scenario that could not be executed at all
// (unreadable model, unknown backend). Failed expectations are collected
// in Result.Errors.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	b, err := backend.Lookup(scenario.Backend)
	if err != nil {
		return nil, err
	}
	c, err := compiler.LoadModel(scenario.Model)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s: load model", scenario.Name)
	}

	log := h.logger.With(logger.FieldScenario, scenario.Name, logger.FieldBackend, b.Name())
	result := NewResult(scenario.Name, b.Name())

	out, genErr := engine.GenerateFile(ctx, c, b,
		engine.WithWorkers(scenario.Workers),
		engine.WithBackendOptions(scenario.Options),
		engine.WithLogger(log),
	)

	if genErr != nil {
		result.ErrorCode = string(engine.CodeOf(genErr))
		checkFailure(result, scenario, genErr)
	} else {
		result.Symbols = out.Symbols.Lines()
		checkOutput(result, scenario, out)
		checkWire(result, c, scenario.Wire)
	}

	log.Debugw("scenario finished", "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

// RunAll runs scenarios in order and stops at the first one that cannot
// be executed.
func (h *Harness) RunAll(ctx context.Context, scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, 0, len(scenarios))
	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := h.Run(ctx, s)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

func checkFailure(result *Result, scenario *Scenario, err error) {
	want := scenario.Expect.Error
	switch {
	case want == "":
		result.AddError(fmt.Sprintf("generation failed: %v", err))
		return
	case result.ErrorCode != want:
		result.AddError(fmt.Sprintf("error code: expected %s, got %q (%v)", want, result.ErrorCode, err))
		return
	}

	for _, a := range scenario.Assertions {
		if a.Type == AssertErrorContains && !strings.Contains(err.Error(), a.Text) {
			result.AddError(fmt.Sprintf("error_contains: %q not in %q", a.Text, err.Error()))
		}
	}
}

func checkOutput(result *Result, scenario *Scenario, out *engine.Output) {
	if scenario.Expect.Error != "" {
		result.AddError(fmt.Sprintf("error code: expected %s, generation succeeded", scenario.Expect.Error))
		return
	}

	if want := scenario.Expect.Symbols; len(want) > 0 && !slices.Equal(want, result.Symbols) {
		result.AddError(symbolMismatch(want, result.Symbols))
	}

	for _, a := range scenario.Assertions {
		if err := evaluate(a, out); err != nil {
			result.AddError(err.Error())
		}
	}
}

func evaluate(a Assertion, out *engine.Output) error {
	switch a.Type {
	case AssertSymbolPresent:
		if _, ok := out.Symbols.Lookup(a.Symbol); !ok {
			return errors.Newf("symbol_present: %s not in symbol table", a.Symbol)
		}
	case AssertSymbolAbsent:
		if _, ok := out.Symbols.Lookup(a.Symbol); ok {
			return errors.Newf("symbol_absent: %s is in symbol table", a.Symbol)
		}
	case AssertSymbolCount:
		if got := len(out.Symbols.Signatures); got != a.Count {
			return errors.Newf("symbol_count: expected %d, got %d", a.Count, got)
		}
	case AssertFragmentContains:
		i := slices.IndexFunc(out.Fragments, func(f engine.Fragment) bool { return f.Member == a.Member })
		if i < 0 {
			return errors.Newf("fragment_contains: no fragment for member %s", a.Member)
		}
		if !strings.Contains(out.Fragments[i].Text(), a.Text) {
			return errors.Newf("fragment_contains: %q not in fragment %s", a.Text, a.Member)
		}
	case AssertFileContains:
		if !strings.Contains(string(out.Source), a.Text) {
			return errors.Newf("file_contains: %q not in %s", a.Text, out.FileName)
		}
	}
	return nil
}

// checkWire lowers each case's value, compares the test vector and lifts
// it back. Lift-error cases only lift.
func checkWire(result *Result, c *model.Component, cases []WireCase) {
	codec := wire.NewCodec(c)
	for i, wc := range cases {
		if err := checkWireCase(codec, c, wc); err != nil {
			result.AddError(fmt.Sprintf("wire[%d] %s: %v", i, wc.Type, err))
		}
	}
}

func checkWireCase(codec *wire.Codec, c *model.Component, wc WireCase) error {
	t, err := compiler.ParseTypeIn(c, wc.Type)
	if err != nil {
		return err
	}
	if wc.LiftError {
		lowered, err := wire.ParseHex(wc.Hex)
		if err != nil {
			return err
		}
		v, err := codec.Lift(t, lowered)
		if !wire.IsLiftError(err) {
			return errors.Newf("expected a lift error, got value %#v (err %v)", v, err)
		}
		return nil
	}
	raw, err := json.Marshal(wc.Value)
	if err != nil {
		return errors.Wrap(err, "encode value")
	}
	v, err := codec.ParseJSON(t, raw)
	if err != nil {
		return err
	}
	lowered, err := codec.Lower(t, v)
	if err != nil {
		return err
	}
	if got := lowered.Hex(); got != wc.Hex {
		return errors.Newf("expected %s, got %s", wc.Hex, got)
	}
	back, err := codec.Lift(t, lowered)
	if err != nil {
		return errors.Wrap(err, "lift")
	}
	if !reflect.DeepEqual(v, back) {
		return errors.Newf("round trip changed value: %#v != %#v", v, back)
	}
	return nil
}

func symbolMismatch(want, got []string) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "symbols: expected %d, got %d", len(want), len(got))
	for i := 0; i < max(len(want), len(got)); i++ {
		var w, g string
		if i < len(want) {
			w = want[i]
		}
		if i < len(got) {
			g = got[i]
		}
		if w != g {
			fmt.Fprintf(&buf, "\n  [%d] expected %q\n  [%d] got      %q", i, w, i, g)
		}
	}
	return buf.String()
}
