package harness

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/rpl/application-services/internal/engine"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the path of the interface model (.cue, .json, .yaml or a
	// CUE directory). Relative paths resolve against the scenario file.
	Model string `yaml:"model"`

	// Backend is the registered backend name.
	Backend string `yaml:"backend"`

	// Workers is the generation concurrency; 0 means sequential.
	Workers int `yaml:"workers,omitempty"`

	// Options are passed to the backend's file template.
	Options map[string]string `yaml:"options,omitempty"`

	// Expect describes the generation outcome.
	Expect Expect `yaml:"expect"`

	// Assertions check the generated text.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Wire lists codec test vectors over the model's types.
	Wire []WireCase `yaml:"wire,omitempty"`
}

// Expect is the expected outcome of generation.
type Expect struct {
	// Error is the expected generation error code. Empty means
	// generation must succeed.
	Error string `yaml:"error,omitempty"`

	// Symbols is the exact expected symbol table, if set.
	Symbols []string `yaml:"symbols,omitempty"`
}

// Assertion checks one property of the generated output.
type Assertion struct {
	Type   string `yaml:"type"`
	Symbol string `yaml:"symbol,omitempty"`
	Member string `yaml:"member,omitempty"`
	Text   string `yaml:"text,omitempty"`
	Count  int    `yaml:"count,omitempty"`
}

// WireCase is a value of a model type and its expected lowered form.
type WireCase struct {
	// Type is a type expression over the model, e.g. "optional<Point>".
	Type string `yaml:"type"`

	// Value is the value in the JSON shape accepted by wire.ParseJSON.
	Value any `yaml:"value"`

	// Hex is the expected wire.Lowered.Hex rendering.
	Hex string `yaml:"hex"`

	// LiftError inverts the case: lifting Hex must fail and Value is
	// ignored.
	LiftError bool `yaml:"lift_error,omitempty"`
}

// Assertion type constants.
const (
	AssertSymbolPresent    = "symbol_present"
	AssertSymbolAbsent     = "symbol_absent"
	AssertSymbolCount      = "symbol_count"
	AssertFragmentContains = "fragment_contains"
	AssertFileContains     = "file_contains"
	AssertErrorContains    = "error_contains"
)

var errorCodes = []string{
	string(engine.ErrCodeUnresolvedType),
	string(engine.ErrCodeMissingMapping),
	string(engine.ErrCodeDuplicateSymbol),
	string(engine.ErrCodeNameCollision),
	string(engine.ErrCodeMalformedModel),
	string(engine.ErrCodeRenderFailed),
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected and the model path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario file")
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}

	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, errors.Wrapf(err, "invalid scenario %s", path)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, errors.Wrap(err, "list scenarios")
	}
	if len(paths) == 0 {
		return nil, errors.WithHint(
			errors.Newf("no scenarios in %s", dir),
			"scenario files end in .yaml",
		)
	}
	sort.Strings(paths)

	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if s.Model == "" {
		return errors.New("model is required")
	}
	if _, err := os.Stat(s.Model); os.IsNotExist(err) {
		return errors.Newf("model not found: %s", s.Model)
	}
	if s.Backend == "" {
		return errors.New("backend is required")
	}
	if s.Workers < 0 {
		return errors.New("workers must be non-negative")
	}
	if s.Expect.Error != "" {
		if !slices.Contains(errorCodes, s.Expect.Error) {
			return errors.Newf("expect.error: unknown error code %q", s.Expect.Error)
		}
		if len(s.Expect.Symbols) > 0 || len(s.Wire) > 0 {
			return errors.New("expect.error excludes expect.symbols and wire cases")
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, s.Expect.Error != ""); err != nil {
			return err
		}
	}
	for i, w := range s.Wire {
		if w.Type == "" {
			return errors.Newf("wire[%d]: type is required", i)
		}
		if w.Hex == "" {
			return errors.Newf("wire[%d]: hex is required", i)
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion, failing bool) error {
	switch a.Type {
	case "":
		return errors.Newf("assertions[%d]: type is required", index)
	case AssertSymbolPresent, AssertSymbolAbsent:
		if a.Symbol == "" {
			return errors.Newf("assertions[%d]: symbol is required for %s", index, a.Type)
		}
	case AssertSymbolCount:
		if a.Count < 0 {
			return errors.Newf("assertions[%d]: count must be non-negative", index)
		}
	case AssertFragmentContains:
		if a.Member == "" || a.Text == "" {
			return errors.Newf("assertions[%d]: member and text are required for fragment_contains", index)
		}
	case AssertFileContains, AssertErrorContains:
		if a.Text == "" {
			return errors.Newf("assertions[%d]: text is required for %s", index, a.Type)
		}
	default:
		return errors.Newf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if failing != (a.Type == AssertErrorContains) {
		if failing {
			return errors.Newf("assertions[%d]: only error_contains applies when expect.error is set", index)
		}
		return errors.Newf("assertions[%d]: error_contains requires expect.error", index)
	}
	return nil
}
