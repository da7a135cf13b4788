package harness

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Backend is the backend the scenario ran against.
	Backend string `json:"backend"`

	// Symbols is the generated symbol table, one signature per line.
	// Empty when generation failed.
	Symbols []string `json:"symbols,omitempty"`

	// ErrorCode is the generation error code, if generation failed.
	ErrorCode string `json:"error_code,omitempty"`

	// Errors contains failed expectation messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario, backend string) *Result {
	return &Result{
		Pass:     true,
		Scenario: scenario,
		Backend:  backend,
		Errors:   []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
