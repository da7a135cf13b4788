package model

// Version constants for the model schema and the generator.
const (
	// ModelVersion is the interface model schema version.
	ModelVersion = "1"

	// GeneratorVersion is stamped into generated files and ledger runs.
	GeneratorVersion = "0.3.0"
)
