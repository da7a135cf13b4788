// Package harness runs conformance scenarios against the binding generator.
//
// A scenario names an interface model, a backend and what generation must
// produce: the exact symbol table, text inside fragments or the assembled
// file, a generation error code, and wire test vectors.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	model: models/counter.yaml      # relative to the scenario file
//	backend: kotlin
//	workers: 4                      # optional, default 1
//	options:                        # optional backend options
//	  package: com.example.demo
//	expect:
//	  error: DUPLICATE_SYMBOL       # generation must fail with this code
//	  symbols:                      # exact symbol table, in order
//	    - "Counter_free(handle: handle<Counter>, err: &error)"
//	assertions:
//	  - type: fragment_contains
//	    member: Counter
//	    text: "fun increment(): ULong"
//	wire:
//	  - type: "sequence<u32>"
//	    value: [1, 2]
//	    hex: "buffer:000000020000000100000002"
//
// # Assertion Types
//
//   - symbol_present: the symbol table contains symbol
//   - symbol_absent: the symbol table does not contain symbol
//   - symbol_count: the table holds exactly count symbols
//   - fragment_contains: the fragment of member contains text
//   - file_contains: the assembled file contains text
//   - error_contains: the generation error message contains text
//
// # Golden Files
//
// RunWithGolden compares the symbol table (or the error code of a failing
// scenario) against testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
