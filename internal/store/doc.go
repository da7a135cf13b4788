// Package store is the generation ledger: a SQLite record of every
// generation run and the FFI symbols it produced.
//
// Each run stores its component, backend, model fingerprint and the
// backend-neutral signature of every symbol. Comparing the latest run with
// the previous one for the same component and backend yields an ABI diff:
// symbols removed, changed or added since the last generation.
//
// Runs are ordered by seq, a logical counter assigned on insert, so
// listings do not depend on wall time. Run IDs are UUIDv7.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: symbols are deleted with their run
package store
