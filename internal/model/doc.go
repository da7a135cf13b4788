// Package model provides the interface model consumed by the binding
// generator.
//
// This package contains type definitions only, plus the canonical
// fingerprint used to identify a model. All other internal packages import
// model; model imports nothing internal.
//
// Key design constraints:
//   - Variant sets (members, object members, type references) are sealed
//     interfaces so every switch over them can be checked for exhaustiveness
//   - Models are immutable once built; the generator only reads them
//   - Slices carry declaration order and that order is significant
//   - All JSON tags use snake_case
package model
