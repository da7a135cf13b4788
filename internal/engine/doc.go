// Package engine generates FFI bindings from an interface model.
//
// A run has three passes:
//
//  1. Symbol pass. Every FFI symbol is named "{Scope}_{Member}" by Symbol
//     and must be unique across the component. A collision is a
//     DUPLICATE_SYMBOL error naming both members.
//  2. Structural check. compiler.Validate rejects malformed models.
//  3. Generation. Each member is dispatched by kind to its generator,
//     which asks the backend's Contract how every type is declared,
//     lifted and lowered and renders the backend's templates.
//
// Generators never emit placeholders: a type the backend cannot express
// aborts the run with MISSING_MAPPING.
//
// Handle discipline is a property of the generated code. Constructors
// return a new handle, methods borrow it, and the wrapper calls the
// object's free symbol exactly once.
package engine
