package engine

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// GenerationError represents a fatal error of one generation run.
//
// Generation errors include:
//   - Unresolved type: a named reference points at no member of that kind
//   - Missing mapping: the backend cannot express a reachable type
//   - Duplicate symbol: two members produce the same FFI symbol
//   - Name collision: two declarations share a native name in one scope
//   - Malformed model: the component breaks a structural rule
//   - Render failure: a backend template failed
//
// A run that returns a GenerationError produced no fragments.
type GenerationError struct {
	// Code identifies the error category.
	Code GenerationErrorCode

	// Message is a human-readable description.
	Message string

	// Component is the component being generated.
	Component string

	// Member is the member being generated, if any.
	Member string

	// Path locates the failing element inside the member, e.g.
	// "methods[1].args[0]".
	Path string

	// Type is the offending type expression, if any.
	Type string

	// Conflicts names both origins for DUPLICATE_SYMBOL and NAME_COLLISION
	// errors.
	Conflicts []string

	// Err is the underlying cause.
	Err error
}

// GenerationErrorCode categorizes generation errors.
type GenerationErrorCode string

const (
	// ErrCodeUnresolvedType indicates a reference to a missing member.
	ErrCodeUnresolvedType GenerationErrorCode = "UNRESOLVED_TYPE"

	// ErrCodeMissingMapping indicates a type the backend cannot express.
	ErrCodeMissingMapping GenerationErrorCode = "MISSING_MAPPING"

	// ErrCodeDuplicateSymbol indicates two members produce one FFI symbol.
	ErrCodeDuplicateSymbol GenerationErrorCode = "DUPLICATE_SYMBOL"

	// ErrCodeNameCollision indicates two declarations share a native name.
	ErrCodeNameCollision GenerationErrorCode = "NAME_COLLISION"

	// ErrCodeMalformedModel indicates a structural model violation.
	ErrCodeMalformedModel GenerationErrorCode = "MALFORMED_MODEL"

	// ErrCodeRenderFailed indicates a backend template failure.
	ErrCodeRenderFailed GenerationErrorCode = "RENDER_FAILED"
)

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var ctx []string
	if e.Component != "" {
		ctx = append(ctx, "component="+e.Component)
	}
	if e.Member != "" {
		ctx = append(ctx, "member="+e.Member)
	}
	if e.Path != "" {
		ctx = append(ctx, "path="+e.Path)
	}
	if e.Type != "" {
		ctx = append(ctx, "type="+e.Type)
	}
	if len(ctx) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(ctx, ", "))
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// CodeOf returns the generation error code of err, or "" when err is not
// a generation error.
func CodeOf(err error) GenerationErrorCode {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsDuplicateSymbol returns true if the error is a duplicate symbol error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateSymbol(err error) bool {
	return CodeOf(err) == ErrCodeDuplicateSymbol
}

// IsNameCollision returns true if the error is a native name collision.
func IsNameCollision(err error) bool {
	return CodeOf(err) == ErrCodeNameCollision
}

// IsMissingMapping returns true if the error is a missing mapping error.
func IsMissingMapping(err error) bool {
	return CodeOf(err) == ErrCodeMissingMapping
}

// IsUnresolvedType returns true if the error is an unresolved type error.
func IsUnresolvedType(err error) bool {
	return CodeOf(err) == ErrCodeUnresolvedType
}

// IsMalformedModel returns true if the error is a malformed model error.
func IsMalformedModel(err error) bool {
	return CodeOf(err) == ErrCodeMalformedModel
}

// NewDuplicateSymbolError creates a GenerationError for a symbol produced
// by two members.
func NewDuplicateSymbolError(component, symbol, first, second string) *GenerationError {
	return &GenerationError{
		Code:      ErrCodeDuplicateSymbol,
		Message:   fmt.Sprintf("symbol %q is produced by both %s and %s", symbol, first, second),
		Component: component,
		Member:    second,
		Conflicts: []string{first, second},
	}
}
