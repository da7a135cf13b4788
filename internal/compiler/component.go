package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/rpl/application-services/internal/model"
)

// CompileComponent parses a CUE value into a validated Component.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should hold the document at its root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`component: "Demo", members: [...]`)
//	c, err := CompileComponent(v)
func CompileComponent(v cue.Value) (*model.Component, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	nameVal := v.LookupPath(cue.ParsePath("component"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "component",
			Message: "component name is required",
			Pos:     v.Pos(),
		}
	}

	membersVal := v.LookupPath(cue.ParsePath("members"))
	if membersVal.Exists() {
		if err := checkMemberEntries(membersVal); err != nil {
			return nil, err
		}
	}

	var doc ComponentDoc
	if err := v.Decode(&doc); err != nil {
		return nil, formatCUEError(err)
	}

	return Build(&doc)
}

// checkMemberEntries reports the position of the first member entry that
// is not a struct, which Decode would otherwise report without context.
func checkMemberEntries(v cue.Value) error {
	iter, err := v.List()
	if err != nil {
		return formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		if iter.Value().IncompleteKind() != cue.StructKind {
			return &CompileError{
				Field:   fmt.Sprintf("members[%d]", i),
				Message: "member entries must be structs",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
