package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/rpl/application-services/internal/compiler"
	"github.com/rpl/application-services/internal/model"
)

// loadModel loads and validates the model at path. On failure the error
// has already been written through f and is an *ExitError with
// ExitFailure.
func loadModel(f *OutputFormatter, path string) (*model.Component, error) {
	c, err := compiler.LoadModel(path)
	if err == nil {
		f.VerboseLog("Loaded %s: component %s, %d member(s)", path, c.Name, len(c.Members))
		return c, nil
	}

	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) && len(loadErr.Validation) > 0 {
		return nil, outputValidationErrors(f, loadErr.Validation)
	}
	return nil, f.Fail(ExitFailure, ErrorCode(err), err, nil)
}

// outputValidationErrors prints every collected validation error.
func outputValidationErrors(f *OutputFormatter, errs []compiler.ValidationError) error {
	if f.IsJSON() {
		if err := f.Error(compiler.ErrCodeInvalid, fmt.Sprintf("%d validation error(s)", len(errs)), errs); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ %d validation error(s):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(f.Writer, "  [%s] %s: %s\n", e.Code, e.Field, e.Message)
		}
	}
	return NewExitError(ExitFailure, "model validation failed")
}
