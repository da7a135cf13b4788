package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rpl/application-services/internal/model"
)

// Load error codes, shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No model files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeDecode      = "E007" // JSON/YAML decode failed
	ErrCodeInvalid     = "E008" // Model failed validation
)

// LoadError represents an error that occurred during model loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available

	// Validation holds the collected errors when Code is ErrCodeInvalid.
	Validation []ValidationError
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadModel loads a component from path. A directory or a .cue file is
// loaded as a CUE instance; .json and .yaml/.yml files are decoded
// directly. The result is always validated.
func LoadModel(path string) (*model.Component, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.WithHint(
			&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model not found: %s", path)},
			"pass a .cue, .json or .yaml file, or a directory of .cue files",
		)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing model: %v", err)}
	}

	if info.IsDir() {
		return LoadCUEDir(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return loadCUE(filepath.Dir(path), []string{filepath.Base(path)})
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		}
		return DecodeJSON(data)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		}
		return DecodeYAML(data)
	default:
		return nil, errors.WithHint(
			&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("unsupported model file: %s", path)},
			"supported extensions are .cue, .json, .yaml and .yml",
		)
	}
}

// LoadCUEDir loads every .cue file in dir as one CUE instance.
func LoadCUEDir(dir string) (*model.Component, error) {
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}
	return loadCUE(dir, []string{"."})
}

func loadCUE(dir string, args []string) (*model.Component, error) {
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	c, err := CompileComponent(value)
	if err != nil {
		return nil, convertError(err)
	}
	return c, nil
}

// DecodeJSON builds a component from a JSON document.
func DecodeJSON(data []byte) (*model.Component, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc ComponentDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding JSON model: %v", err)}
	}
	c, err := Build(&doc)
	if err != nil {
		return nil, convertError(err)
	}
	return c, nil
}

// DecodeYAML builds a component from a YAML document.
func DecodeYAML(data []byte) (*model.Component, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc ComponentDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding YAML model: %v", err)}
	}
	c, err := Build(&doc)
	if err != nil {
		return nil, convertError(err)
	}
	return c, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertError converts a compile or validation error to a LoadError.
func convertError(err error) error {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return &LoadError{
			Code:       ErrCodeInvalid,
			Message:    verrs.Error(),
			Validation: verrs,
		}
	}
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}
