package engine

import (
	"bytes"
	"context"

	"github.com/rpl/application-services/internal/model"
)

// FileNamer is implemented by backends whose output file name is not
// "{Component}.{ext}".
type FileNamer interface {
	FileName(component string) string
}

// Formatter is implemented by backends that post-process the assembled
// file, e.g. with gofmt.
type Formatter interface {
	Format(src []byte) ([]byte, error)
}

// Output is one generated source file.
type Output struct {
	*Result

	FileName string
	Source   []byte
}

// GenerateFile generates c and renders every fragment into a single file
// through the backend's "file" template.
func GenerateFile(ctx context.Context, c *model.Component, backend Backend, opts ...Option) (*Output, error) {
	res, err := Run(ctx, c, backend, opts...)
	if err != nil {
		return nil, err
	}
	cfg := newConfig(opts)

	src, err := Assemble(res, backend, cfg.options)
	if err != nil {
		return nil, err
	}
	return &Output{
		Result:   res,
		FileName: FileName(c.Name, backend),
		Source:   src,
	}, nil
}

// Assemble renders the fragments of res into a file.
func Assemble(res *Result, backend Backend, options map[string]string) ([]byte, error) {
	view := FileView{
		Component:        res.Component,
		Fingerprint:      res.Fingerprint,
		GeneratorVersion: model.GeneratorVersion,
		Backend:          backend.Name(),
		Options:          options,
	}
	for _, f := range res.Fragments {
		if f.Declarations != "" {
			view.Declarations = append(view.Declarations, f.Declarations)
		}
		if f.Definitions != "" {
			view.Definitions = append(view.Definitions, f.Definitions)
		}
		if f.Kind == model.KindObject {
			view.Objects = append(view.Objects, backend.TypeName(f.Member))
		}
	}

	tmpl := backend.Templates().Lookup("file")
	if tmpl == nil {
		return nil, &GenerationError{
			Code:      ErrCodeRenderFailed,
			Component: res.Component,
			Message:   "backend " + backend.Name() + " has no template \"file\"",
		}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, &GenerationError{
			Code:      ErrCodeRenderFailed,
			Component: res.Component,
			Message:   "file template failed",
			Err:       err,
		}
	}
	if f, ok := backend.(Formatter); ok {
		formatted, err := f.Format(buf.Bytes())
		if err != nil {
			return nil, &GenerationError{
				Code:      ErrCodeRenderFailed,
				Component: res.Component,
				Message:   "formatting generated source failed",
				Err:       err,
			}
		}
		return formatted, nil
	}
	return buf.Bytes(), nil
}

// FileName returns the output file name of component for backend.
func FileName(component string, backend Backend) string {
	if fn, ok := backend.(FileNamer); ok {
		return fn.FileName(component)
	}
	return component + "." + backend.FileExtension()
}
