package engine

import (
	"fmt"
	"text/template"

	"github.com/rpl/application-services/internal/model"
)

// stubTemplates renders members in a compact pseudo-language so tests can
// compare exact output.
const stubTemplates = `
{{define "params"}}{{range $i, $p := .}}{{if $i}}, {{end}}{{$p.Name}}: {{$p.Declared}}{{end}}{{end}}

{{define "object_declarations"}}{{.FreeSymbol}}(handle: {{.HandleDeclared}})
{{range .Constructors}}{{.Symbol}}({{template "params" .Params}}) -> {{.ReturnDeclared}}
{{end}}{{range .Methods}}{{.Symbol}}(handle: {{.HandleDeclared}}{{if .Params}}, {{template "params" .Params}}{{end}}){{if .HasReturn}} -> {{.ReturnDeclared}}{{end}}
{{end}}{{end}}

{{define "object_definitions"}}class {{.Name}} frees {{.FreeSymbol}}
{{range .Constructors}}  ctor {{.Name}}{{if .IsPrimary}} primary{{end}}
{{end}}{{range .Methods}}  method {{.Name}}{{if .HasReturn}} = {{.ReturnLifted}}{{end}}
{{end}}{{end}}

{{define "namespace_declarations"}}{{range .Functions}}{{.Symbol}}({{template "params" .Params}}){{if .HasReturn}} -> {{.ReturnDeclared}}{{end}}
{{end}}{{end}}

{{define "namespace_definitions"}}{{range .Functions}}fn {{.Name}}({{range $i, $p := .Params}}{{if $i}}, {{end}}{{$p.Lowered}}{{end}}){{if .HasReturn}} = {{.ReturnLifted}}{{end}}
{{end}}{{end}}

{{define "record_definitions"}}record {{.Name}}
{{range .Fields}}  {{.Name}}: {{.Native}} = {{.Read}}; {{.Write}}
{{end}}  lift = {{.Lift}}
  lower = {{.Lower}}
{{end}}

{{define "enum_definitions"}}enum {{.Name}}{{range .Variants}} {{.Name}}={{.Discriminant}}{{end}}
{{end}}

{{define "file"}}// {{.Component}} {{.Fingerprint}} lib={{.Option "lib" "none"}}
{{range .Declarations}}{{.}}{{end}}{{range .Definitions}}{{.}}{{end}}objects:{{range .Objects}} {{.}}{{end}}
{{end}}
`

// stubBackend maps every type; types listed in missing have no mapping.
type stubBackend struct {
	tmpl    *template.Template
	missing map[string]bool
}

func newStubBackend(missing ...string) *stubBackend {
	b := &stubBackend{
		tmpl:    template.Must(template.New("stub").Parse(stubTemplates)),
		missing: make(map[string]bool),
	}
	for _, m := range missing {
		b.missing[m] = true
	}
	return b
}

func (b *stubBackend) Name() string                  { return "stub" }
func (b *stubBackend) FileExtension() string         { return "stub" }
func (b *stubBackend) Templates() *template.Template { return b.tmpl }

func (b *stubBackend) TypeName(name string) string     { return name }
func (b *stubBackend) FunctionName(name string) string { return name }
func (b *stubBackend) FieldName(name string) string    { return name }
func (b *stubBackend) VariantName(name string) string  { return name }
func (b *stubBackend) ArgName(name string) string      { return name }

func (b *stubBackend) check(t model.TypeRef) error {
	if b.missing[t.String()] {
		return NoMapping(t)
	}
	return nil
}

func (b *stubBackend) Declare(t model.TypeRef) (string, error) {
	if err := b.check(t); err != nil {
		return "", err
	}
	switch t.(type) {
	case model.Boolean:
		return "i8", nil
	case model.U32, model.EnumRef:
		return "u32", nil
	case model.U64:
		return "u64", nil
	case model.ObjectRef:
		return "handle", nil
	default:
		return "buf", nil
	}
}

func (b *stubBackend) Native(t model.TypeRef) (string, error) {
	if err := b.check(t); err != nil {
		return "", err
	}
	return t.String(), nil
}

func (b *stubBackend) Lift(expr string, t model.TypeRef) (string, error) {
	if err := b.check(t); err != nil {
		return "", err
	}
	return fmt.Sprintf("lift_%s(%s)", t, expr), nil
}

func (b *stubBackend) Lower(expr string, t model.TypeRef) (string, error) {
	if err := b.check(t); err != nil {
		return "", err
	}
	return fmt.Sprintf("lower_%s(%s)", t, expr), nil
}

func (b *stubBackend) Read(buf string, t model.TypeRef) (string, error) {
	if err := b.check(t); err != nil {
		return "", err
	}
	return fmt.Sprintf("read_%s(%s)", t, buf), nil
}

func (b *stubBackend) Write(expr, buf string, t model.TypeRef) (string, error) {
	if err := b.check(t); err != nil {
		return "", err
	}
	return fmt.Sprintf("write_%s(%s, %s)", t, expr, buf), nil
}

// brokenBackend fails while executing one template.
type brokenBackend struct {
	*stubBackend
}

func newBrokenBackend(name string) *brokenBackend {
	b := newStubBackend()
	template.Must(b.tmpl.New(name).Parse(`{{.NoSuchField}}`))
	return &brokenBackend{b}
}
