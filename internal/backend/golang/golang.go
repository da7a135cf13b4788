// Package golang generates Go bindings that call the native library
// through cgo.
package golang

import (
	"go/format"
	"text/template"

	"github.com/cockroachdb/errors"

	"github.com/rpl/application-services/internal/backend/gen"
	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
	"github.com/rpl/application-services/internal/naming"
)

// Name is the registry key of the backend.
const Name = "go"

// Options read by the file template.
const (
	OptionPackage = "package" // Go package name, default the snake_case component
	OptionLibrary = "library" // linked library, default the component name
)

var keywords = naming.NewKeywords(
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type",
	"var",
)

// reserved are the wrapper locals, on top of the shared ones.
var reserved = naming.NewKeywords(append([]string{"obj", "cerr", "ret0", "r", "w"}, gen.Reserved...)...)

// members are the methods and fields generated objects declare for
// themselves.
var members = naming.NewKeywords("Close", "lowerHandle", "handle")

// types are the exported types of the runtime preamble.
var types = naming.NewKeywords("Error", "InternalError")

// Backend is the Go/cgo backend.
type Backend struct {
	tmpl *template.Template
}

// New returns the Go backend.
func New() *Backend {
	return &Backend{tmpl: parseTemplates()}
}

func (b *Backend) Name() string                  { return Name }
func (b *Backend) FileExtension() string         { return "go" }
func (b *Backend) Templates() *template.Template { return b.tmpl }

// FileName is the snake_case component, e.g. demo_ffi.go.
func (b *Backend) FileName(component string) string {
	return naming.ToSnakeCase(component) + "_ffi.go"
}

// Format runs gofmt over the assembled file.
func (b *Backend) Format(src []byte) ([]byte, error) {
	out, err := format.Source(src)
	if err != nil {
		return nil, errors.Wrap(err, "gofmt")
	}
	return out, nil
}

func (b *Backend) TypeName(name string) string    { return types.Escape(naming.ToPascalCase(name)) }
func (b *Backend) FieldName(name string) string   { return naming.ToPascalCase(name) }
func (b *Backend) VariantName(name string) string { return naming.ToPascalCase(name) }

// FunctionName renames methods that would clash with Close.
func (b *Backend) FunctionName(name string) string {
	return members.Escape(naming.ToPascalCase(name))
}

func (b *Backend) ArgName(name string) string {
	return keywords.Escape(reserved.Escape(naming.ToCamelCase(name)))
}

// RuntimeNames lists the package-level declarations of the runtime
// preamble and the imported package names.
func (b *Backend) RuntimeNames(string) []string {
	return []string{
		"C", "bytes", "binary", "fmt", "runtime", "atomic", "utf8", "unsafe",
		"Error", "InternalError", "callPanic", "throw", "catchPanic", "consumeError",
		"rustCallChecked", "rustCall", "nativeHandle", "track", "untrack", "boolToC",
		"reader", "writer", "decodeOptional", "decodeNullable", "decodeSequence", "decodeMap",
		"encodeOptional", "encodeNullable", "encodeSequence", "encodeMap",
		"freeBuffer", "allocBuffer", "bufferBytes", "valueFromBuffer", "valueToBuffer",
		"stringFromBuffer", "stringToBuffer",
	}
}

// ScopedNames reports the package-level functions and constants a member
// declares next to its type: constructors, namespace functions, enum
// constants and conversion helpers all share the package scope.
func (b *Backend) ScopedNames(index int, m model.Member) []engine.ScopedName {
	typ := b.TypeName(m.MemberName())
	var out []engine.ScopedName
	pkg := func(name, what string) {
		out = append(out, engine.ScopedName{Scope: engine.FileScope, Name: name, Origin: engine.MemberOrigin(index, m, what)})
	}

	switch mt := m.(type) {
	case *model.ObjectType:
		pkg("new"+typ+"FromHandle", "handle wrapper")
		for _, c := range mt.Constructors() {
			if c.IsPrimary() {
				pkg("New"+typ, "constructor "+c.Name)
			} else {
				pkg("New"+typ+b.FunctionName(c.Name), "constructor "+c.Name)
			}
		}
		for _, name := range []string{"Close", "lowerHandle", "handle"} {
			out = append(out, engine.ScopedName{Scope: typ, Name: name, Origin: engine.MemberOrigin(index, m, name)})
		}
	case *model.NamespaceType:
		for _, f := range mt.Functions {
			pkg(typ+b.FunctionName(f.Name), "function "+f.Name)
		}
	case *model.RecordType:
		for _, helper := range []string{"read", "write", "lift", "lower"} {
			pkg(helper+typ, helper+" helper")
		}
	case *model.EnumType:
		pkg("lift"+typ, "lift helper")
		for _, v := range mt.Variants {
			pkg(typ+b.VariantName(v.Name), "variant "+v.Name)
		}
	}
	return out
}
