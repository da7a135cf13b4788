// Package kotlin generates Kotlin bindings that load the native library
// through JNA.
package kotlin

import (
	"text/template"

	"github.com/rpl/application-services/internal/backend/gen"
	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
	"github.com/rpl/application-services/internal/naming"
)

// Name is the registry key of the backend.
const Name = "kotlin"

// Options read by the file template.
const (
	OptionPackage = "package" // Kotlin package, default "ffigen.<component>"
	OptionLibrary = "library" // JNA library name, default the component name
)

var keywords = naming.NewKeywords(
	"as", "break", "class", "continue", "do", "else", "false", "for", "fun",
	"if", "in", "interface", "is", "null", "object", "package", "return",
	"super", "this", "throw", "true", "try", "typealias", "typeof", "val",
	"var", "when", "while",
)

var reserved = naming.NewKeywords(gen.Reserved...)

// members are the names wrapper classes declare for themselves, plus the
// members every class inherits from Any.
var members = naming.NewKeywords("close", "lower", "read", "write", "lift", "equals", "hashCode", "toString")

// types are the type names the generated file refers to unqualified.
var types = naming.NewKeywords(
	"Handle", "RustBuffer", "RustError", "InternalException",
	"ByteBuffer", "ByteOrder", "AtomicBoolean", "AtomicLong",
	"Any", "AutoCloseable", "Boolean", "Byte", "Exception", "Int", "List",
	"Long", "Map", "String", "UInt", "ULong", "Unit",
)

// Backend is the Kotlin/JNA backend. It is stateless and safe for
// concurrent use.
type Backend struct {
	tmpl *template.Template
}

// New returns the Kotlin backend.
func New() *Backend {
	return &Backend{tmpl: parseTemplates()}
}

func (b *Backend) Name() string                  { return Name }
func (b *Backend) FileExtension() string         { return "kt" }
func (b *Backend) Templates() *template.Template { return b.tmpl }

// FileName names the output after the component type, e.g. Demo.kt.
func (b *Backend) FileName(component string) string {
	return naming.ToPascalCase(component) + ".kt"
}

func (b *Backend) TypeName(name string) string    { return types.Escape(naming.ToPascalCase(name)) }
func (b *Backend) FieldName(name string) string   { return keywords.Quote(naming.ToCamelCase(name)) }
func (b *Backend) VariantName(name string) string { return naming.ToScreamingSnakeCase(name) }

// FunctionName renames functions that would clash with the members a
// wrapper class declares itself.
func (b *Backend) FunctionName(name string) string {
	return keywords.Quote(members.Escape(naming.ToCamelCase(name)))
}

// ArgName renames arguments that would shadow wrapper variables.
func (b *Backend) ArgName(name string) string {
	return keywords.Quote(reserved.Escape(naming.ToCamelCase(name)))
}

// libName is the name of the JNA interface of a component.
func libName(component string) string {
	return "Lib" + naming.ToPascalCase(component)
}

// RuntimeNames lists the top-level declarations of the file template.
func (b *Backend) RuntimeNames(component string) []string {
	pascal := naming.ToPascalCase(component)
	return []string{
		"Handle", "RustBuffer", "RustError", pascal + "Exception", "InternalException",
		"rustCallChecked", "rustCall", "liftFromRustBuffer", "lowerIntoRustBuffer",
		"liftString", "lowerString", "readString", "writeString", libName(component),
	}
}

// ScopedNames reports nothing beyond the defaults: every wrapper member
// lives inside its class.
func (b *Backend) ScopedNames(int, model.Member) []engine.ScopedName {
	return nil
}
