// Package python generates Python bindings on top of ctypes.
package python

import (
	"text/template"

	"github.com/rpl/application-services/internal/backend/gen"
	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
	"github.com/rpl/application-services/internal/naming"
)

// Name is the registry key of the backend.
const Name = "python"

// OptionLibrary overrides the shared library file loaded by ctypes.
const OptionLibrary = "library"

var keywords = naming.NewKeywords(
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally",
	"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal",
	"not", "or", "pass", "raise", "return", "try", "while", "with", "yield",
	// names the generated module binds at top level
	"ctypes", "typing", "threading",
)

var reserved = naming.NewKeywords(append([]string{"self", "cls"}, gen.Reserved...)...)

// members are the attributes wrapper classes declare for themselves.
var members = naming.NewKeywords(
	"close", "_lower", "_from_handle", "_handle", "_lock", "_read", "_write", "_lift",
	"__init__", "__enter__", "__exit__", "__del__",
)

// types are the classes the module declares before any member.
var types = naming.NewKeywords("RustBuffer", "RustError", "InternalError")

// Backend is the Python/ctypes backend.
type Backend struct {
	tmpl *template.Template
}

// New returns the Python backend.
func New() *Backend {
	return &Backend{tmpl: parseTemplates()}
}

func (b *Backend) Name() string                  { return Name }
func (b *Backend) FileExtension() string         { return "py" }
func (b *Backend) Templates() *template.Template { return b.tmpl }

// FileName is a module name, e.g. demo.py.
func (b *Backend) FileName(component string) string {
	return naming.ToSnakeCase(component) + ".py"
}

func (b *Backend) TypeName(name string) string    { return types.Escape(naming.ToPascalCase(name)) }
func (b *Backend) VariantName(name string) string { return naming.ToScreamingSnakeCase(name) }

// FunctionName renames functions that would replace an attribute of the
// wrapper class, such as close.
func (b *Backend) FunctionName(name string) string {
	return keywords.Escape(members.Escape(naming.ToSnakeCase(name)))
}

func (b *Backend) FieldName(name string) string {
	return keywords.Escape(members.Escape(naming.ToSnakeCase(name)))
}

func (b *Backend) ArgName(name string) string {
	return keywords.Escape(reserved.Escape(naming.ToSnakeCase(name)))
}

// RuntimeNames lists the top-level bindings of the module preamble.
func (b *Backend) RuntimeNames(component string) []string {
	return []string{
		"ctypes", "dataclasses", "enum", "os", "struct", "threading", "typing",
		"RustBuffer", "RustError", naming.ToPascalCase(component) + "Error", "InternalError",
		"_load_library", "_lib", "_rust_call_checked", "_rust_call", "_check_u32", "_check_u64",
		"_Reader", "_Writer", "_lift_from_buffer", "_lower_into_buffer", "_lift_string", "_lower_string",
	}
}

// ScopedNames reports nothing beyond the defaults: every wrapper member
// lives inside its class.
func (b *Backend) ScopedNames(int, model.Member) []engine.ScopedName {
	return nil
}
