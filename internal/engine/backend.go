package engine

import (
	"text/template"

	"github.com/rpl/application-services/internal/model"
)

// Backend is one binding language: its conversion contract, its naming
// rules and the templates that turn member views into source text.
//
// Templates must define:
//
//	object_declarations, object_definitions       (ObjectView)
//	namespace_declarations, namespace_definitions (NamespaceView)
//	record_definitions                            (RecordView)
//	enum_definitions                              (EnumView)
//	file                                          (FileView)
//
// Declarations hold the raw FFI symbol signatures; definitions hold native
// wrappers and conversion helpers.
type Backend interface {
	Contract
	Naming

	// Name is the registry key, e.g. "kotlin".
	Name() string

	// FileExtension is the extension of generated files, without the dot.
	FileExtension() string

	// Templates returns the parsed template set. The set is shared and
	// must not be modified.
	Templates() *template.Template
}

// Naming maps model identifiers to native identifiers. FFI symbol names
// are never renamed; see Symbol.
type Naming interface {
	TypeName(name string) string
	FunctionName(name string) string
	FieldName(name string) string
	VariantName(name string) string
	ArgName(name string) string
}

// ParamView is one parameter of a generated function.
type ParamView struct {
	Name     string // native parameter name
	Raw      string // model name
	Type     string // model type expression
	Native   string // native type
	Declared string // FFI-boundary type
	Lowered  string // expression lowering Name
}

// FuncView describes one FFI symbol and its native wrapper.
type FuncView struct {
	Component string
	Owner     string // native name of the owning object or namespace
	Symbol    string
	Name      string // native wrapper name
	Raw       string // model name
	Doc       string
	Params    []ParamView

	// HandleDeclared is the declared handle type; empty for namespace
	// functions.
	HandleDeclared string

	HasReturn      bool
	ReturnType     string // model type expression
	ReturnNative   string
	ReturnDeclared string
	// ReturnLifted lifts the raw call result held in a variable named
	// ReturnVar.
	ReturnLifted string

	Throws        bool
	IsConstructor bool
	IsPrimary     bool
}

// ReturnVar names the variable that holds a raw call result in wrappers.
const ReturnVar = "ret"

// ObjectView is the input of the object templates.
type ObjectView struct {
	Component      string
	Name           string // native class name
	Raw            string
	Doc            string
	HandleDeclared string
	FreeSymbol     string
	Constructors   []FuncView
	Methods        []FuncView
}

// PrimaryConstructor returns the primary constructor, if any.
func (o ObjectView) PrimaryConstructor() *FuncView {
	for i := range o.Constructors {
		if o.Constructors[i].IsPrimary {
			return &o.Constructors[i]
		}
	}
	return nil
}

// NamespaceView is the input of the namespace templates.
type NamespaceView struct {
	Component string
	Name      string
	Raw       string
	Doc       string
	Functions []FuncView
}

// FieldView is one record field with its serialized-form conversions.
// Read decodes from a buffer named BufVar; Write encodes the field of a
// record named ValueVar.
type FieldView struct {
	Name   string
	Raw    string
	Type   string
	Native string
	Read   string
	Write  string
}

// Variable names used by record and composite helpers.
const (
	BufVar   = "buf"
	ValueVar = "value"
)

// RecordView is the input of the record template.
type RecordView struct {
	Component string
	Name      string
	Raw       string
	Doc       string
	Fields    []FieldView
	// Lift and Lower convert a whole record buffer; they take the
	// boundary value named ValueVar.
	Lift  string
	Lower string
}

// VariantView is one enum variant.
type VariantView struct {
	Name         string
	Raw          string
	Discriminant uint32
}

// EnumView is the input of the enum template.
type EnumView struct {
	Component string
	Name      string
	Raw       string
	Doc       string
	Variants  []VariantView
}

// FileView is the input of the file template.
type FileView struct {
	Component        string
	Fingerprint      string
	GeneratorVersion string
	Backend          string
	Options          map[string]string
	Declarations     []string
	Definitions      []string
	Objects          []string // native names of all objects
}

// Option returns a backend option or def when unset.
func (f FileView) Option(key, def string) string {
	if v, ok := f.Options[key]; ok && v != "" {
		return v
	}
	return def
}

// handleType is the type whose declaration represents a handle of obj.
func handleType(obj string) model.TypeRef {
	return model.ObjectRef{Name: obj}
}
