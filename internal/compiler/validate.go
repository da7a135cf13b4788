package compiler

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/rpl/application-services/internal/model"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrNilComponent = "E100" // nil component

	// Component and member structure (E101-E110)
	ErrComponentNameEmpty   = "E101" // component name is required
	ErrDuplicateMember      = "E102" // duplicate member name
	ErrDuplicateObjectEntry = "E103" // duplicate constructor/method name
	ErrDuplicateField       = "E104" // duplicate record field or argument
	ErrDuplicateVariant     = "E105" // duplicate variant name
	ErrDuplicateDiscrim     = "E106" // duplicate discriminant
	ErrDiscrimRange         = "E107" // discriminant outside u32
	ErrUnresolvedRef        = "E108" // reference names no member of that kind
	ErrMultiplePrimary      = "E109" // more than one primary constructor
	ErrInvalidIdentifier    = "E110" // empty or invalid identifier

	// Type rules (E111-E119)
	ErrNestedOptional  = "E111" // optional<optional<T>>
	ErrInvalidMapKey   = "E112" // map key must be bool, u32, u64, string or enum
	ErrRecordCycle     = "E113" // record contains itself
	ErrEmptyEnum       = "E114" // enum has no variants
	ErrInvalidTypeExpr = "E115" // malformed type expression
	ErrMemberKind      = "E116" // entry does not select exactly one kind
	ErrMissingType     = "E117" // argument or field without a type
)

// ValidationError represents a model validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is a collected set of validation errors.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	switch len(es) {
	case 0:
		return "no validation errors"
	case 1:
		return es[0].Error()
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(es), strings.Join(parts, "; "))
}

// identPattern matches identifiers that are valid in every backend.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a component against the model rules.
// Returns all errors found (does not fail-fast), in model order.
func Validate(c *model.Component) []ValidationError {
	if c == nil {
		return []ValidationError{{Field: "component", Message: "component is nil", Code: ErrNilComponent}}
	}

	v := &validator{component: c}

	// E101: component name is required
	if strings.TrimSpace(c.Name) == "" {
		v.add("name", ErrComponentNameEmpty, "component name is required and must be non-empty")
	} else {
		v.ident("name", c.Name)
	}

	memberNames := make(map[string]int)
	for i, m := range c.Members {
		path := fmt.Sprintf("members[%d]", i)
		if m == nil {
			v.add(path, ErrMemberKind, "member is nil")
			continue
		}

		// E102: duplicate member name
		if first, seen := memberNames[m.MemberName()]; seen {
			v.add(path+".name", ErrDuplicateMember, "duplicate member name %q (first declared at members[%d])", m.MemberName(), first)
		} else {
			memberNames[m.MemberName()] = i
		}
		v.ident(path+".name", m.MemberName())

		switch mt := m.(type) {
		case *model.ObjectType:
			v.object(path, mt)
		case *model.RecordType:
			v.record(path, mt)
		case *model.NamespaceType:
			v.namespace(path, mt)
		case *model.EnumType:
			v.enum(path, mt)
		default:
			v.add(path, ErrMemberKind, "unsupported member type %T", m)
		}
	}

	// E113: record containment cycles
	for _, cycle := range RecordCycles(c) {
		v.add("members", ErrRecordCycle, "record contains itself: %s", strings.Join(cycle, " -> "))
	}

	return v.errs
}

type validator struct {
	component *model.Component
	errs      []ValidationError
}

func (v *validator) add(field, code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

// E110: identifiers must be usable in every backend
func (v *validator) ident(field, name string) {
	if !identPattern.MatchString(name) {
		v.add(field, ErrInvalidIdentifier, "invalid identifier %q", name)
	}
}

func (v *validator) object(path string, o *model.ObjectType) {
	names := make(map[string]bool)
	primaries := 0
	for j, om := range o.Members {
		mpath := fmt.Sprintf("%s.members[%d]", path, j)
		if om == nil {
			v.add(mpath, ErrMemberKind, "object member is nil")
			continue
		}

		// E103: constructor and method names share one scope
		if names[om.MemberName()] {
			v.add(mpath+".name", ErrDuplicateObjectEntry, "duplicate member %q in object %q", om.MemberName(), o.Name)
		}
		names[om.MemberName()] = true
		v.ident(mpath+".name", om.MemberName())

		v.args(mpath, om.Arguments())

		switch omt := om.(type) {
		case *model.Constructor:
			if omt.IsPrimary() {
				primaries++
			}
		case *model.Method:
			if omt.Return != nil {
				v.typeRef(mpath+".returns", omt.Return)
			}
		}
	}

	// E109: at most one primary constructor
	if primaries > 1 {
		v.add(path, ErrMultiplePrimary, "object %q has %d primary constructors", o.Name, primaries)
	}
}

func (v *validator) record(path string, r *model.RecordType) {
	names := make(map[string]bool)
	for j, f := range r.Fields {
		fpath := fmt.Sprintf("%s.fields[%d]", path, j)
		// E104: duplicate field
		if names[f.Name] {
			v.add(fpath+".name", ErrDuplicateField, "duplicate field %q in record %q", f.Name, r.Name)
		}
		names[f.Name] = true
		v.ident(fpath+".name", f.Name)
		v.typeRef(fpath+".type", f.Type)
	}
}

func (v *validator) namespace(path string, n *model.NamespaceType) {
	names := make(map[string]bool)
	for j, f := range n.Functions {
		fpath := fmt.Sprintf("%s.functions[%d]", path, j)
		if names[f.Name] {
			v.add(fpath+".name", ErrDuplicateObjectEntry, "duplicate function %q in namespace %q", f.Name, n.Name)
		}
		names[f.Name] = true
		v.ident(fpath+".name", f.Name)
		v.args(fpath, f.Args)
		if f.Return != nil {
			v.typeRef(fpath+".returns", f.Return)
		}
	}
}

func (v *validator) enum(path string, e *model.EnumType) {
	// E114: enum has no variants
	if len(e.Variants) == 0 {
		v.add(path+".variants", ErrEmptyEnum, "enum %q has no variants", e.Name)
	}

	names := make(map[string]bool)
	discriminants := make(map[int64]string)
	for j, variant := range e.Variants {
		vpath := fmt.Sprintf("%s.variants[%d]", path, j)

		// E105: duplicate variant name
		if names[variant.Name] {
			v.add(vpath+".name", ErrDuplicateVariant, "duplicate variant %q in enum %q", variant.Name, e.Name)
		}
		names[variant.Name] = true
		v.ident(vpath+".name", variant.Name)

		// E107: discriminant must fit the u32 wire integer
		if variant.Discriminant < 0 || variant.Discriminant > math.MaxUint32 {
			v.add(vpath+".discriminant", ErrDiscrimRange, "discriminant %d of %s.%s is outside the u32 range", variant.Discriminant, e.Name, variant.Name)
		}

		// E106: duplicate discriminant
		if other, seen := discriminants[variant.Discriminant]; seen {
			v.add(vpath+".discriminant", ErrDuplicateDiscrim, "discriminant %d of %s.%s is already used by %s", variant.Discriminant, e.Name, variant.Name, other)
		} else {
			discriminants[variant.Discriminant] = variant.Name
		}
	}
}

func (v *validator) args(path string, args []model.Argument) {
	names := make(map[string]bool)
	for k, a := range args {
		apath := fmt.Sprintf("%s.args[%d]", path, k)
		if names[a.Name] {
			v.add(apath+".name", ErrDuplicateField, "duplicate argument %q", a.Name)
		}
		names[a.Name] = true
		v.ident(apath+".name", a.Name)
		v.typeRef(apath+".type", a.Type)
	}
}

// typeRef checks a type reference and everything nested inside it.
func (v *validator) typeRef(path string, t model.TypeRef) {
	if t == nil {
		v.add(path, ErrMissingType, "type is required")
		return
	}
	model.Walk(t, func(tr model.TypeRef) bool {
		switch tt := tr.(type) {
		case model.EnumRef, model.RecordRef, model.ObjectRef:
			// E108: named references must resolve to a member of that kind
			if _, err := v.component.Resolve(tt); err != nil {
				v.add(path, ErrUnresolvedRef, "%s", err.Error())
			}
		case model.Optional:
			if tt.Inner == nil {
				v.add(path, ErrMissingType, "optional without inner type")
				return false
			}
			// E111: nested optionals are rejected
			if _, nested := tt.Inner.(model.Optional); nested {
				v.add(path, ErrNestedOptional, "nested optional %s", tt)
			}
		case model.Sequence:
			if tt.Elem == nil {
				v.add(path, ErrMissingType, "sequence without element type")
				return false
			}
		case model.Map:
			if tt.Key == nil || tt.Value == nil {
				v.add(path, ErrMissingType, "map without key or value type")
				return false
			}
			// E112: map keys must be hashable scalars
			if !isValidMapKey(tt.Key) {
				v.add(path, ErrInvalidMapKey, "invalid map key type %s, must be bool, u32, u64, string or an enum", tt.Key)
			}
		}
		return true
	})
}

func isValidMapKey(t model.TypeRef) bool {
	switch t.(type) {
	case model.Boolean, model.U32, model.U64, model.String, model.EnumRef:
		return true
	default:
		return false
	}
}

// IsUnresolved reports whether every error in errs is an unresolved
// reference.
func IsUnresolved(errs []ValidationError) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if e.Code != ErrUnresolvedRef {
			return false
		}
	}
	return true
}
