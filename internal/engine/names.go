package engine

import (
	"fmt"

	"github.com/rpl/application-services/internal/model"
)

// FileScope is the scope of names declared at the top level of the
// generated file.
const FileScope = ""

// ScopedName is one native identifier a generated file declares.
type ScopedName struct {
	Scope  string
	Name   string
	Origin string
}

// NameScoper is implemented by backends whose templates declare native
// names beyond the member's own type, functions, fields and variants: the
// runtime support of the file and per-member helpers such as Go's
// package-level constructors.
type NameScoper interface {
	// RuntimeNames returns the names the file template declares at the top
	// level for component.
	RuntimeNames(component string) []string

	// ScopedNames returns the extra names member m declares.
	ScopedNames(index int, m model.Member) []ScopedName
}

// NativeNames returns the names member m declares under n: its type name
// in the file scope, its functions, fields or variants in the scope of the
// type, and the parameters of each function in the scope of the function.
func NativeNames(n Naming, index int, m model.Member) []ScopedName {
	typ := n.TypeName(m.MemberName())
	out := []ScopedName{{Scope: FileScope, Name: typ, Origin: origin(index, m, "type")}}

	fn := func(what, name string, args []model.Argument) {
		native := n.FunctionName(name)
		out = append(out, ScopedName{Scope: typ, Name: native, Origin: origin(index, m, what+" "+name)})
		for _, a := range args {
			out = append(out, ScopedName{
				Scope:  typ + "." + native,
				Name:   n.ArgName(a.Name),
				Origin: origin(index, m, what+" "+name+" arg "+a.Name),
			})
		}
	}

	switch mt := m.(type) {
	case *model.ObjectType:
		for _, om := range mt.Members {
			switch omt := om.(type) {
			case *model.Constructor:
				if omt.IsPrimary() {
					for _, a := range omt.Args {
						out = append(out, ScopedName{
							Scope:  typ + ".<init>",
							Name:   n.ArgName(a.Name),
							Origin: origin(index, m, "constructor new arg "+a.Name),
						})
					}
					continue
				}
				fn("constructor", omt.Name, omt.Args)
			case *model.Method:
				fn("method", omt.Name, omt.Args)
			}
		}
	case *model.NamespaceType:
		for _, f := range mt.Functions {
			fn("function", f.Name, f.Args)
		}
	case *model.RecordType:
		for _, f := range mt.Fields {
			out = append(out, ScopedName{Scope: typ, Name: n.FieldName(f.Name), Origin: origin(index, m, "field "+f.Name)})
		}
	case *model.EnumType:
		for _, v := range mt.Variants {
			out = append(out, ScopedName{Scope: typ, Name: n.VariantName(v.Name), Origin: origin(index, m, "variant "+v.Name)})
		}
	}
	return out
}

// CheckNativeNames verifies that no two declarations of the generated file
// share a native name in one scope. Distinct model names can still meet
// after casing and escaping, e.g. "point" and "Point", or a method named
// after a member the wrapper declares itself. A collision returns a
// NAME_COLLISION error naming both origins.
func CheckNativeNames(c *model.Component, b Backend) error {
	type key struct{ scope, name string }
	seen := make(map[key]string)

	add := func(sn ScopedName) error {
		k := key{sn.Scope, sn.Name}
		if first, dup := seen[k]; dup {
			return NewNameCollisionError(c.Name, sn.Name, first, sn.Origin)
		}
		seen[k] = sn.Origin
		return nil
	}

	scoper, _ := b.(NameScoper)
	if scoper != nil {
		for _, name := range scoper.RuntimeNames(c.Name) {
			if err := add(ScopedName{Scope: FileScope, Name: name, Origin: RuntimeOrigin}); err != nil {
				return err
			}
		}
	}

	for i, m := range c.Members {
		if m == nil {
			continue
		}
		names := NativeNames(b, i, m)
		if scoper != nil {
			names = append(names, scoper.ScopedNames(i, m)...)
		}
		for _, sn := range names {
			if err := add(sn); err != nil {
				return err
			}
		}
	}
	return nil
}

// MemberOrigin describes part of member m the way symbol origins do, e.g.
// "members[1] object Counter: constructor".
func MemberOrigin(index int, m model.Member, what string) string {
	return origin(index, m, what)
}

// NewNameCollisionError creates a GenerationError for a native name
// declared twice in one scope.
func NewNameCollisionError(component, name, first, second string) *GenerationError {
	return &GenerationError{
		Code:      ErrCodeNameCollision,
		Message:   fmt.Sprintf("native name %q is declared by both %s and %s", name, first, second),
		Component: component,
		Member:    second,
		Conflicts: []string{first, second},
	}
}
