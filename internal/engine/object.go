package engine

import (
	"fmt"

	"github.com/rpl/application-services/internal/model"
)

// objectView builds the template input of an object.
//
// Handle discipline encoded here and in every backend's templates:
// constructors return a new handle, methods borrow it, and exactly one free
// symbol consumes it.
func (g *generator) objectView(o *model.ObjectType) (ObjectView, error) {
	handleDeclared, err := g.declare(o.Name, "handle", handleType(o.Name))
	if err != nil {
		return ObjectView{}, err
	}

	view := ObjectView{
		Component:      g.component.Name,
		Name:           g.backend.TypeName(o.Name),
		Raw:            o.Name,
		Doc:            o.Doc,
		HandleDeclared: handleDeclared,
		FreeSymbol:     Symbol(o.Name, FreeName),
	}

	for i, om := range o.Members {
		path := fmt.Sprintf("members[%d]", i)
		switch omt := om.(type) {
		case *model.Constructor:
			fv, err := g.constructorView(o, path, omt, handleDeclared)
			if err != nil {
				return ObjectView{}, err
			}
			view.Constructors = append(view.Constructors, fv)
		case *model.Method:
			fv, err := g.methodView(o, path, omt, handleDeclared)
			if err != nil {
				return ObjectView{}, err
			}
			view.Methods = append(view.Methods, fv)
		default:
			return ObjectView{}, g.memberError(ErrCodeMalformedModel, o.Name, path, nil, nil,
				"unsupported object member %T", om)
		}
	}
	return view, nil
}

func (g *generator) constructorView(o *model.ObjectType, path string, c *model.Constructor, handleDeclared string) (FuncView, error) {
	params, err := g.params(o.Name, path, c.Args)
	if err != nil {
		return FuncView{}, err
	}
	return FuncView{
		Component:      g.component.Name,
		Owner:          g.backend.TypeName(o.Name),
		Symbol:         Symbol(o.Name, c.Name),
		Name:           g.backend.FunctionName(c.Name),
		Raw:            c.Name,
		Doc:            c.Doc,
		Params:         params,
		HasReturn:      true,
		ReturnType:     HandleTypeString(o.Name),
		ReturnDeclared: handleDeclared,
		Throws:         c.Throws,
		IsConstructor:  true,
		IsPrimary:      c.IsPrimary(),
	}, nil
}

func (g *generator) methodView(o *model.ObjectType, path string, m *model.Method, handleDeclared string) (FuncView, error) {
	params, err := g.params(o.Name, path, m.Args)
	if err != nil {
		return FuncView{}, err
	}
	fv := FuncView{
		Component:      g.component.Name,
		Owner:          g.backend.TypeName(o.Name),
		Symbol:         Symbol(o.Name, m.Name),
		Name:           g.backend.FunctionName(m.Name),
		Raw:            m.Name,
		Doc:            m.Doc,
		Params:         params,
		HandleDeclared: handleDeclared,
		Throws:         m.Throws,
	}
	if err := g.returns(o.Name, path, m.Return, &fv); err != nil {
		return FuncView{}, err
	}
	return fv, nil
}

// generateObject emits the free, constructor and method declarations of an
// object plus its native wrapper class.
func (g *generator) generateObject(o *model.ObjectType, sigs []Signature) (Fragment, error) {
	view, err := g.objectView(o)
	if err != nil {
		return Fragment{}, err
	}
	decls, err := g.render(o.Name, "object_declarations", view)
	if err != nil {
		return Fragment{}, err
	}
	defs, err := g.render(o.Name, "object_definitions", view)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{
		Member:       o.Name,
		Kind:         model.KindObject,
		Symbols:      sigs,
		Declarations: decls,
		Definitions:  defs,
	}, nil
}
