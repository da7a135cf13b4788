package engine

import (
	"fmt"

	"github.com/rpl/application-services/internal/model"
)

func (g *generator) namespaceView(n *model.NamespaceType) (NamespaceView, error) {
	view := NamespaceView{
		Component: g.component.Name,
		Name:      g.backend.TypeName(n.Name),
		Raw:       n.Name,
		Doc:       n.Doc,
	}
	for i, f := range n.Functions {
		path := fmt.Sprintf("functions[%d]", i)
		params, err := g.params(n.Name, path, f.Args)
		if err != nil {
			return NamespaceView{}, err
		}
		fv := FuncView{
			Component: g.component.Name,
			Owner:     view.Name,
			Symbol:    Symbol(n.Name, f.Name),
			Name:      g.backend.FunctionName(f.Name),
			Raw:       f.Name,
			Doc:       f.Doc,
			Params:    params,
			Throws:    f.Throws,
		}
		if err := g.returns(n.Name, path, f.Return, &fv); err != nil {
			return NamespaceView{}, err
		}
		view.Functions = append(view.Functions, fv)
	}
	return view, nil
}

// generateNamespace emits one declaration per function plus native wrapper
// functions that lower arguments and lift the result.
func (g *generator) generateNamespace(n *model.NamespaceType, sigs []Signature) (Fragment, error) {
	view, err := g.namespaceView(n)
	if err != nil {
		return Fragment{}, err
	}
	decls, err := g.render(n.Name, "namespace_declarations", view)
	if err != nil {
		return Fragment{}, err
	}
	defs, err := g.render(n.Name, "namespace_definitions", view)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{
		Member:       n.Name,
		Kind:         model.KindNamespace,
		Symbols:      sigs,
		Declarations: decls,
		Definitions:  defs,
	}, nil
}
