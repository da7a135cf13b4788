package engine

import (
	"fmt"
	"math"

	"github.com/rpl/application-services/internal/model"
)

// generateEnum emits a native enumeration with a lower conversion and a
// lift conversion that fails on an undeclared discriminant.
func (g *generator) generateEnum(e *model.EnumType) (Fragment, error) {
	view := EnumView{
		Component: g.component.Name,
		Name:      g.backend.TypeName(e.Name),
		Raw:       e.Name,
		Doc:       e.Doc,
	}
	if len(e.Variants) == 0 {
		return Fragment{}, g.memberError(ErrCodeMalformedModel, e.Name, "variants", nil, nil,
			"enum %q has no variants", e.Name)
	}
	for i, v := range e.Variants {
		if v.Discriminant < 0 || v.Discriminant > math.MaxUint32 {
			return Fragment{}, g.memberError(ErrCodeMalformedModel, e.Name, fmt.Sprintf("variants[%d]", i), nil, nil,
				"discriminant %d is outside the u32 range", v.Discriminant)
		}
		view.Variants = append(view.Variants, VariantView{
			Name:         g.backend.VariantName(v.Name),
			Raw:          v.Name,
			Discriminant: uint32(v.Discriminant),
		})
	}

	// The contract must be able to express the enum even though the
	// template writes the conversions itself.
	if _, err := g.declare(e.Name, "", model.EnumRef{Name: e.Name}); err != nil {
		return Fragment{}, err
	}

	defs, err := g.render(e.Name, "enum_definitions", view)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{
		Member:      e.Name,
		Kind:        model.KindEnum,
		Definitions: defs,
	}, nil
}
