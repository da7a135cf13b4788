package engine

import (
	"fmt"

	"github.com/rpl/application-services/internal/model"
)

// recordView builds a record's template input. The record's lift and lower
// are composed field-wise: each field is read from or written to the
// record buffer in declaration order.
func (g *generator) recordView(r *model.RecordType) (RecordView, error) {
	view := RecordView{
		Component: g.component.Name,
		Name:      g.backend.TypeName(r.Name),
		Raw:       r.Name,
		Doc:       r.Doc,
	}

	for i, f := range r.Fields {
		path := fmt.Sprintf("fields[%d]", i)
		name := g.backend.FieldName(f.Name)

		native, err := g.native(r.Name, path, f.Type)
		if err != nil {
			return RecordView{}, err
		}
		read, err := g.read(r.Name, path, BufVar, f.Type)
		if err != nil {
			return RecordView{}, err
		}
		write, err := g.write(r.Name, path, ValueVar+"."+name, BufVar, f.Type)
		if err != nil {
			return RecordView{}, err
		}
		view.Fields = append(view.Fields, FieldView{
			Name:   name,
			Raw:    f.Name,
			Type:   f.Type.String(),
			Native: native,
			Read:   read,
			Write:  write,
		})
	}

	self := model.RecordRef{Name: r.Name}
	var err error
	if view.Lift, err = g.lift(r.Name, "", ValueVar, self); err != nil {
		return RecordView{}, err
	}
	if view.Lower, err = g.lower(r.Name, "", ValueVar, self); err != nil {
		return RecordView{}, err
	}
	return view, nil
}

// generateRecord emits a native aggregate with lift and lower helpers.
// Records are passed by value and have no FFI symbols.
func (g *generator) generateRecord(r *model.RecordType) (Fragment, error) {
	view, err := g.recordView(r)
	if err != nil {
		return Fragment{}, err
	}
	defs, err := g.render(r.Name, "record_definitions", view)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{
		Member:      r.Name,
		Kind:        model.KindRecord,
		Definitions: defs,
	}, nil
}
