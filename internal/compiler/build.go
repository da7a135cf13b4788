package compiler

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/rpl/application-services/internal/model"
)

// Build converts a source document into a resolved interface model and
// validates it. All problems are collected; on any problem the returned
// error is a ValidationErrors and the component is nil.
func Build(doc *ComponentDoc) (*model.Component, error) {
	b := &builder{kinds: make(map[string]model.MemberKind)}
	c := b.build(doc)
	if len(b.errs) > 0 {
		return nil, b.errs
	}
	if errs := Validate(c); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return c, nil
}

type builder struct {
	kinds map[string]model.MemberKind
	errs  ValidationErrors
}

func (b *builder) add(field, code, format string, args ...any) {
	b.errs = append(b.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (b *builder) build(doc *ComponentDoc) *model.Component {
	c := &model.Component{Name: doc.Component}

	// First pass: member kinds, so type expressions can name members
	// declared later in the document.
	for _, md := range doc.Members {
		name, kind, ok := memberHeader(md)
		if !ok {
			continue
		}
		if _, seen := b.kinds[name]; !seen {
			b.kinds[name] = kind
		}
	}

	for i, md := range doc.Members {
		name, kind, ok := memberHeader(md)
		if !ok {
			b.add(fmt.Sprintf("members[%d]", i), ErrMemberKind,
				"member must set exactly one of object, record, namespace or enum")
			continue
		}
		path := fmt.Sprintf("members[%d]", i)
		switch kind {
		case model.KindObject:
			c.Members = append(c.Members, b.object(path, name, md))
		case model.KindRecord:
			c.Members = append(c.Members, b.record(path, name, md))
		case model.KindNamespace:
			c.Members = append(c.Members, b.namespace(path, name, md))
		case model.KindEnum:
			c.Members = append(c.Members, b.enum(name, md))
		}
	}
	return c
}

func memberHeader(md MemberDoc) (string, model.MemberKind, bool) {
	var (
		name  string
		kind  model.MemberKind
		count int
	)
	if md.Object != "" {
		name, kind = md.Object, model.KindObject
		count++
	}
	if md.Record != "" {
		name, kind = md.Record, model.KindRecord
		count++
	}
	if md.Namespace != "" {
		name, kind = md.Namespace, model.KindNamespace
		count++
	}
	if md.Enum != "" {
		name, kind = md.Enum, model.KindEnum
		count++
	}
	return name, kind, count == 1
}

func (b *builder) object(path, name string, md MemberDoc) *model.ObjectType {
	obj := &model.ObjectType{Name: name, Doc: md.Doc}
	unnamed := 0
	for j, om := range md.Members {
		mpath := fmt.Sprintf("%s.members[%d]", path, j)
		switch {
		case om.Constructor != nil && om.Method != "":
			b.add(mpath, ErrMemberKind, "entry sets both constructor and method")
		case om.Constructor != nil:
			ctorName := *om.Constructor
			if ctorName == "" {
				unnamed++
				if unnamed > 1 {
					b.add(mpath, ErrMultiplePrimary, "object %q has more than one unnamed constructor", name)
				}
				ctorName = model.PrimaryConstructorName
			}
			obj.Members = append(obj.Members, &model.Constructor{
				Name:   ctorName,
				Doc:    om.Doc,
				Args:   b.args(mpath, om.Args),
				Throws: om.Throws,
			})
		case om.Method != "":
			obj.Members = append(obj.Members, &model.Method{
				Name:   om.Method,
				Doc:    om.Doc,
				Args:   b.args(mpath, om.Args),
				Return: b.optionalType(mpath+".returns", om.Returns),
				Throws: om.Throws,
			})
		default:
			b.add(mpath, ErrMemberKind, "entry must set constructor or method")
		}
	}
	return obj
}

func (b *builder) record(path, name string, md MemberDoc) *model.RecordType {
	rec := &model.RecordType{Name: name, Doc: md.Doc}
	for j, f := range md.Fields {
		rec.Fields = append(rec.Fields, model.Field{
			Name: f.Name,
			Type: b.typeRef(fmt.Sprintf("%s.fields[%d].type", path, j), f.Type),
		})
	}
	return rec
}

func (b *builder) namespace(path, name string, md MemberDoc) *model.NamespaceType {
	ns := &model.NamespaceType{Name: name, Doc: md.Doc}
	for j, fd := range md.Functions {
		fpath := fmt.Sprintf("%s.functions[%d]", path, j)
		ns.Functions = append(ns.Functions, model.Function{
			Name:   fd.Name,
			Doc:    fd.Doc,
			Args:   b.args(fpath, fd.Args),
			Return: b.optionalType(fpath+".returns", fd.Returns),
			Throws: fd.Throws,
		})
	}
	return ns
}

func (b *builder) enum(name string, md MemberDoc) *model.EnumType {
	e := &model.EnumType{Name: name, Doc: md.Doc}
	next := int64(0)
	for _, vd := range md.Variants {
		d := next
		if vd.Discriminant != nil {
			d = *vd.Discriminant
		}
		e.Variants = append(e.Variants, model.Variant{Name: vd.Name, Discriminant: d})
		next = d + 1
	}
	return e
}

func (b *builder) args(path string, docs []ArgDoc) []model.Argument {
	var args []model.Argument
	for k, a := range docs {
		args = append(args, model.Argument{
			Name: a.Name,
			Type: b.typeRef(fmt.Sprintf("%s.args[%d].type", path, k), a.Type),
		})
	}
	return args
}

func (b *builder) optionalType(path, expr string) model.TypeRef {
	if normalizeTypeExpr(expr) == "" {
		return nil
	}
	return b.typeRef(path, expr)
}

func (b *builder) typeRef(path, expr string) model.TypeRef {
	t, err := ParseType(normalizeTypeExpr(expr), func(name string) (model.MemberKind, bool) {
		k, ok := b.kinds[name]
		return k, ok
	})
	if err != nil {
		var unresolved *UnresolvedNameError
		if errors.As(err, &unresolved) {
			b.add(path, ErrUnresolvedRef, "%s", unresolved.Error())
		} else {
			b.add(path, ErrInvalidTypeExpr, "%s", err.Error())
		}
		// Build discards the component once an error is recorded.
		return model.String{}
	}
	return t
}
