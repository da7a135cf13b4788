package engine

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/rpl/application-services/internal/model"
)

// generator holds what every member generator reads. It is immutable and
// shared between workers.
type generator struct {
	component *model.Component
	backend   Backend
}

// memberError builds a GenerationError located at member and path.
func (g *generator) memberError(code GenerationErrorCode, member, path string, t model.TypeRef, cause error, format string, args ...any) *GenerationError {
	ge := &GenerationError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Component: g.component.Name,
		Member:    member,
		Path:      path,
		Err:       cause,
	}
	if t != nil {
		ge.Type = t.String()
	}
	return ge
}

// resolveAll checks that every named reference inside t resolves.
func (g *generator) resolveAll(member, path string, t model.TypeRef) error {
	if t == nil {
		return g.memberError(ErrCodeMalformedModel, member, path, nil, nil, "missing type")
	}
	var err error
	model.Walk(t, func(tr model.TypeRef) bool {
		if _, _, named := model.NamedRef(tr); !named {
			return true
		}
		if _, rerr := g.component.Resolve(tr); rerr != nil {
			err = g.memberError(ErrCodeUnresolvedType, member, path, tr, rerr, "%s", rerr.Error())
			return false
		}
		return true
	})
	return err
}

// contract calls one contract function and classifies its failure.
func (g *generator) contract(member, path string, t model.TypeRef, fn func() (string, error)) (string, error) {
	if err := g.resolveAll(member, path, t); err != nil {
		return "", err
	}
	out, err := fn()
	if err != nil {
		if errors.Is(err, ErrNoMapping) {
			return "", g.memberError(ErrCodeMissingMapping, member, path, t, err,
				"backend %s has no mapping for %s", g.backend.Name(), t)
		}
		return "", g.memberError(ErrCodeMissingMapping, member, path, t, err,
			"backend %s failed to map %s: %v", g.backend.Name(), t, err)
	}
	return out, nil
}

func (g *generator) declare(member, path string, t model.TypeRef) (string, error) {
	return g.contract(member, path, t, func() (string, error) { return g.backend.Declare(t) })
}

func (g *generator) native(member, path string, t model.TypeRef) (string, error) {
	return g.contract(member, path, t, func() (string, error) { return g.backend.Native(t) })
}

func (g *generator) lift(member, path, expr string, t model.TypeRef) (string, error) {
	return g.contract(member, path, t, func() (string, error) { return g.backend.Lift(expr, t) })
}

func (g *generator) lower(member, path, expr string, t model.TypeRef) (string, error) {
	return g.contract(member, path, t, func() (string, error) { return g.backend.Lower(expr, t) })
}

func (g *generator) read(member, path, buf string, t model.TypeRef) (string, error) {
	return g.contract(member, path, t, func() (string, error) { return g.backend.Read(buf, t) })
}

func (g *generator) write(member, path, expr, buf string, t model.TypeRef) (string, error) {
	return g.contract(member, path, t, func() (string, error) { return g.backend.Write(expr, buf, t) })
}

// params builds the parameter views of a function's arguments.
func (g *generator) params(member, path string, args []model.Argument) ([]ParamView, error) {
	out := make([]ParamView, 0, len(args))
	for i, a := range args {
		apath := fmt.Sprintf("%s.args[%d]", path, i)
		name := g.backend.ArgName(a.Name)

		native, err := g.native(member, apath, a.Type)
		if err != nil {
			return nil, err
		}
		declared, err := g.declare(member, apath, a.Type)
		if err != nil {
			return nil, err
		}
		lowered, err := g.lower(member, apath, name, a.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, ParamView{
			Name:     name,
			Raw:      a.Name,
			Type:     a.Type.String(),
			Native:   native,
			Declared: declared,
			Lowered:  lowered,
		})
	}
	return out, nil
}

// returns fills the return fields of fv for t; a nil t means no return.
func (g *generator) returns(member, path string, t model.TypeRef, fv *FuncView) error {
	if t == nil {
		return nil
	}
	rpath := path + ".returns"

	var err error
	if fv.ReturnNative, err = g.native(member, rpath, t); err != nil {
		return err
	}
	if fv.ReturnDeclared, err = g.declare(member, rpath, t); err != nil {
		return err
	}
	if fv.ReturnLifted, err = g.lift(member, rpath, ReturnVar, t); err != nil {
		return err
	}
	fv.HasReturn = true
	fv.ReturnType = t.String()
	return nil
}

// render executes one backend template.
func (g *generator) render(member, name string, data any) (string, error) {
	tmpl := g.backend.Templates().Lookup(name)
	if tmpl == nil {
		return "", g.memberError(ErrCodeRenderFailed, member, "", nil, nil,
			"backend %s has no template %q", g.backend.Name(), name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", g.memberError(ErrCodeRenderFailed, member, "", nil, err,
			"backend %s: template %q: %v", g.backend.Name(), name, err)
	}
	return buf.String(), nil
}
