package compiler

import (
	"fmt"
	"strings"

	"github.com/rpl/application-services/internal/model"
)

// TypeExprError reports a malformed type expression.
type TypeExprError struct {
	Expr    string
	Offset  int
	Message string
}

func (e *TypeExprError) Error() string {
	return fmt.Sprintf("type %q at offset %d: %s", e.Expr, e.Offset, e.Message)
}

// UnresolvedNameError reports a bare name that names no member.
type UnresolvedNameError struct {
	Name string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("unresolved type name %q", e.Name)
}

// KindResolver maps a bare member name to its kind.
type KindResolver func(name string) (model.MemberKind, bool)

// ParseType parses a type expression such as "optional<sequence<Point>>".
// Bare names are resolved through resolve into EnumRef, RecordRef or
// ObjectRef; a name of another kind is an error.
//
// Grammar:
//
//	type := "bool" | "u32" | "u64" | "string" | Name
//	      | "optional<" type ">" | "sequence<" type ">"
//	      | "map<" type "," type ">"
func ParseType(expr string, resolve KindResolver) (model.TypeRef, error) {
	p := &typeParser{src: expr, resolve: resolve}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src     string
	pos     int
	resolve KindResolver
}

func (p *typeParser) errorf(format string, args ...any) error {
	return &TypeExprError{Expr: p.src, Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos], p.pos == start) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *typeParser) parseType() (model.TypeRef, error) {
	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected type name")
	}

	switch name {
	case "bool":
		return model.Boolean{}, nil
	case "u32":
		return model.U32{}, nil
	case "u64":
		return model.U64{}, nil
	case "string":
		return model.String{}, nil
	case "optional", "sequence":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		if name == "optional" {
			return model.Optional{Inner: inner}, nil
		}
		return model.Sequence{Elem: inner}, nil
	case "map":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return model.Map{Key: key, Value: value}, nil
	}

	if p.resolve == nil {
		return nil, &UnresolvedNameError{Name: name}
	}
	kind, ok := p.resolve(name)
	if !ok {
		return nil, &UnresolvedNameError{Name: name}
	}
	switch kind {
	case model.KindEnum:
		return model.EnumRef{Name: name}, nil
	case model.KindRecord:
		return model.RecordRef{Name: name}, nil
	case model.KindObject:
		return model.ObjectRef{Name: name}, nil
	default:
		return nil, p.errorf("%s %q cannot be used as a type", kind, name)
	}
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	default:
		return false
	}
}

// normalizeTypeExpr trims surrounding whitespace so "  u32 " parses.
func normalizeTypeExpr(expr string) string {
	return strings.TrimSpace(expr)
}

// ParseTypeIn parses expr with bare names resolved against the members
// of c.
func ParseTypeIn(c *model.Component, expr string) (model.TypeRef, error) {
	return ParseType(normalizeTypeExpr(expr), func(name string) (model.MemberKind, bool) {
		m, ok := c.Lookup(name)
		if !ok {
			return "", false
		}
		return m.Kind(), true
	})
}
