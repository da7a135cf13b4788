package python

import (
	"fmt"

	"github.com/rpl/application-services/internal/backend/gen"
	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
)

// Python has no statements inside lambdas, so Write returns expressions
// too: composite writers are helper calls taking a lambda per element.

func (b *Backend) Declare(t model.TypeRef) (string, error) {
	switch t.(type) {
	case model.Boolean:
		return "ctypes.c_int8", nil
	case model.U32, model.EnumRef:
		return "ctypes.c_uint32", nil
	case model.U64, model.ObjectRef:
		return "ctypes.c_uint64", nil
	case model.String, model.RecordRef, model.Optional, model.Sequence, model.Map:
		return "RustBuffer", nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) Native(t model.TypeRef) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return "bool", nil
	case model.U32, model.U64:
		return "int", nil
	case model.String:
		return "str", nil
	case model.EnumRef:
		return b.TypeName(tt.Name), nil
	case model.RecordRef:
		return b.TypeName(tt.Name), nil
	case model.ObjectRef:
		return b.TypeName(tt.Name), nil
	case model.Optional:
		inner, err := b.Native(tt.Inner)
		if err != nil {
			return "", err
		}
		return "typing.Optional[" + inner + "]", nil
	case model.Sequence:
		elem, err := b.Native(tt.Elem)
		if err != nil {
			return "", err
		}
		return "typing.List[" + elem + "]", nil
	case model.Map:
		k, err := b.Native(tt.Key)
		if err != nil {
			return "", err
		}
		v, err := b.Native(tt.Value)
		if err != nil {
			return "", err
		}
		return "typing.Dict[" + k + ", " + v + "]", nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) Lift(expr string, t model.TypeRef) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("(%s != 0)", expr), nil
	case model.U32, model.U64:
		return fmt.Sprintf("int(%s)", expr), nil
	case model.String:
		return fmt.Sprintf("_lift_string(%s)", expr), nil
	case model.EnumRef, model.RecordRef:
		return fmt.Sprintf("%s._lift(%s)", b.TypeName(model.TypeString(tt)), expr), nil
	case model.ObjectRef:
		return fmt.Sprintf("%s._from_handle(%s)", b.TypeName(tt.Name), expr), nil
	case model.Optional, model.Sequence, model.Map:
		read, err := b.read("buf", t, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("_lift_from_buffer(%s, lambda buf: %s)", expr, read), nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) Lower(expr string, t model.TypeRef) (string, error) {
	switch t.(type) {
	case model.Boolean:
		return fmt.Sprintf("(1 if %s else 0)", expr), nil
	case model.U32:
		return fmt.Sprintf("_check_u32(%s)", expr), nil
	case model.U64:
		return fmt.Sprintf("_check_u64(%s)", expr), nil
	case model.String:
		return fmt.Sprintf("_lower_string(%s)", expr), nil
	case model.EnumRef:
		return fmt.Sprintf("int(%s)", expr), nil
	case model.RecordRef, model.ObjectRef:
		return expr + "._lower()", nil
	case model.Optional, model.Sequence, model.Map:
		write, err := b.write(expr, "buf", t, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("_lower_into_buffer(lambda buf: %s)", write), nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) Read(buf string, t model.TypeRef) (string, error) {
	return b.read(buf, t, 0)
}

func (b *Backend) Write(expr, buf string, t model.TypeRef) (string, error) {
	return b.write(expr, buf, t, 0)
}

// read relies on Python evaluating conditions before branches and tuple
// items left to right, which keeps the stream order.
func (b *Backend) read(buf string, t model.TypeRef, depth int) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("(%s.read_i8() != 0)", buf), nil
	case model.U32:
		return buf + ".read_u32()", nil
	case model.U64:
		return buf + ".read_u64()", nil
	case model.String:
		return buf + ".read_string()", nil
	case model.EnumRef:
		return fmt.Sprintf("%s._lift(%s.read_u32())", b.TypeName(tt.Name), buf), nil
	case model.RecordRef:
		return fmt.Sprintf("%s._read(%s)", b.TypeName(tt.Name), buf), nil
	case model.ObjectRef:
		return fmt.Sprintf("%s._from_handle(%s.read_u64())", b.TypeName(tt.Name), buf), nil
	case model.Optional:
		inner, err := b.read(buf, tt.Inner, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s if %s.read_tag() else None)", inner, buf), nil
	case model.Sequence:
		elem, err := b.read(buf, tt.Elem, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%s for _ in range(%s.read_count())]", elem, buf), nil
	case model.Map:
		k, err := b.read(buf, tt.Key, depth+1)
		if err != nil {
			return "", err
		}
		v, err := b.read(buf, tt.Value, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("dict((%s, %s) for _ in range(%s.read_count()))", k, v, buf), nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) write(expr, buf string, t model.TypeRef, depth int) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("%s.write_i8(1 if %s else 0)", buf, expr), nil
	case model.U32:
		return fmt.Sprintf("%s.write_u32(%s)", buf, expr), nil
	case model.U64:
		return fmt.Sprintf("%s.write_u64(%s)", buf, expr), nil
	case model.String:
		return fmt.Sprintf("%s.write_string(%s)", buf, expr), nil
	case model.EnumRef:
		return fmt.Sprintf("%s.write_u32(int(%s))", buf, expr), nil
	case model.RecordRef:
		return fmt.Sprintf("%s._write(%s)", expr, buf), nil
	case model.ObjectRef:
		return fmt.Sprintf("%s.write_u64(%s._lower())", buf, expr), nil
	case model.Optional:
		v := gen.Var("v", depth)
		inner, err := b.write(v, buf, tt.Inner, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.write_optional(%s, lambda %s: %s)", buf, expr, v, inner), nil
	case model.Sequence:
		e := gen.Var("e", depth)
		elem, err := b.write(e, buf, tt.Elem, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.write_sequence(%s, lambda %s: %s)", buf, expr, e, elem), nil
	case model.Map:
		k, e := gen.Var("k", depth), gen.Var("e", depth)
		key, err := b.write(k, buf, tt.Key, depth+1)
		if err != nil {
			return "", err
		}
		val, err := b.write(e, buf, tt.Value, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.write_map(%s, lambda %s: %s, lambda %s: %s)", buf, expr, k, key, e, val), nil
	default:
		return "", engine.NoMapping(t)
	}
}
