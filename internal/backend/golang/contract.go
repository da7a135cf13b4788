package golang

import (
	"fmt"

	"github.com/rpl/application-services/internal/backend/gen"
	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
)

// Declare returns the C type used in the cgo preamble. Go code refers to
// it as C.<type>.
func (b *Backend) Declare(t model.TypeRef) (string, error) {
	switch t.(type) {
	case model.Boolean:
		return "int8_t", nil
	case model.U32, model.EnumRef:
		return "uint32_t", nil
	case model.U64, model.ObjectRef:
		return "uint64_t", nil
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
	case model.U32:
		return "uint32", nil
	case model.U64:
		return "uint64", nil
	case model.String:
		return "string", nil
	case model.EnumRef:
		return b.TypeName(tt.Name), nil
	case model.RecordRef:
		return b.TypeName(tt.Name), nil
	case model.ObjectRef:
		return "*" + b.TypeName(tt.Name), nil
	case model.Optional:
		inner, err := b.Native(tt.Inner)
		if err != nil {
			return "", err
		}
		if isObject(tt.Inner) {
			// Already a pointer; nil is absent.
			return inner, nil
		}
		return "*" + inner, nil
	case model.Sequence:
		elem, err := b.Native(tt.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case model.Map:
		k, err := b.Native(tt.Key)
		if err != nil {
			return "", err
		}
		v, err := b.Native(tt.Value)
		if err != nil {
			return "", err
		}
		return "map[" + k + "]" + v, nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) Lift(expr string, t model.TypeRef) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("(%s != 0)", expr), nil
	case model.U32:
		return fmt.Sprintf("uint32(%s)", expr), nil
	case model.U64:
		return fmt.Sprintf("uint64(%s)", expr), nil
	case model.String:
		return fmt.Sprintf("stringFromBuffer(%s)", expr), nil
	case model.EnumRef:
		return fmt.Sprintf("lift%s(uint32(%s))", b.TypeName(tt.Name), expr), nil
	case model.RecordRef:
		return fmt.Sprintf("lift%s(%s)", b.TypeName(tt.Name), expr), nil
	case model.ObjectRef:
		return fmt.Sprintf("new%sFromHandle(uint64(%s))", b.TypeName(tt.Name), expr), nil
	case model.Optional, model.Sequence, model.Map:
		native, err := b.Native(t)
		if err != nil {
			return "", err
		}
		read, err := b.read("r", t, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("valueFromBuffer(%s, func(r *reader) %s { return %s })", expr, native, read), nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) Lower(expr string, t model.TypeRef) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("boolToC(%s)", expr), nil
	case model.U32, model.EnumRef:
		return fmt.Sprintf("C.uint32_t(%s)", expr), nil
	case model.U64:
		return fmt.Sprintf("C.uint64_t(%s)", expr), nil
	case model.String:
		return fmt.Sprintf("stringToBuffer(%s)", expr), nil
	case model.RecordRef:
		return fmt.Sprintf("lower%s(%s)", b.TypeName(tt.Name), expr), nil
	case model.ObjectRef:
		return fmt.Sprintf("C.uint64_t(%s.lowerHandle())", expr), nil
	case model.Optional, model.Sequence, model.Map:
		write, err := b.write(expr, "w", t, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("valueToBuffer(func(w *writer) { %s })", write), nil
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

// read relies on Go evaluating calls left to right, including inside
// composite literals.
func (b *Backend) read(buf string, t model.TypeRef, depth int) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("(%s.readI8() != 0)", buf), nil
	case model.U32:
		return buf + ".readU32()", nil
	case model.U64:
		return buf + ".readU64()", nil
	case model.String:
		return buf + ".readString()", nil
	case model.EnumRef:
		return fmt.Sprintf("lift%s(%s.readU32())", b.TypeName(tt.Name), buf), nil
	case model.RecordRef:
		return fmt.Sprintf("read%s(%s)", b.TypeName(tt.Name), buf), nil
	case model.ObjectRef:
		return fmt.Sprintf("new%sFromHandle(%s.readU64())", b.TypeName(tt.Name), buf), nil
	case model.Optional:
		if isObject(tt.Inner) {
			return b.readWith(buf, "decodeNullable", depth, tt.Inner)
		}
		return b.readWith(buf, "decodeOptional", depth, tt.Inner)
	case model.Sequence:
		return b.readWith(buf, "decodeSequence", depth, tt.Elem)
	case model.Map:
		return b.readWith(buf, "decodeMap", depth, tt.Key, tt.Value)
	default:
		return "", engine.NoMapping(t)
	}
}

// readWith renders helper(buf, func(rN *reader) T { return ... }, ...).
func (b *Backend) readWith(buf, helper string, depth int, elems ...model.TypeRef) (string, error) {
	out := helper + "(" + buf
	for i, elem := range elems {
		r := gen.Var("r", depth*2+i)
		native, err := b.Native(elem)
		if err != nil {
			return "", err
		}
		read, err := b.read(r, elem, depth+1)
		if err != nil {
			return "", err
		}
		out += fmt.Sprintf(", func(%s *reader) %s { return %s }", r, native, read)
	}
	return out + ")", nil
}

func (b *Backend) write(expr, buf string, t model.TypeRef, depth int) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("%s.writeBool(%s)", buf, expr), nil
	case model.U32:
		return fmt.Sprintf("%s.writeU32(%s)", buf, expr), nil
	case model.U64:
		return fmt.Sprintf("%s.writeU64(%s)", buf, expr), nil
	case model.String:
		return fmt.Sprintf("%s.writeString(%s)", buf, expr), nil
	case model.EnumRef:
		return fmt.Sprintf("%s.writeU32(uint32(%s))", buf, expr), nil
	case model.RecordRef:
		return fmt.Sprintf("write%s(%s, %s)", b.TypeName(tt.Name), buf, expr), nil
	case model.ObjectRef:
		return fmt.Sprintf("%s.writeU64(%s.lowerHandle())", buf, expr), nil
	case model.Optional:
		if isObject(tt.Inner) {
			return b.writeWith(buf, expr, "encodeNullable", depth, tt.Inner)
		}
		return b.writeWith(buf, expr, "encodeOptional", depth, tt.Inner)
	case model.Sequence:
		return b.writeWith(buf, expr, "encodeSequence", depth, tt.Elem)
	case model.Map:
		return b.writeWith(buf, expr, "encodeMap", depth, tt.Key, tt.Value)
	default:
		return "", engine.NoMapping(t)
	}
}

// writeWith renders helper(buf, expr, func(wN *writer, vN T) { ... }, ...).
func (b *Backend) writeWith(buf, expr, helper string, depth int, elems ...model.TypeRef) (string, error) {
	out := helper + "(" + buf + ", " + expr
	for i, elem := range elems {
		w, v := gen.Var("w", depth*2+i), gen.Var("v", depth*2+i)
		native, err := b.Native(elem)
		if err != nil {
			return "", err
		}
		write, err := b.write(v, w, elem, depth+1)
		if err != nil {
			return "", err
		}
		out += fmt.Sprintf(", func(%s *writer, %s %s) { %s }", w, v, native, write)
	}
	return out + ")", nil
}

func isObject(t model.TypeRef) bool {
	_, ok := t.(model.ObjectRef)
	return ok
}
