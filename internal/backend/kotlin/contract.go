package kotlin

import (
	"fmt"

	"github.com/rpl/application-services/internal/backend/gen"
	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
)

// rustBuffer is the declared type of every buffer-carried value.
const rustBuffer = "RustBuffer.ByValue"

func (b *Backend) Declare(t model.TypeRef) (string, error) {
	switch t.(type) {
	case model.Boolean:
		return "Byte", nil
	case model.U32, model.EnumRef:
		return "Int", nil
	case model.U64:
		return "Long", nil
	case model.ObjectRef:
		return "Handle", nil
	case model.String, model.RecordRef, model.Optional, model.Sequence, model.Map:
		return rustBuffer, nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) Native(t model.TypeRef) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return "Boolean", nil
	case model.U32:
		return "UInt", nil
	case model.U64:
		return "ULong", nil
	case model.String:
		return "String", nil
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
		return inner + "?", nil
	case model.Sequence:
		elem, err := b.Native(tt.Elem)
		if err != nil {
			return "", err
		}
		return "List<" + elem + ">", nil
	case model.Map:
		k, err := b.Native(tt.Key)
		if err != nil {
			return "", err
		}
		v, err := b.Native(tt.Value)
		if err != nil {
			return "", err
		}
		return "Map<" + k + ", " + v + ">", nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) Lift(expr string, t model.TypeRef) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("(%s.toInt() != 0)", expr), nil
	case model.U32:
		return expr + ".toUInt()", nil
	case model.U64:
		return expr + ".toULong()", nil
	case model.String:
		return fmt.Sprintf("liftString(%s)", expr), nil
	case model.EnumRef:
		return fmt.Sprintf("%s.lift(%s)", b.TypeName(tt.Name), expr), nil
	case model.RecordRef:
		return fmt.Sprintf("%s.lift(%s)", b.TypeName(tt.Name), expr), nil
	case model.ObjectRef:
		return fmt.Sprintf("%s(%s)", b.TypeName(tt.Name), expr), nil
	case model.Optional, model.Sequence, model.Map:
		read, err := b.read("buf", t, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("liftFromRustBuffer(%s) { buf -> %s }", expr, read), nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) Lower(expr string, t model.TypeRef) (string, error) {
	switch t.(type) {
	case model.Boolean:
		return fmt.Sprintf("(if (%s) 1 else 0).toByte()", expr), nil
	case model.U32:
		return expr + ".toInt()", nil
	case model.U64:
		return expr + ".toLong()", nil
	case model.String:
		return fmt.Sprintf("lowerString(%s)", expr), nil
	case model.EnumRef, model.RecordRef, model.ObjectRef:
		return expr + ".lower()", nil
	case model.Optional, model.Sequence, model.Map:
		write, err := b.write(expr, "buf", t, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("lowerIntoRustBuffer { buf -> %s }", write), nil
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

func (b *Backend) read(buf string, t model.TypeRef, depth int) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("(%s.get().toInt() != 0)", buf), nil
	case model.U32:
		return buf + ".getInt().toUInt()", nil
	case model.U64:
		return buf + ".getLong().toULong()", nil
	case model.String:
		return fmt.Sprintf("readString(%s)", buf), nil
	case model.EnumRef:
		return fmt.Sprintf("%s.read(%s)", b.TypeName(tt.Name), buf), nil
	case model.RecordRef:
		return fmt.Sprintf("%s.read(%s)", b.TypeName(tt.Name), buf), nil
	case model.ObjectRef:
		return fmt.Sprintf("%s(%s.getLong())", b.TypeName(tt.Name), buf), nil
	case model.Optional:
		inner, err := b.read(buf, tt.Inner, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(if (%s.get().toInt() == 0) null else %s)", buf, inner), nil
	case model.Sequence:
		elem, err := b.read(buf, tt.Elem, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("List(%s.getInt()) { %s }", buf, elem), nil
	case model.Map:
		k, err := b.read(buf, tt.Key, depth+1)
		if err != nil {
			return "", err
		}
		v, err := b.read(buf, tt.Value, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(0 until %s.getInt()).associate { %s to %s }", buf, k, v), nil
	default:
		return "", engine.NoMapping(t)
	}
}

func (b *Backend) write(expr, buf string, t model.TypeRef, depth int) (string, error) {
	switch tt := t.(type) {
	case model.Boolean:
		return fmt.Sprintf("%s.put((if (%s) 1 else 0).toByte())", buf, expr), nil
	case model.U32:
		return fmt.Sprintf("%s.putInt(%s.toInt())", buf, expr), nil
	case model.U64:
		return fmt.Sprintf("%s.putLong(%s.toLong())", buf, expr), nil
	case model.String:
		return fmt.Sprintf("writeString(%s, %s)", expr, buf), nil
	case model.EnumRef, model.RecordRef:
		return fmt.Sprintf("%s.write(%s)", expr, buf), nil
	case model.ObjectRef:
		return fmt.Sprintf("%s.putLong(%s.lower())", buf, expr), nil
	case model.Optional:
		v := gen.Var("v", depth)
		inner, err := b.write(v, buf, tt.Inner, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.let { %s -> if (%s == null) { %s.put(0.toByte()) } else { %s.put(1.toByte()); %s } }",
			expr, v, v, buf, buf, inner), nil
	case model.Sequence:
		v, e := gen.Var("v", depth), gen.Var("e", depth)
		elem, err := b.write(e, buf, tt.Elem, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.let { %s -> %s.putInt(%s.size); %s.forEach { %s -> %s } }",
			expr, v, buf, v, v, e, elem), nil
	case model.Map:
		v, k, e := gen.Var("v", depth), gen.Var("k", depth), gen.Var("e", depth)
		key, err := b.write(k, buf, tt.Key, depth+1)
		if err != nil {
			return "", err
		}
		val, err := b.write(e, buf, tt.Value, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.let { %s -> %s.putInt(%s.size); %s.forEach { (%s, %s) -> %s; %s } }",
			expr, v, buf, v, v, k, e, key, val), nil
	default:
		return "", engine.NoMapping(t)
	}
}
