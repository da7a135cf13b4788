package wire

import (
	"bytes"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/rpl/application-services/internal/model"
)

// ParseJSON decodes a JSON document into a Value of type t.
//
// Booleans and strings map directly; integers must be JSON numbers; enums
// are variant names; objects are handle numbers; records are JSON objects
// keyed by field name; optionals use null for none; maps are JSON objects
// whose keys are parsed according to the key type.
func (c *Codec) ParseJSON(t model.TypeRef, data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode JSON value")
	}
	return c.fromJSON(t, raw)
}

func (c *Codec) fromJSON(t model.TypeRef, raw any) (Value, error) {
	switch tt := t.(type) {
	case model.Boolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, jsonMismatch(t, raw)
		}
		return Bool(b), nil
	case model.U32:
		u, err := jsonUint(raw, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "u32")
		}
		return U32(u), nil
	case model.U64:
		u, err := jsonUint(raw, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "u64")
		}
		return U64(u), nil
	case model.ObjectRef:
		u, err := jsonUint(raw, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "handle %s", tt.Name)
		}
		return Handle(u), nil
	case model.String:
		s, ok := raw.(string)
		if !ok {
			return nil, jsonMismatch(t, raw)
		}
		return Str(s), nil
	case model.EnumRef:
		s, ok := raw.(string)
		if !ok {
			return nil, jsonMismatch(t, raw)
		}
		return Enum{Variant: s}, nil
	case model.RecordRef:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, jsonMismatch(t, raw)
		}
		rt, err := c.record(tt)
		if err != nil {
			return nil, err
		}
		rec := make(Record, len(rt.Fields))
		for _, f := range rt.Fields {
			fraw, ok := obj[f.Name]
			if !ok {
				return nil, errors.Newf("record %s: missing field %q", rt.Name, f.Name)
			}
			fv, err := c.fromJSON(f.Type, fraw)
			if err != nil {
				return nil, errors.Wrapf(err, "%s.%s", rt.Name, f.Name)
			}
			rec[f.Name] = fv
		}
		return rec, nil
	case model.Optional:
		if raw == nil {
			return None, nil
		}
		inner, err := c.fromJSON(tt.Inner, raw)
		if err != nil {
			return nil, err
		}
		return Some(inner), nil
	case model.Sequence:
		arr, ok := raw.([]any)
		if !ok {
			return nil, jsonMismatch(t, raw)
		}
		out := make(Sequence, 0, len(arr))
		for i, item := range arr {
			v, err := c.fromJSON(tt.Elem, item)
			if err != nil {
				return nil, errors.Wrapf(err, "[%d]", i)
			}
			out = append(out, v)
		}
		return out, nil
	case model.Map:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, jsonMismatch(t, raw)
		}
		keys := sortedKeys(obj)
		out := make(Map, 0, len(obj))
		for _, k := range keys {
			kv, err := c.keyFromString(tt.Key, k)
			if err != nil {
				return nil, err
			}
			vv, err := c.fromJSON(tt.Value, obj[k])
			if err != nil {
				return nil, errors.Wrapf(err, "[%q]", k)
			}
			out = append(out, Entry{Key: kv, Value: vv})
		}
		return out, nil
	default:
		return nil, errors.Newf("cannot parse type %s", model.TypeString(t))
	}
}

func (c *Codec) keyFromString(t model.TypeRef, s string) (Value, error) {
	switch t.(type) {
	case model.String:
		return Str(s), nil
	case model.EnumRef:
		return Enum{Variant: s}, nil
	case model.Boolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errors.Wrapf(err, "map key %q", s)
		}
		return Bool(b), nil
	case model.U32:
		u, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "map key %q", s)
		}
		return U32(u), nil
	case model.U64:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "map key %q", s)
		}
		return U64(u), nil
	default:
		return nil, errors.Newf("unsupported map key type %s", model.TypeString(t))
	}
}

func jsonUint(raw any, bits int) (uint64, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return 0, errors.Newf("expected number, got %T", raw)
	}
	return strconv.ParseUint(n.String(), 10, bits)
}

func jsonMismatch(t model.TypeRef, raw any) error {
	return errors.Newf("JSON %T does not match %s", raw, model.TypeString(t))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
