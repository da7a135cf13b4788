package model

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// CanonicalMap converts a component into a tree of maps, slices, strings,
// int64 and bools. Member kinds are tagged explicitly so the tree is
// unambiguous. The tree feeds MarshalCanonical and JSON output.
func (c *Component) CanonicalMap() map[string]any {
	members := make([]any, 0, len(c.Members))
	for _, m := range c.Members {
		members = append(members, memberMap(m))
	}
	return map[string]any{
		"name":    c.Name,
		"members": members,
	}
}

func memberMap(m Member) map[string]any {
	out := map[string]any{
		"kind": string(m.Kind()),
		"name": m.MemberName(),
	}
	switch mt := m.(type) {
	case *ObjectType:
		items := make([]any, 0, len(mt.Members))
		for _, om := range mt.Members {
			switch omt := om.(type) {
			case *Constructor:
				items = append(items, map[string]any{
					"kind":   "constructor",
					"name":   omt.Name,
					"args":   argsList(omt.Args),
					"throws": omt.Throws,
				})
			case *Method:
				item := map[string]any{
					"kind":   "method",
					"name":   omt.Name,
					"args":   argsList(omt.Args),
					"throws": omt.Throws,
				}
				if omt.Return != nil {
					item["return"] = omt.Return.String()
				}
				items = append(items, item)
			}
		}
		out["members"] = items
	case *RecordType:
		fields := make([]any, 0, len(mt.Fields))
		for _, f := range mt.Fields {
			fields = append(fields, map[string]any{"name": f.Name, "type": TypeString(f.Type)})
		}
		out["fields"] = fields
	case *NamespaceType:
		fns := make([]any, 0, len(mt.Functions))
		for _, f := range mt.Functions {
			item := map[string]any{
				"name":   f.Name,
				"args":   argsList(f.Args),
				"throws": f.Throws,
			}
			if f.Return != nil {
				item["return"] = f.Return.String()
			}
			fns = append(fns, item)
		}
		out["functions"] = fns
	case *EnumType:
		variants := make([]any, 0, len(mt.Variants))
		for _, v := range mt.Variants {
			variants = append(variants, map[string]any{"name": v.Name, "discriminant": v.Discriminant})
		}
		out["variants"] = variants
	}
	return out
}

func argsList(args []Argument) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		out = append(out, map[string]any{"name": a.Name, "type": TypeString(a.Type)})
	}
	return out
}

// MarshalCanonical produces canonical JSON for hashing.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Floats and null are rejected
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		writeCanonicalString(buf, val)
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareUTF16)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString escapes only quote, backslash and control characters.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

// compareUTF16 orders strings by UTF-16 code units as RFC 8785 requires.
// Go's native string comparison uses UTF-8 bytes, which differs for
// characters outside the BMP.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
