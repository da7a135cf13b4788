package engine

import (
	"fmt"
	"strings"

	"github.com/rpl/application-services/internal/model"
)

// Symbol returns the FFI symbol of member inside scope: "{Scope}_{Member}".
// It is the only place symbol names are formed.
func Symbol(scope, member string) string {
	return scope + "_" + member
}

// FreeName is the member name of an object's free symbol.
const FreeName = "free"

// SymbolKind classifies an FFI symbol.
type SymbolKind string

const (
	SymbolFree        SymbolKind = "free"
	SymbolConstructor SymbolKind = "constructor"
	SymbolMethod      SymbolKind = "method"
	SymbolFunction    SymbolKind = "function"
	SymbolRuntime     SymbolKind = "runtime"
)

// Param is a backend-neutral parameter of an FFI symbol.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Signature is the backend-neutral shape of one FFI symbol. Every
// signature carries the trailing error-output slot.
type Signature struct {
	Symbol string     `json:"symbol"`
	Kind   SymbolKind `json:"kind"`
	Params []Param    `json:"params"`
	Return string     `json:"return,omitempty"`
	Throws bool       `json:"throws,omitempty"`

	// Origin describes the member that produced the symbol.
	Origin string `json:"origin"`
}

// HandleParam is the name of the handle parameter of free and method symbols.
const HandleParam = "handle"

// ErrorSlot is the rendering of the trailing error-output parameter.
const ErrorSlot = "err: &error"

// String renders the signature, e.g.
// "Counter_increment(handle: handle<Counter>, err: &error) -> u64".
func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+1)
	for _, p := range s.Params {
		parts = append(parts, p.Name+": "+p.Type)
	}
	parts = append(parts, ErrorSlot)

	out := s.Symbol + "(" + strings.Join(parts, ", ") + ")"
	if s.Return != "" {
		out += " -> " + s.Return
	}
	return out
}

// HandleTypeString renders the handle type of an object in signatures.
func HandleTypeString(object string) string {
	return "handle<" + object + ">"
}

// MemberSignatures returns the FFI symbols a member produces, in emission
// order. Records and enums produce none.
func MemberSignatures(index int, m model.Member) []Signature {
	switch mt := m.(type) {
	case *model.ObjectType:
		return objectSignatures(index, mt)
	case *model.NamespaceType:
		return namespaceSignatures(index, mt)
	default:
		return nil
	}
}

func origin(index int, m model.Member, what string) string {
	return fmt.Sprintf("members[%d] %s %s: %s", index, m.Kind(), m.MemberName(), what)
}

func objectSignatures(index int, o *model.ObjectType) []Signature {
	handle := Param{Name: HandleParam, Type: HandleTypeString(o.Name)}

	sigs := []Signature{{
		Symbol: Symbol(o.Name, FreeName),
		Kind:   SymbolFree,
		Params: []Param{handle},
		Origin: origin(index, o, "free"),
	}}

	for _, om := range o.Members {
		switch omt := om.(type) {
		case *model.Constructor:
			sigs = append(sigs, Signature{
				Symbol: Symbol(o.Name, omt.Name),
				Kind:   SymbolConstructor,
				Params: params(omt.Args),
				Return: HandleTypeString(o.Name),
				Throws: omt.Throws,
				Origin: origin(index, o, "constructor "+omt.Name),
			})
		case *model.Method:
			sigs = append(sigs, Signature{
				Symbol: Symbol(o.Name, omt.Name),
				Kind:   SymbolMethod,
				Params: append([]Param{handle}, params(omt.Args)...),
				Return: returnString(omt.Return),
				Throws: omt.Throws,
				Origin: origin(index, o, "method "+omt.Name),
			})
		}
	}
	return sigs
}

func namespaceSignatures(index int, n *model.NamespaceType) []Signature {
	sigs := make([]Signature, 0, len(n.Functions))
	for _, f := range n.Functions {
		sigs = append(sigs, Signature{
			Symbol: Symbol(n.Name, f.Name),
			Kind:   SymbolFunction,
			Params: params(f.Args),
			Return: returnString(f.Return),
			Throws: f.Throws,
			Origin: origin(index, n, "function "+f.Name),
		})
	}
	return sigs
}

func params(args []model.Argument) []Param {
	out := make([]Param, 0, len(args))
	for _, a := range args {
		out = append(out, Param{Name: a.Name, Type: model.TypeString(a.Type)})
	}
	return out
}

func returnString(t model.TypeRef) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// SymbolTable is the global set of FFI symbols of a component.
type SymbolTable struct {
	Component  string      `json:"component"`
	Signatures []Signature `json:"symbols"`

	// PerMember holds each member's signatures, indexed like
	// Component.Members.
	PerMember [][]Signature `json:"-"`
}

// RuntimeOrigin is the origin of the symbols every generated file declares
// for its own buffer and error support.
const RuntimeOrigin = "runtime support"

// RuntimeSymbols returns the support symbols the native library exports
// for component: buffer allocation, buffer release and error-message
// release. Members must not produce any of them.
func RuntimeSymbols(component string) []Signature {
	return []Signature{
		{
			Symbol: Symbol(component, "buffer_alloc"),
			Kind:   SymbolRuntime,
			Params: []Param{{Name: "size", Type: "i32"}},
			Return: "buffer",
			Origin: RuntimeOrigin,
		},
		{
			Symbol: Symbol(component, "buffer_free"),
			Kind:   SymbolRuntime,
			Params: []Param{{Name: "buf", Type: "buffer"}},
			Origin: RuntimeOrigin,
		},
		{
			Symbol: Symbol(component, "string_free"),
			Kind:   SymbolRuntime,
			Params: []Param{{Name: "message", Type: "cstring"}},
			Origin: RuntimeOrigin,
		},
	}
}

// BuildSymbolTable computes every FFI symbol of c and checks global
// uniqueness, including against the runtime support symbols. A collision
// returns a DUPLICATE_SYMBOL error naming both origins. The table holds
// member symbols only.
func BuildSymbolTable(c *model.Component) (*SymbolTable, error) {
	table := &SymbolTable{
		Component: c.Name,
		PerMember: make([][]Signature, len(c.Members)),
	}
	seen := make(map[string]string)
	for _, sig := range RuntimeSymbols(c.Name) {
		seen[sig.Symbol] = sig.Origin
	}

	for i, m := range c.Members {
		if m == nil {
			continue
		}
		sigs := MemberSignatures(i, m)
		for _, sig := range sigs {
			if first, dup := seen[sig.Symbol]; dup {
				return nil, NewDuplicateSymbolError(c.Name, sig.Symbol, first, sig.Origin)
			}
			seen[sig.Symbol] = sig.Origin
		}
		table.PerMember[i] = sigs
		table.Signatures = append(table.Signatures, sigs...)
	}
	return table, nil
}

// Lookup returns the signature of symbol.
func (t *SymbolTable) Lookup(symbol string) (Signature, bool) {
	for _, s := range t.Signatures {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return Signature{}, false
}

// Lines renders one signature per line, in emission order.
func (t *SymbolTable) Lines() []string {
	out := make([]string, len(t.Signatures))
	for i, s := range t.Signatures {
		out[i] = s.String()
	}
	return out
}
