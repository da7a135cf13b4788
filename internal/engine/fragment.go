package engine

import (
	"strings"

	"github.com/rpl/application-services/internal/model"
)

// Fragment is the generated binding text of one member.
//
// Declarations are the raw FFI signatures (they go inside the backend's
// library declaration block); Definitions are native wrappers and
// conversion helpers.
type Fragment struct {
	Member       string           `json:"member"`
	Kind         model.MemberKind `json:"kind"`
	Symbols      []Signature      `json:"symbols"`
	Declarations string           `json:"declarations,omitempty"`
	Definitions  string           `json:"definitions,omitempty"`
}

// Text concatenates declarations and definitions.
func (f Fragment) Text() string {
	switch {
	case f.Declarations == "":
		return f.Definitions
	case f.Definitions == "":
		return f.Declarations
	default:
		return strings.TrimRight(f.Declarations, "\n") + "\n\n" + f.Definitions
	}
}

// SymbolNames returns the FFI symbol names of the fragment.
func (f Fragment) SymbolNames() []string {
	out := make([]string, len(f.Symbols))
	for i, s := range f.Symbols {
		out[i] = s.Symbol
	}
	return out
}
