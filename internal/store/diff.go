package store

import (
	"github.com/rpl/application-services/internal/engine"
)

// Change is a symbol whose signature differs between two runs.
type Change struct {
	Symbol string `json:"symbol"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// ABIDiff compares the symbols of two runs.
type ABIDiff struct {
	Removed []engine.Signature `json:"removed"`
	Changed []Change           `json:"changed"`
	Added   []engine.Signature `json:"added"`
}

// Empty reports whether the two runs expose the same ABI.
func (d ABIDiff) Empty() bool {
	return len(d.Removed) == 0 && len(d.Changed) == 0 && len(d.Added) == 0
}

// Breaking reports whether existing callers are affected. Added symbols
// are not breaking.
func (d ABIDiff) Breaking() bool {
	return len(d.Removed) > 0 || len(d.Changed) > 0
}

// Diff compares before and after by symbol name. Removed symbols keep the
// order of before; changed and added symbols keep the order of after.
func Diff(before, after []engine.Signature) ABIDiff {
	prev := make(map[string]engine.Signature, len(before))
	for _, s := range before {
		prev[s.Symbol] = s
	}
	next := make(map[string]struct{}, len(after))

	d := ABIDiff{}
	for _, s := range after {
		next[s.Symbol] = struct{}{}
		old, ok := prev[s.Symbol]
		switch {
		case !ok:
			d.Added = append(d.Added, s)
		case abiKey(old) != abiKey(s):
			d.Changed = append(d.Changed, Change{Symbol: s.Symbol, Before: abiKey(old), After: abiKey(s)})
		}
	}
	for _, s := range before {
		if _, ok := next[s.Symbol]; !ok {
			d.Removed = append(d.Removed, s)
		}
	}
	return d
}

// abiKey is the part of a signature that callers depend on. Origin is
// documentation and does not count.
func abiKey(s engine.Signature) string {
	key := s.String()
	if s.Throws {
		key += " throws"
	}
	return key
}
