// Package backend selects a binding backend by name.
//
// Backends register a factory under their name; the dispatcher in
// internal/engine never changes when a backend is added.
package backend

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/rpl/application-services/internal/backend/golang"
	"github.com/rpl/application-services/internal/backend/kotlin"
	"github.com/rpl/application-services/internal/backend/python"
	"github.com/rpl/application-services/internal/engine"
)

// Default is the backend used when none is configured.
const Default = kotlin.Name

// Factory builds a backend. Backends are immutable, so a factory may
// return a shared instance.
type Factory func() engine.Backend

// ErrUnknownBackend is returned by Lookup for an unregistered name.
var ErrUnknownBackend = errors.New("unknown backend")

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

func init() {
	Register(kotlin.Name, func() engine.Backend { return kotlin.New() })
	Register(python.Name, func() engine.Backend { return python.New() })
	Register(golang.Name, func() engine.Backend { return golang.New() })
}

// Register makes a backend available by name. Registering a name twice
// panics.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if name == "" || f == nil {
		panic("backend: Register with empty name or nil factory")
	}
	if _, dup := factories[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	factories[name] = f
}

// Lookup returns a new instance of the named backend.
func Lookup(name string) (engine.Backend, error) {
	mu.RLock()
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	mu.RUnlock()
	if !ok {
		return nil, errors.WithHintf(
			errors.Wrapf(ErrUnknownBackend, "%q", name),
			"available backends: %s", strings.Join(Names(), ", "))
	}
	return f(), nil
}

// Names returns the registered backend names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
