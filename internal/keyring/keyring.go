package keyring

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

var ErrNoKeys = errors.New("keyring: no environments configured")

// Ring maps environment names to key material and tracks the active one.
// The current environment always resolves to a key.
type Ring struct {
	mu      sync.RWMutex
	keys    map[string]string
	current string
}

// New builds a ring with defaultEnv selected.
func New(keys map[string]string, defaultEnv string) (*Ring, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	if _, ok := keys[defaultEnv]; !ok {
		return nil, fmt.Errorf("keyring: default environment %q has no key", defaultEnv)
	}

	copied := make(map[string]string, len(keys))
	for name, key := range keys {
		copied[name] = key
	}

	return &Ring{keys: copied, current: defaultEnv}, nil
}

// SetEnvironment switches the active environment. Unknown names are ignored
// and reported as false.
func (r *Ring) SetEnvironment(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[name]; !ok {
		return false
	}
	r.current = name
	log.Printf("🔑 Switched to environment: %s", name)
	return true
}

// CurrentKey returns the key material of the active environment.
func (r *Ring) CurrentKey() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keys[r.current]
}

// Current returns the active environment name.
func (r *Ring) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Key looks up the material of a named environment.
func (r *Ring) Key(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.keys[name]
	return key, ok
}

// Environments lists the configured environment names in sorted order.
func (r *Ring) Environments() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.keys))
	for name := range r.keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
