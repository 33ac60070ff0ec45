package catalog

import (
	"sync"
	"time"
)

// Registry keeps one workspace per seller session. Entries carry the
// session's expiry so abandoned workspaces can be swept.
type Registry struct {
	mu sync.Mutex
	m  map[string]registryEntry
}

type registryEntry struct {
	ws      *Workspace
	expires time.Time
}

func NewRegistry() *Registry {
	return &Registry{m: map[string]registryEntry{}}
}

// Get returns the workspace for key, building it with create on first use.
// A zero expires never expires.
func (r *Registry) Get(key string, expires time.Time, create func() *Workspace) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.m[key]; ok {
		e.expires = expires
		r.m[key] = e
		return e.ws
	}
	w := create()
	r.m[key] = registryEntry{ws: w, expires: expires}
	return w
}

func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
}

// Sweep drops workspaces whose session expired at or before now and
// returns how many went.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key, e := range r.m {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(r.m, key)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}
