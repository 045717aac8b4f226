package props

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes backend configuration for observability. It is built
// without touching the backend, so it never blocks.
type StoreState struct {
	Backend  string `json:"backend"`
	Location string `json:"location,omitempty"`
	Scope    string `json:"scope,omitempty"`
	Keys     int    `json:"keys,omitempty"`
}

// State implements introspection.Introspectable.
func (m *Memory) State() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return StoreState{Backend: m.ComponentType(), Keys: len(m.data)}
}

// ComponentType implements introspection.Component.
func (m *Memory) ComponentType() string { return "memory" }

// State implements introspection.Introspectable.
func (f *File) State() any {
	return StoreState{Backend: f.ComponentType(), Location: f.Path}
}

// ComponentType implements introspection.Component.
func (f *File) ComponentType() string { return "file" }

// State implements introspection.Introspectable.
func (r *Redis) State() any {
	return StoreState{Backend: r.ComponentType(), Location: r.client.Options().Addr, Scope: r.key}
}

// ComponentType implements introspection.Component.
func (r *Redis) ComponentType() string { return "redis" }

// State implements introspection.Introspectable.
func (s *SQLite) State() any {
	return StoreState{Backend: s.ComponentType(), Location: s.table, Scope: s.asset}
}

// ComponentType implements introspection.Component.
func (s *SQLite) ComponentType() string { return "sqlite" }

var (
	_ introspection.Introspectable = (*Memory)(nil)
	_ introspection.Component      = (*Memory)(nil)
	_ introspection.Introspectable = (*File)(nil)
	_ introspection.Component      = (*File)(nil)
	_ introspection.Introspectable = (*Redis)(nil)
	_ introspection.Component      = (*Redis)(nil)
	_ introspection.Introspectable = (*SQLite)(nil)
	_ introspection.Component      = (*SQLite)(nil)
)
