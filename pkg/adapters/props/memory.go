// Package props implements core.PropertyStore backends: the flat key-value
// namespace that holds the properties-store representation of a record.
package props

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/aretw0/metro/pkg/core"
)

// Memory is an in-process PropertyStore, the default when no backend is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates a store seeded with a copy of initial.
func NewMemory(initial map[string]string) *Memory {
	data := make(map[string]string, len(initial))
	maps.Copy(data, initial)
	return &Memory{data: data}
}

// Load implements core.PropertyStore.
func (m *Memory) Load(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data), nil
}

// Save implements core.PropertyStore.
func (m *Memory) Save(ctx context.Context, namespace string, props map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropNamespace(m.data, namespace)
	maps.Copy(m.data, props)
	return nil
}

// Delete implements core.PropertyStore.
func (m *Memory) Delete(ctx context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropNamespace(m.data, namespace)
	return nil
}

func inNamespace(key, namespace string) bool {
	return strings.HasPrefix(key, namespace+".")
}

func dropNamespace(data map[string]string, namespace string) {
	for k := range data {
		if inNamespace(k, namespace) {
			delete(data, k)
		}
	}
}

var _ core.PropertyStore = (*Memory)(nil)
