package core

import "context"

// PropertyStore persists the flat properties-store payload of one asset.
// Adhering to this interface keeps the engine independent of where the host
// keeps its key-value namespace (memory, a JSON file, Redis, SQLite).
//
// Lifecycle: a store is created on first Save and cleared only by Delete.
type PropertyStore interface {
	// Load returns every key of the store, including keys outside the
	// metadata namespace. A store that was never written returns an empty map.
	Load(ctx context.Context) (map[string]string, error)

	// Save replaces every key under namespace with props. Keys outside the
	// namespace are left untouched.
	Save(ctx context.Context, namespace string, props map[string]string) error

	// Delete removes every key under namespace.
	Delete(ctx context.Context, namespace string) error
}
