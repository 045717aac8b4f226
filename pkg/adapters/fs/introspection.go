package fs

import (
	"github.com/aretw0/introspection"
)

// IndexState exposes the batch index for observability.
type IndexState struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
	Entries int    `json:"entries"`
	Dirty   bool   `json:"dirty"`
}

// State implements introspection.Introspectable.
func (i *Index) State() any {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return IndexState{
		Path:    i.Path,
		Version: i.version,
		Entries: len(i.entries),
		Dirty:   i.dirty,
	}
}

// ComponentType implements introspection.Component.
func (i *Index) ComponentType() string {
	return "index"
}

var _ introspection.Introspectable = (*Index)(nil)
var _ introspection.Component = (*Index)(nil)
