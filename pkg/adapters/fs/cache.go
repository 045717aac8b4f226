package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultIndexFile is the name of the batch index written at the project root.
const DefaultIndexFile = ".metro-index.json"

// IndexEntry records the last extraction of a single scene file.
type IndexEntry struct {
	Sidecar       string    `json:"sidecar"`
	LastModified  time.Time `json:"lastModified"`
	TriangleCount uint64    `json:"triangleCount"`
}

// Index remembers which scene files were already extracted so batch runs
// can skip the unchanged ones. Entries are keyed by slash-separated path.
type Index struct {
	Path string

	mu      sync.RWMutex
	version int
	entries map[string]*IndexEntry
	dirty   bool
}

type indexFile struct {
	Version int                    `json:"version"`
	Entries map[string]*IndexEntry `json:"entries"`
}

// OpenIndex loads the index at path. A missing or corrupted file yields an
// empty index; it is rebuilt by the next run.
func OpenIndex(path string) (*Index, error) {
	idx := &Index{
		Path:    path,
		version: 1,
		entries: make(map[string]*IndexEntry),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil || f.Entries == nil {
		return idx, nil
	}
	idx.entries = f.Entries
	return idx, nil
}

// Save persists the index if it changed since it was loaded.
func (i *Index) Save() error {
	i.mu.RLock()
	if !i.dirty {
		i.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(indexFile{Version: i.version, Entries: i.entries}, "", "  ")
	i.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(i.Path), 0755); err != nil {
		return err
	}
	if err := WriteFileAtomic(i.Path, data, 0644); err != nil {
		return err
	}

	i.mu.Lock()
	i.dirty = false
	i.mu.Unlock()
	return nil
}

// Fresh returns the entry of scene if it was recorded for mtime and its
// sidecar still exists.
func (i *Index) Fresh(scene string, mtime time.Time) (*IndexEntry, bool) {
	i.mu.RLock()
	entry, ok := i.entries[filepath.ToSlash(scene)]
	i.mu.RUnlock()

	if !ok || !entry.LastModified.Equal(mtime) {
		return nil, false
	}
	if _, err := os.Stat(entry.Sidecar); err != nil {
		return nil, false
	}
	return entry, true
}

// Set records the extraction of scene.
func (i *Index) Set(scene string, entry IndexEntry) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.entries[filepath.ToSlash(scene)] = &entry
	i.dirty = true
}

// Delete removes the entry of scene.
func (i *Index) Delete(scene string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	key := filepath.ToSlash(scene)
	if _, ok := i.entries[key]; ok {
		delete(i.entries, key)
		i.dirty = true
	}
}

// Prune removes the entries for which keep returns false and reports how
// many were removed.
func (i *Index) Prune(keep func(scene string) bool) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	removed := 0
	for path := range i.entries {
		if !keep(filepath.FromSlash(path)) {
			delete(i.entries, path)
			removed++
		}
	}
	if removed > 0 {
		i.dirty = true
	}
	return removed
}

// Len returns the number of entries.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}
