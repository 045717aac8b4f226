package props

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"

	"github.com/aretw0/metro/pkg/adapters/fs"
	"github.com/aretw0/metro/pkg/core"
)

// fileFormatVersion tags the on-disk layout of the store file.
const fileFormatVersion = 1

// fileIndex is the persisted form of a File store.
type fileIndex struct {
	Version    int               `json:"version"`
	Properties map[string]string `json:"properties"`
}

// File is a PropertyStore persisted as a single JSON file. The file is
// created on first Save and rewritten atomically on every change.
type File struct {
	Path   string
	logger *slog.Logger
}

// NewFile creates a file-backed store at path. A nil logger discards output.
func NewFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &File{Path: path, logger: logger}
}

// Load implements core.PropertyStore. A missing file is an empty store.
func (f *File) Load(ctx context.Context) (map[string]string, error) {
	idx, err := f.read()
	if err != nil {
		return nil, err
	}
	return idx.Properties, nil
}

// Save implements core.PropertyStore.
func (f *File) Save(ctx context.Context, namespace string, props map[string]string) error {
	idx, err := f.read()
	if err != nil {
		return err
	}
	dropNamespace(idx.Properties, namespace)
	maps.Copy(idx.Properties, props)
	return f.write(idx)
}

// Delete implements core.PropertyStore.
func (f *File) Delete(ctx context.Context, namespace string) error {
	idx, err := f.read()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(f.Path); errors.Is(statErr, os.ErrNotExist) {
		return nil
	}
	dropNamespace(idx.Properties, namespace)
	return f.write(idx)
}

func (f *File) read() (*fileIndex, error) {
	idx := &fileIndex{Version: fileFormatVersion, Properties: make(map[string]string)}

	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read property store: %w", err)
	}

	// Corrupted files are reported, never reset.
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, core.Malformed(f.Path, err)
	}
	if idx.Version > fileFormatVersion {
		return nil, &core.Error{Kind: core.ErrSchemaVersionUnsupported, Key: f.Path, Value: idx.Version}
	}
	if idx.Properties == nil {
		idx.Properties = make(map[string]string)
	}
	return idx, nil
}

func (f *File) write(idx *fileIndex) error {
	idx.Version = fileFormatVersion
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal property store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("failed to create property store directory: %w", err)
	}
	if err := fs.WriteFileAtomic(f.Path, data, 0644); err != nil {
		return err
	}
	f.logger.Debug("property store saved", "path", f.Path, "keys", len(idx.Properties))
	return nil
}

var _ core.PropertyStore = (*File)(nil)
