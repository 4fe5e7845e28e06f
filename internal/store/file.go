// FilePath: internal/store/file.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	nuts "github.com/vaudience/go-nuts"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

// FileStore keeps the definition snapshot in a single JSON file mapping
// device id to definition. The default backend.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the snapshot atomically via a temp file and rename, so a
// crash mid-write never leaves a half-written snapshot behind.
func (s *FileStore) Save(ctx context.Context, definitions map[string]models.DeviceDefinition) error {
	data, err := json.MarshalIndent(definitions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode device definitions: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".devices-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write device definitions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing file means an empty registry; a
// malformed file is logged and likewise treated as empty.
func (s *FileStore) Load(ctx context.Context) (map[string]models.DeviceDefinition, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.DeviceDefinition{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	definitions := map[string]models.DeviceDefinition{}
	if err := json.Unmarshal(data, &definitions); err != nil {
		nuts.L.Warnf("[FileStore] corrupt snapshot at %s, starting empty: %v", s.path, err)
		return map[string]models.DeviceDefinition{}, nil
	}
	return definitions, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
