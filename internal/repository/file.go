package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmeshcher/restobill-system/internal/model"
)

// FileStore хранит снимок леджера в JSON-файле. Запись идёт через временный
// файл с переименованием, чтобы на диске никогда не оставался частичный снимок.
type FileStore struct {
	path string
}

// NewFileStore создаёт файловое хранилище снимков по указанному пути.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("snapshot file path must not be empty")
	}
	return &FileStore{path: path}, nil
}

// Load читает снимок из файла. Отсутствующий файл означает отсутствие снимка (nil, nil).
func (s *FileStore) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return &snap, nil
}

// Save перезаписывает файл снимка атомарно.
func (s *FileStore) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}

	return nil
}
