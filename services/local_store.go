package services

import (
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes backup copies of interview artifacts to a local
// directory before any cloud upload is attempted.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	if dir == "" {
		dir = "recordings"
	}
	return &LocalStore{dir: dir}
}

// Save writes the artifact to disk and returns its path.
func (l *LocalStore) Save(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %v", err)
	}
	path := filepath.Join(l.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing backup file: %v", err)
	}
	return path, nil
}
