package intake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vishwaguru-be/utils"
)

// UploadStore writes uploaded photos into one directory.
type UploadStore struct {
	dir string
}

// NewUploadStore creates dir if needed.
func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

// Save copies r into a uniquely named file and returns its path.
func (u *UploadStore) Save(name string, r io.Reader) (string, error) {
	path := filepath.Join(u.dir, utils.UploadName(name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return filepath.ToSlash(path), nil
}

// Remove deletes a file previously returned by Save.
func (u *UploadStore) Remove(path string) error {
	if err := os.Remove(filepath.FromSlash(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
