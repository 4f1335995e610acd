package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Backend is the durable store checkpoints are written through. The pipeline
// treats blobs as opaque bytes; atomicity, durability and coordination across
// replicas are the backend's concern.
type Backend interface {
	Write(key string, blob []byte) error
	// Read returns the blob stored under key, or an error wrapping
	// ErrNotFound if the key has never been written.
	Read(key string) ([]byte, error)
}

// FileBackend stores one file per key under Dir. Writes go through a
// temporary file and rename so a crashed writer never leaves a truncated
// checkpoint behind.
type FileBackend struct {
	Dir string
}

// NewFileBackend creates the directory if needed and returns a backend
// rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("checkpoint directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &FileBackend{Dir: dir}, nil
}

func (b *FileBackend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid checkpoint key %q", key)
	}
	return filepath.Join(b.Dir, key+".ckpt"), nil
}

// Write stores blob under key, replacing any previous value.
func (b *FileBackend) Write(key string, blob []byte) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", key, err)
	}
	return nil
}

// Read returns the blob stored under key.
func (b *FileBackend) Read(key string) ([]byte, error) {
	path, err := b.path(key)
	if err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", key, err)
	}
	return blob, nil
}
