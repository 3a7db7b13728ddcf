package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore persists attachment content on the local filesystem,
// addressed by an opaque key. Database rows reference blobs by key
// only; content never goes inline.
type BlobStore struct {
	dir string
}

// NewBlobStore creates the backing directory if needed
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Save writes the content under a fresh key derived from the original
// file name's extension
func (b *BlobStore) Save(fileName string, src io.Reader) (string, error) {
	key := uuid.NewString() + filepath.Ext(fileName)

	dst, err := os.Create(filepath.Join(b.dir, key))
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return key, nil
}

// Open opens a blob for reading
func (b *BlobStore) Open(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(b.dir, filepath.Base(key)))
}

// Remove deletes a blob. Missing blobs are not an error; removal runs
// after the referencing row is already gone.
func (b *BlobStore) Remove(key string) {
	if b == nil {
		return
	}
	os.Remove(filepath.Join(b.dir, filepath.Base(key)))
}
