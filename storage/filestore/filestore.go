// Package filestore implements the blob store interface on the local
// filesystem, one file per blob.  Writes go to a temp file in the same
// directory and are renamed into place, so readers never see partial blobs.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RENCI/ninjato/ninjato"
	"github.com/RENCI/ninjato/storage"
)

// Store keeps blobs as files under a root directory.
type Store struct {
	dir string
}

// NewStore creates the root directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("can't create blob directory %q: %v", dir, err)
	}
	ninjato.Infof("Opened file blob store @ %s\n", dir)
	return &Store{dir: dir}, nil
}

func (s *Store) String() string {
	return "file blob store @ " + s.dir
}

func (s *Store) blobPath(key string) string {
	return filepath.Join(s.dir, key+".blob")
}

// --- storage.BlobStore interface ---

func (s *Store) PutBlob(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.blobPath(key))
}

func (s *Store) GetBlob(key string) ([]byte, error) {
	data, err := os.ReadFile(s.blobPath(key))
	if os.IsNotExist(err) {
		return nil, storage.ErrBlobNotFound
	}
	return data, err
}

func (s *Store) DeleteBlob(key string) error {
	err := os.Remove(s.blobPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
