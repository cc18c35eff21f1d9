package filestore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/RENCI/ninjato/storage"
)

func TestFileBlobStore(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("error creating store: %v", err)
	}

	if _, err := s.GetBlob("missing"); !errors.Is(err, storage.ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}

	key := storage.BlobKey("a1", storage.BlobBaseline)
	if err := s.PutBlob(key, []byte("raster bytes")); err != nil {
		t.Fatalf("error putting blob: %v", err)
	}
	data, err := s.GetBlob(key)
	if err != nil {
		t.Fatalf("error getting blob: %v", err)
	}
	if !bytes.Equal(data, []byte("raster bytes")) {
		t.Errorf("got %q, want raster bytes", data)
	}

	// Overwrite replaces the whole blob.
	if err := s.PutBlob(key, []byte("v2")); err != nil {
		t.Fatalf("error overwriting blob: %v", err)
	}
	data, _ = s.GetBlob(key)
	if !bytes.Equal(data, []byte("v2")) {
		t.Errorf("got %q after overwrite, want v2", data)
	}

	if err := s.DeleteBlob(key); err != nil {
		t.Fatalf("error deleting blob: %v", err)
	}
	if err := s.DeleteBlob(key); err != nil {
		t.Errorf("deleting a missing blob should not error: %v", err)
	}
	if _, err := s.GetBlob(key); !errors.Is(err, storage.ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound after delete, got %v", err)
	}
}
