package storage

import (
	"sync"
)

// MemStore is an in-memory record and blob store with the same versioning
// semantics as the persistent engines.  It backs unit tests and small
// single-process deployments.
type MemStore struct {
	mu      sync.Mutex
	records map[string]Record
	blobs   map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]Record),
		blobs:   make(map[string][]byte),
	}
}

// --- RecordStore interface ---

func (s *MemStore) GetRecord(key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.records[key]
	if !found {
		return nil, ErrRecordNotFound
	}
	value := make([]byte, len(rec.Value))
	copy(value, rec.Value)
	return &Record{Value: value, Version: rec.Version}, nil
}

func (s *MemStore) PutRecord(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[key] = Record{Value: stored, Version: s.records[key].Version + 1}
	return nil
}

func (s *MemStore) CompareAndSwap(key string, value []byte, version uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[key].Version != version {
		return ErrConflict
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[key] = Record{Value: stored, Version: version + 1}
	return nil
}

// --- BlobStore interface ---

func (s *MemStore) PutBlob(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[key] = stored
	return nil
}

func (s *MemStore) GetBlob(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, found := s.blobs[key]
	if !found {
		return nil, ErrBlobNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemStore) DeleteBlob(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
