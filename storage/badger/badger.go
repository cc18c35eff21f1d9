// Package badger implements the record and blob store interfaces on BadgerDB.
// Record versions are kept in an 8-byte prefix of each value; compare-and-swap
// runs inside a Badger update transaction so concurrent writers to the same
// subvolume record are serialized.
package badger

import (
	"encoding/binary"
	"errors"

	"github.com/RENCI/ninjato/ninjato"
	"github.com/RENCI/ninjato/storage"

	"github.com/dgraph-io/badger/v3"
	humanize "github.com/dustin/go-humanize"
)

const (
	recordPrefix = "r:"
	blobPrefix   = "b:"
)

// Store wraps a BadgerDB instance and satisfies both storage.RecordStore and
// storage.BlobStore.
type Store struct {
	db   *badger.DB
	path string
}

// NewStore opens (creating if necessary) a badger database at the given path.
func NewStore(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	ninjato.Infof("Opened badger store @ %s\n", path)
	return &Store{db: db, path: path}, nil
}

func (s *Store) String() string {
	return "badger store @ " + s.path
}

// Close releases the underlying database.
func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		ninjato.Errorf("Error closing badger store @ %s: %v\n", s.path, err)
	}
}

func encodeVersioned(value []byte, version uint64) []byte {
	out := make([]byte, 8+len(value))
	binary.LittleEndian.PutUint64(out, version)
	copy(out[8:], value)
	return out
}

func decodeVersioned(stored []byte) (value []byte, version uint64, err error) {
	if len(stored) < 8 {
		return nil, 0, errors.New("stored record shorter than version prefix")
	}
	version = binary.LittleEndian.Uint64(stored)
	value = make([]byte, len(stored)-8)
	copy(value, stored[8:])
	return
}

// --- storage.RecordStore interface ---

func (s *Store) GetRecord(key string) (*storage.Record, error) {
	var rec *storage.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(recordPrefix + key))
		if err == badger.ErrKeyNotFound {
			return storage.ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(stored []byte) error {
			value, version, err := decodeVersioned(stored)
			if err != nil {
				return err
			}
			rec = &storage.Record{Value: value, Version: version}
			return nil
		})
	})
	return rec, err
}

func (s *Store) PutRecord(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		version, err := currentVersion(txn, recordPrefix+key)
		if err != nil {
			return err
		}
		return txn.Set([]byte(recordPrefix+key), encodeVersioned(value, version+1))
	})
}

func (s *Store) CompareAndSwap(key string, value []byte, version uint64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		stored, err := currentVersion(txn, recordPrefix+key)
		if err != nil {
			return err
		}
		if stored != version {
			return storage.ErrConflict
		}
		return txn.Set([]byte(recordPrefix+key), encodeVersioned(value, version+1))
	})
	// A transaction conflict means a concurrent writer got there first, which
	// is exactly what the version check reports.
	if err == badger.ErrConflict {
		return storage.ErrConflict
	}
	return err
}

func currentVersion(txn *badger.Txn, key string) (uint64, error) {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var version uint64
	err = item.Value(func(stored []byte) error {
		_, v, err := decodeVersioned(stored)
		version = v
		return err
	})
	return version, err
}

// --- storage.BlobStore interface ---

func (s *Store) PutBlob(key string, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(blobPrefix+key), data)
	})
	if err == nil {
		ninjato.Debugf("Stored blob %q (%s)\n", key, humanize.Bytes(uint64(len(data))))
	}
	return err
}

func (s *Store) GetBlob(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(blobPrefix + key))
		if err == badger.ErrKeyNotFound {
			return storage.ErrBlobNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

func (s *Store) DeleteBlob(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(blobPrefix + key))
	})
}
