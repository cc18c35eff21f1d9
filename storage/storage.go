/*
Package storage provides the collaborator interfaces the workflow engine
depends on: a record store with optimistic concurrency for subvolume
documents, a blob store for raster files, and a job queue for background
reconciliation.  Engines live in subpackages (badger, filestore); an
in-memory engine in this package backs tests.
*/
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned when a record key is absent.
	ErrRecordNotFound = errors.New("record not found")

	// ErrBlobNotFound is returned when a blob key is absent.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrConflict is returned by CompareAndSwap when the stored version has
	// moved past the caller's version.  Callers retry a bounded number of
	// times.
	ErrConflict = errors.New("record version conflict")
)

// Record is a versioned document value.  Version increments on every write
// and anchors compare-and-swap updates.
type Record struct {
	Value   []byte
	Version uint64
}

// RecordStore is a document-style store keyed by subvolume id.  Updates to a
// single record are linearizable: CompareAndSwap succeeds only if no write
// has occurred since the version was read.
type RecordStore interface {
	// GetRecord returns the current value and version for a key.
	GetRecord(key string) (*Record, error)

	// PutRecord writes a value unconditionally, used at ingestion.
	PutRecord(key string, value []byte) error

	// CompareAndSwap writes value only if the stored version still equals
	// version, returning ErrConflict otherwise.  A missing record has
	// version 0.
	CompareAndSwap(key string, value []byte, version uint64) error
}

// BlobRole distinguishes the raster artifacts kept per assignment or subvolume.
type BlobRole string

const (
	// BlobVolume is the whole-subvolume label raster.
	BlobVolume BlobRole = "volume"

	// BlobBaseline is the cropped raster extracted for an assignment.
	BlobBaseline BlobRole = "baseline"

	// BlobEdited is the user-edited raster saved during annotation or review.
	BlobEdited BlobRole = "edited"
)

// BlobKey composes the store key for an owner id (assignment or subvolume)
// and artifact role.
func BlobKey(ownerID string, role BlobRole) string {
	return fmt.Sprintf("%s-%s", ownerID, role)
}

// BlobStore holds named raster blobs with overwrite-by-replace semantics.
type BlobStore interface {
	PutBlob(key string, data []byte) error
	GetBlob(key string) ([]byte, error)
	DeleteBlob(key string) error
}

// JobMessage describes a background job for the queue collaborator.
type JobMessage struct {
	Job          string `json:"job"`
	SubvolumeID  string `json:"subvolume_id"`
	AssignmentID string `json:"assignment_id"`
}

// JobUpdateAssignmentMasks re-extracts the rasters of assignments whose
// extents overlap a just-approved assignment.
const JobUpdateAssignmentMasks = "update_all_assignment_masks"

// Encode marshals the message for queue engines that ship bytes.
func (m JobMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeJobMessage unmarshals a queued message payload.
func DecodeJobMessage(data []byte) (JobMessage, error) {
	var m JobMessage
	err := json.Unmarshal(data, &m)
	return m, err
}

// JobQueue enqueues background jobs.  Delivery and retry policy belong to the
// queue implementation; enqueue failures never block the triggering request.
type JobQueue interface {
	Enqueue(msg JobMessage) error
}

// QueueFunc adapts a function to the JobQueue interface.
type QueueFunc func(msg JobMessage) error

func (f QueueFunc) Enqueue(msg JobMessage) error {
	return f(msg)
}
