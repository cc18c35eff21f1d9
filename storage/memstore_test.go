package storage

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemStoreRecords(t *testing.T) {
	s := NewMemStore()
	if _, err := s.GetRecord("missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}

	if err := s.PutRecord("k", []byte("v1")); err != nil {
		t.Fatalf("error putting record: %v", err)
	}
	rec, err := s.GetRecord("k")
	if err != nil {
		t.Fatalf("error getting record: %v", err)
	}
	if !bytes.Equal(rec.Value, []byte("v1")) || rec.Version != 1 {
		t.Errorf("got value %q version %d, want v1 version 1", rec.Value, rec.Version)
	}

	if err := s.PutRecord("k", []byte("v2")); err != nil {
		t.Fatalf("error overwriting record: %v", err)
	}
	rec, _ = s.GetRecord("k")
	if rec.Version != 2 {
		t.Errorf("version should increment on put, got %d", rec.Version)
	}
}

func TestMemStoreCompareAndSwap(t *testing.T) {
	s := NewMemStore()

	// A missing record has version 0.
	if err := s.CompareAndSwap("k", []byte("v1"), 0); err != nil {
		t.Fatalf("error on initial CAS: %v", err)
	}
	rec, err := s.GetRecord("k")
	if err != nil {
		t.Fatalf("error getting record: %v", err)
	}

	if err := s.CompareAndSwap("k", []byte("v2"), rec.Version); err != nil {
		t.Fatalf("error on up-to-date CAS: %v", err)
	}
	if err := s.CompareAndSwap("k", []byte("v3"), rec.Version); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict on stale CAS, got %v", err)
	}
	rec, _ = s.GetRecord("k")
	if !bytes.Equal(rec.Value, []byte("v2")) {
		t.Errorf("stale CAS must not overwrite; got %q", rec.Value)
	}
}

func TestMemStoreBlobs(t *testing.T) {
	s := NewMemStore()
	if _, err := s.GetBlob("missing"); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
	if err := s.PutBlob("b", []byte("data")); err != nil {
		t.Fatalf("error putting blob: %v", err)
	}
	data, err := s.GetBlob("b")
	if err != nil {
		t.Fatalf("error getting blob: %v", err)
	}
	if !bytes.Equal(data, []byte("data")) {
		t.Errorf("got blob %q, want data", data)
	}
	if err := s.DeleteBlob("b"); err != nil {
		t.Fatalf("error deleting blob: %v", err)
	}
	if _, err := s.GetBlob("b"); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound after delete, got %v", err)
	}
	if err := s.DeleteBlob("b"); err != nil {
		t.Errorf("deleting a missing blob should not error: %v", err)
	}
}

func TestJobMessageRoundTrip(t *testing.T) {
	msg := JobMessage{
		Job:          JobUpdateAssignmentMasks,
		SubvolumeID:  "sv1",
		AssignmentID: "a1",
	}
	data, err := msg.Encode()
	if err != nil {
		t.Fatalf("error encoding job message: %v", err)
	}
	got, err := DecodeJobMessage(data)
	if err != nil {
		t.Fatalf("error decoding job message: %v", err)
	}
	if got != msg {
		t.Errorf("got %+v, want %+v", got, msg)
	}
}

func TestBlobKey(t *testing.T) {
	if key := BlobKey("owner", BlobBaseline); key != "owner-baseline" {
		t.Errorf("got blob key %q, want owner-baseline", key)
	}
}
