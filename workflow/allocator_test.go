package workflow

import (
	"errors"
	"testing"

	"github.com/RENCI/ninjato/ninjato"
)

func TestAllocateIDs(t *testing.T) {
	sv := NewSubvolume("sv", ninjato.Extent3d{MaxX: 9, MaxY: 9, MaxZ: 4})
	sv.MaxRegionID = 10

	ids := sv.allocateIDs(3)
	want := []uint64{11, 12, 13}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("fresh allocation: got %v, want %v", ids, want)
		}
	}
	if sv.MaxRegionID != 13 {
		t.Errorf("MaxRegionID should advance to 13, got %d", sv.MaxRegionID)
	}
}

func TestAllocateRecyclesFIFO(t *testing.T) {
	sv := NewSubvolume("sv", ninjato.Extent3d{MaxX: 9, MaxY: 9, MaxZ: 4})
	sv.MaxRegionID = 10
	sv.releaseIDs(4, 7)

	ids := sv.allocateIDs(3)
	want := []uint64{4, 7, 11}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("recycled allocation: got %v, want %v", ids, want)
		}
	}
	if len(sv.RecycledIDs) != 0 {
		t.Errorf("recycle pool should be drained, got %v", sv.RecycledIDs)
	}
}

func TestReleaseIDsDedup(t *testing.T) {
	sv := NewSubvolume("sv", ninjato.Extent3d{MaxX: 9, MaxY: 9, MaxZ: 4})
	sv.releaseIDs(4)
	sv.releaseIDs(4, 5, 5)
	if len(sv.RecycledIDs) != 2 {
		t.Errorf("expected pool [4 5], got %v", sv.RecycledIDs)
	}
}

func TestUnpoolIDs(t *testing.T) {
	sv := NewSubvolume("sv", ninjato.Extent3d{MaxX: 9, MaxY: 9, MaxZ: 4})
	sv.MaxRegionID = 10
	sv.releaseIDs(4, 7, 9)

	sv.unpoolIDs(7, 12)
	if len(sv.RecycledIDs) != 2 || sv.RecycledIDs[0] != 4 || sv.RecycledIDs[1] != 9 {
		t.Fatalf("expected pool [4 9], got %v", sv.RecycledIDs)
	}

	ids := sv.allocateIDs(3)
	want := []uint64{4, 9, 11}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("allocation after unpool: got %v, want %v", ids, want)
		}
	}
}

func TestAllocateRegionIDsPersists(t *testing.T) {
	s, _, _ := newTestService(t)

	ids, err := s.AllocateRegionIDs(testSubvolumeID, 2)
	if err != nil {
		t.Fatalf("error allocating: %v", err)
	}
	// The test volume's highest label is 2.
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 4 {
		t.Fatalf("got %v, want [3 4]", ids)
	}

	// A second allocation sees the persisted counter.
	ids, err = s.AllocateRegionIDs(testSubvolumeID, 1)
	if err != nil {
		t.Fatalf("error allocating: %v", err)
	}
	if len(ids) != 1 || ids[0] != 5 {
		t.Fatalf("got %v, want [5]", ids)
	}

	if ids, _ := s.AllocateRegionIDs(testSubvolumeID, 0); ids != nil {
		t.Errorf("zero-count allocation should return nil, got %v", ids)
	}
}

func TestReleaseRegionIDs(t *testing.T) {
	s, _, _ := newTestService(t)

	ids, err := s.AllocateRegionIDs(testSubvolumeID, 2)
	if err != nil {
		t.Fatalf("error allocating: %v", err)
	}
	if err := s.ReleaseRegionIDs(testSubvolumeID, ids...); err != nil {
		t.Fatalf("error releasing: %v", err)
	}

	// Released labels come back first.
	got, err := s.AllocateRegionIDs(testSubvolumeID, 2)
	if err != nil {
		t.Fatalf("error reallocating: %v", err)
	}
	if got[0] != ids[0] || got[1] != ids[1] {
		t.Errorf("reallocation: got %v, want %v", got, ids)
	}

	// A cataloged label can't be released.
	if err := s.ReleaseRegionIDs(testSubvolumeID, 1); !errors.Is(err, ninjato.ErrInvalidState) {
		t.Errorf("expected InvalidState releasing cataloged label, got %v", err)
	}
}
