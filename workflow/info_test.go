package workflow

import (
	"errors"
	"testing"

	"github.com/RENCI/ninjato/ninjato"
)

func TestAssignmentInfo(t *testing.T) {
	s, _, _ := newTestService(t)

	// An unassigned region reports inactive.
	info, err := s.AssignmentInfo(testSubvolumeID, "", 1)
	if err != nil {
		t.Fatalf("error fetching info: %v", err)
	}
	if info.Status != StatusInactive || info.AssignmentID != "" {
		t.Errorf("unassigned region: got status %s id %q", info.Status, info.AssignmentID)
	}

	view, err := s.RequestAssignment(annie, testSubvolumeID, "", 1, false)
	if err != nil {
		t.Fatalf("error requesting: %v", err)
	}
	info, err = s.AssignmentInfo(testSubvolumeID, view.AssignmentID, 0)
	if err != nil {
		t.Fatalf("error fetching info by id: %v", err)
	}
	if info.Status != StatusActive || info.Annotator != "annie" {
		t.Errorf("got status %s annotator %q, want active annie", info.Status, info.Annotator)
	}

	if _, err := s.AssignmentInfo(testSubvolumeID, "", 999); !errors.Is(err, ninjato.ErrInvalidRegion) {
		t.Errorf("expected InvalidRegion for unknown label, got %v", err)
	}
}

func TestAvailableForReview(t *testing.T) {
	s, store, _ := newTestService(t)

	avail, err := s.AvailableForReview(testSubvolumeID)
	if err != nil {
		t.Fatalf("error listing: %v", err)
	}
	if len(avail) != 0 {
		t.Fatalf("nothing should await review, got %d", len(avail))
	}

	view := annotateDone(t, s, store, annie, 1)
	avail, err = s.AvailableForReview(testSubvolumeID)
	if err != nil {
		t.Fatalf("error listing: %v", err)
	}
	if len(avail) != 1 || avail[0].AssignmentID != view.AssignmentID {
		t.Fatalf("expected annie's assignment to await review, got %+v", avail)
	}

	// Once picked up for review it leaves the queue.
	if _, err := s.RequestAssignment(rei, testSubvolumeID, "", 1, true); err != nil {
		t.Fatalf("error requesting review: %v", err)
	}
	avail, _ = s.AvailableForReview(testSubvolumeID)
	if len(avail) != 0 {
		t.Errorf("under-review assignment should not be listed")
	}
}

func TestSubvolumeInfo(t *testing.T) {
	s, store, _ := newTestService(t)
	annotateDone(t, s, store, annie, 1)

	summary, err := s.SubvolumeInfo(testSubvolumeID)
	if err != nil {
		t.Fatalf("error fetching summary: %v", err)
	}
	if summary.TotalRegions != 2 {
		t.Fatalf("got %d regions, want 2", summary.TotalRegions)
	}
	if summary.AnnotationCompleted != 1 || summary.AnnotationAvailable != 1 {
		t.Errorf("annotation totals: completed %d available %d, want 1 and 1",
			summary.AnnotationCompleted, summary.AnnotationAvailable)
	}
	if summary.ReviewCompleted != 0 || summary.AnnotationDone {
		t.Errorf("review should be untouched and annotation incomplete")
	}

	// A rejection shows up in the summary.
	view, err := s.RequestAssignment(bob, testSubvolumeID, "", 2, false)
	if err != nil {
		t.Fatalf("error requesting: %v", err)
	}
	if _, err := s.SaveAnnotation(bob, testSubvolumeID, view.AssignmentID, SaveParams{Reject: true, Comment: "nope"}); err != nil {
		t.Fatalf("error rejecting: %v", err)
	}
	summary, _ = s.SubvolumeInfo(testSubvolumeID)
	if len(summary.Rejections) != 1 || summary.Rejections[0].User != "bob" {
		t.Errorf("expected bob's rejection in summary, got %+v", summary.Rejections)
	}
}

func TestNextAssignment(t *testing.T) {
	s, _, _ := newTestService(t)

	// Privileged users get nothing.
	view, err := s.NextAssignment(root, testSubvolumeID)
	if err != nil || view != nil {
		t.Fatalf("admin auto-assignment: got %+v, %v", view, err)
	}

	// Annie gets the lowest free region.
	view, err = s.NextAssignment(annie, testSubvolumeID)
	if err != nil {
		t.Fatalf("error auto-assigning: %v", err)
	}
	if view == nil || len(view.Regions) != 1 || view.Regions[0] != 1 {
		t.Fatalf("expected region 1, got %+v", view)
	}

	// Asking again returns the held assignment, not a second one.
	again, err := s.NextAssignment(annie, testSubvolumeID)
	if err != nil {
		t.Fatalf("error on repeat auto-assign: %v", err)
	}
	if again == nil || again.AssignmentID != view.AssignmentID {
		t.Fatalf("expected the held assignment back, got %+v", again)
	}

	// After rejecting region 1, annie skips it and lands on region 2.
	if _, err := s.SaveAnnotation(annie, testSubvolumeID, view.AssignmentID, SaveParams{Reject: true}); err != nil {
		t.Fatalf("error rejecting: %v", err)
	}
	view, err = s.NextAssignment(annie, testSubvolumeID)
	if err != nil {
		t.Fatalf("error auto-assigning after reject: %v", err)
	}
	if view == nil || len(view.Regions) != 1 || view.Regions[0] != 2 {
		t.Fatalf("expected region 2 after rejecting region 1, got %+v", view)
	}

	// Bob still gets region 1.
	bobView, err := s.NextAssignment(bob, testSubvolumeID)
	if err != nil {
		t.Fatalf("error auto-assigning bob: %v", err)
	}
	if bobView == nil || len(bobView.Regions) != 1 || bobView.Regions[0] != 1 {
		t.Fatalf("expected region 1 for bob, got %+v", bobView)
	}

	// With everything held, a third user gets nothing.
	carol := User{ID: "u4", Login: "carol", Role: RoleAnnotator}
	view, err = s.NextAssignment(carol, testSubvolumeID)
	if err != nil {
		t.Fatalf("error auto-assigning carol: %v", err)
	}
	if view != nil {
		t.Errorf("expected nothing available for carol, got %+v", view)
	}
}
