package workflow

import "time"

// EventType enumerates the immutable facts recorded in the history ledger.
// The names match the metadata keys used by the ingestion tooling.
type EventType string

const (
	AnnotationAssigned  EventType = "annotation_assigned_to"
	AnnotationCompleted EventType = "annotation_completed_by"
	AnnotationRejected  EventType = "annotation_rejected_by"
	ReviewAssigned      EventType = "review_assigned_to"
	ReviewCompleted     EventType = "review_completed_by"
	ReviewRejected      EventType = "review_rejected_by"
)

// Phase is the workflow phase an assignment currently serves.
type Phase string

const (
	PhaseAnnotation Phase = "annotation"
	PhaseReview     Phase = "review"
)

// HistoryEvent is an immutable fact about an assignment.  Events are append
// only and totally ordered by append position (timestamps are informational).
type HistoryEvent struct {
	Type    EventType `json:"type"`
	User    string    `json:"user"`
	Time    time.Time `json:"time"`
	Comment string    `json:"comment,omitempty"`
}

// Status is an assignment's lifecycle state, derived purely from the ledger.
type Status string

const (
	StatusInactive       Status = "inactive"
	StatusActive         Status = "active"
	StatusAwaitingReview Status = "awaiting_review"
	StatusUnderReview    Status = "under_review"
	StatusCompleted      Status = "completed"
)

func (sv *Subvolume) appendEvent(assignID string, ev HistoryEvent) {
	sv.History[assignID] = append(sv.History[assignID], ev)
}

// eventWindow returns the assignment's events after the most recent reject.
// A reject invalidates everything before it for status derivation.
func (sv *Subvolume) eventWindow(assignID string) []HistoryEvent {
	events := sv.History[assignID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == AnnotationRejected || events[i].Type == ReviewRejected {
			return events[i+1:]
		}
	}
	return events
}

func lastIndex(events []HistoryEvent, t EventType) int {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == t {
			return i
		}
	}
	return -1
}

// lastUser returns the user of the newest post-reject event of the given type.
func (sv *Subvolume) lastUser(assignID string, t EventType) string {
	events := sv.eventWindow(assignID)
	if i := lastIndex(events, t); i >= 0 {
		return events[i].User
	}
	return ""
}

// AssignmentStatus derives the assignment's current state from the ledger.
// The derivation scans newest to oldest: review approval on the bound regions
// short-circuits to completed, the most recent reject short-circuits to
// inactive, and otherwise the relative order of assignment/completion events
// decides the state.
func (sv *Subvolume) AssignmentStatus(assignID string) Status {
	a := sv.Assignments[assignID]
	if a != nil && len(a.Regions) > 0 {
		approved := true
		for _, label := range a.Regions {
			region := sv.Regions[label]
			if region == nil || !region.ReviewApproved {
				approved = false
				break
			}
		}
		if approved {
			return StatusCompleted
		}
	}

	events := sv.eventWindow(assignID)
	ia := lastIndex(events, AnnotationAssigned)
	if ia < 0 {
		return StatusInactive
	}
	ic := lastIndex(events, AnnotationCompleted)
	if ic < 0 {
		return StatusActive
	}
	ra := lastIndex(events, ReviewAssigned)
	if ra < 0 {
		return StatusAwaitingReview
	}
	rc := lastIndex(events, ReviewCompleted)
	if rc < 0 {
		return StatusUnderReview
	}
	if ra > rc {
		// Review was requested again after the last verdict.
		return StatusUnderReview
	}
	if ic > rc {
		// Resubmitted after disapproval, not yet reviewed again.
		return StatusAwaitingReview
	}
	// Disapproved; reannotation in progress.
	return StatusActive
}

// Annotator returns the login of the assignment's current annotator, derived
// from the newest post-reject annotation_assigned_to event.
func (sv *Subvolume) Annotator(assignID string) string {
	return sv.lastUser(assignID, AnnotationAssigned)
}

// Reviewer returns the login of the assignment's current reviewer.
func (sv *Subvolume) Reviewer(assignID string) string {
	return sv.lastUser(assignID, ReviewAssigned)
}

// phaseCompleted returns true if the post-reject window holds a completion
// event for the phase.
func (sv *Subvolume) phaseCompleted(assignID string, phase Phase) bool {
	t := AnnotationCompleted
	if phase == PhaseReview {
		t = ReviewCompleted
	}
	return lastIndex(sv.eventWindow(assignID), t) >= 0
}

// RejectedBy returns true if the user has ever rejected the assignment.
// Rejection history survives the reject reset, so a user is never
// auto-assigned a region they walked away from.
func (sv *Subvolume) RejectedBy(assignID, login string) bool {
	for _, ev := range sv.History[assignID] {
		if ev.Type == AnnotationRejected && ev.User == login {
			return true
		}
	}
	return false
}
