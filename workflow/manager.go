package workflow

import (
	"errors"
	"time"

	"github.com/RENCI/ninjato/ninjato"
	"github.com/RENCI/ninjato/raster"
	"github.com/RENCI/ninjato/storage"

	"github.com/twinj/uuid"
)

const (
	// DefaultBufferFactor is the extent expansion applied when cropping an
	// assignment's raster from the whole volume.
	DefaultBufferFactor = 3.0

	// DefaultMaxRetries bounds the compare-and-swap retries on a subvolume
	// record before ConcurrentUpdateConflict surfaces to the caller.
	DefaultMaxRetries = 5
)

// ServiceConfig wires the engine to its collaborators.
type ServiceConfig struct {
	Records storage.RecordStore
	Blobs   storage.BlobStore
	Codec   raster.Codec
	Queue   storage.JobQueue

	// BufferFactor defaults to DefaultBufferFactor if zero.
	BufferFactor float64

	// MaxRetries defaults to DefaultMaxRetries if zero.
	MaxRetries int

	// Clock defaults to time.Now; tests inject a deterministic clock.
	Clock func() time.Time
}

// Service is the assignment workflow engine.  It holds no mutable state of
// its own; all state lives in subvolume records and blobs, so any number of
// request workers can share one Service.
type Service struct {
	records      storage.RecordStore
	blobs        storage.BlobStore
	codec        raster.Codec
	queue        storage.JobQueue
	bufferFactor float64
	maxRetries   int
	now          func() time.Time
}

// NewService returns a workflow engine over the given collaborators.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		records:      cfg.Records,
		blobs:        cfg.Blobs,
		codec:        cfg.Codec,
		queue:        cfg.Queue,
		bufferFactor: cfg.BufferFactor,
		maxRetries:   cfg.MaxRetries,
		now:          cfg.Clock,
	}
	if s.bufferFactor == 0 {
		s.bufferFactor = DefaultBufferFactor
	}
	if s.maxRetries == 0 {
		s.maxRetries = DefaultMaxRetries
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func recordKey(subvolumeID string) string {
	return "subvolume:" + subvolumeID
}

// viewSubvolume reads a subvolume record without intent to modify.
func (s *Service) viewSubvolume(subvolumeID string) (*Subvolume, error) {
	rec, err := s.records.GetRecord(recordKey(subvolumeID))
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, ninjato.NewError(ninjato.InvalidState, "unknown subvolume %q", subvolumeID)
	}
	if err != nil {
		return nil, ninjato.WrapError(ninjato.StorageUnavailable, err, "reading subvolume %q", subvolumeID)
	}
	return decodeSubvolume(rec.Value)
}

// updateSubvolume runs fn against a fresh copy of the record and writes the
// result under compare-and-swap, retrying on conflict.  fn sees pristine
// pre-call state on every attempt, so a failed write never leaves partial
// metadata mutation behind.
func (s *Service) updateSubvolume(subvolumeID string, fn func(sv *Subvolume) error) (*Subvolume, error) {
	key := recordKey(subvolumeID)
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		rec, err := s.records.GetRecord(key)
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, ninjato.NewError(ninjato.InvalidState, "unknown subvolume %q", subvolumeID)
		}
		if err != nil {
			return nil, ninjato.WrapError(ninjato.StorageUnavailable, err, "reading subvolume %q", subvolumeID)
		}
		sv, err := decodeSubvolume(rec.Value)
		if err != nil {
			return nil, ninjato.WrapError(ninjato.StorageUnavailable, err, "decoding subvolume %q", subvolumeID)
		}
		if err := fn(sv); err != nil {
			return nil, err
		}
		value, err := sv.encode()
		if err != nil {
			return nil, ninjato.WrapError(ninjato.StorageUnavailable, err, "encoding subvolume %q", subvolumeID)
		}
		err = s.records.CompareAndSwap(key, value, rec.Version)
		if err == nil {
			return sv, nil
		}
		if errors.Is(err, storage.ErrConflict) {
			ninjato.Debugf("CAS conflict on subvolume %q, attempt %d\n", subvolumeID, attempt+1)
			continue
		}
		return nil, ninjato.WrapError(ninjato.StorageUnavailable, err, "writing subvolume %q", subvolumeID)
	}
	return nil, ninjato.NewError(ninjato.ConcurrentUpdateConflict,
		"subvolume %q contended beyond %d retries", subvolumeID, s.maxRetries)
}

// IngestSubvolume registers a new subvolume: the whole-volume raster is
// stored as a blob and the region catalog is derived from its labels.
func (s *Service) IngestSubvolume(subvolumeID string, vol *raster.Volume) (*Subvolume, error) {
	blob, err := s.codec.Encode(vol)
	if err != nil {
		return nil, err
	}
	if err := s.blobs.PutBlob(storage.BlobKey(subvolumeID, storage.BlobVolume), blob); err != nil {
		return nil, ninjato.WrapError(ninjato.StorageUnavailable, err, "storing volume raster for %q", subvolumeID)
	}
	sv := NewSubvolumeFromRaster(subvolumeID, vol)
	value, err := sv.encode()
	if err != nil {
		return nil, err
	}
	if err := s.records.PutRecord(recordKey(subvolumeID), value); err != nil {
		return nil, ninjato.WrapError(ninjato.StorageUnavailable, err, "storing subvolume record %q", subvolumeID)
	}
	ninjato.Infof("Ingested subvolume %q with %d regions\n", subvolumeID, len(sv.Regions))
	return sv, nil
}

// AssignmentView is the caller-facing snapshot of an assignment.
type AssignmentView struct {
	AssignmentID string
	SubvolumeID  string
	Regions      []uint64
	Extent       ninjato.Extent3d
	Status       Status
	Annotator    string
	Reviewer     string
	Updated      time.Time
}

func makeView(sv *Subvolume, a *Assignment) *AssignmentView {
	regions := make([]uint64, len(a.Regions))
	copy(regions, a.Regions)
	return &AssignmentView{
		AssignmentID: a.ID,
		SubvolumeID:  sv.ID,
		Regions:      regions,
		Extent:       a.Extent,
		Status:       sv.AssignmentStatus(a.ID),
		Annotator:    sv.Annotator(a.ID),
		Reviewer:     sv.Reviewer(a.ID),
		Updated:      a.Updated,
	}
}

// lookupAssignment resolves an assignment by id, or by region label when the
// id is empty.
func (sv *Subvolume) lookupAssignment(assignID string, label uint64) (*Assignment, *Region, error) {
	if assignID != "" {
		a, found := sv.Assignments[assignID]
		if !found {
			return nil, nil, ninjato.AssignmentError(ninjato.InvalidState, assignID, "unknown assignment")
		}
		return a, nil, nil
	}
	region, err := sv.Lookup(label)
	if err != nil {
		return nil, nil, err
	}
	if region.AssignmentID == "" {
		return nil, region, nil
	}
	a, found := sv.Assignments[region.AssignmentID]
	if !found {
		return nil, nil, ninjato.RegionError(ninjato.InvalidState, label,
			"linked to missing assignment %q", region.AssignmentID)
	}
	return a, region, nil
}

// holdsActiveAnnotation reports whether the user already holds an assignment
// whose derived status is active.  Assignments merely awaiting or under
// review don't count.
func (sv *Subvolume) holdsActiveAnnotation(login string) bool {
	for _, id := range sv.Active[login] {
		if sv.AssignmentStatus(id) == StatusActive {
			return true
		}
	}
	return false
}

// RequestAssignment validates and performs an assignment request for either
// workflow phase.  assignID takes precedence; when empty, the request is
// resolved through the region label.  wantReview=false succeeds only from
// inactive (creating or relinking the assignment and extracting its raster)
// or as an idempotent re-fetch by the current annotator; wantReview=true
// succeeds only from awaiting_review.
func (s *Service) RequestAssignment(user User, subvolumeID, assignID string, label uint64, wantReview bool) (*AssignmentView, error) {
	var view *AssignmentView
	_, err := s.updateSubvolume(subvolumeID, func(sv *Subvolume) error {
		a, region, err := sv.lookupAssignment(assignID, label)
		if err != nil {
			return err
		}
		when := s.now()

		if wantReview {
			if a == nil {
				return ninjato.RegionError(ninjato.InvalidTransition, label, "region has never been annotated")
			}
			if status := sv.AssignmentStatus(a.ID); status != StatusAwaitingReview {
				return ninjato.AssignmentError(ninjato.InvalidTransition, a.ID,
					"review requested while %s", status)
			}
			sv.appendEvent(a.ID, HistoryEvent{Type: ReviewAssigned, User: user.Login, Time: when})
			sv.addActive(user.Login, a.ID)
			a.Updated = when
			view = makeView(sv, a)
			return nil
		}

		if a != nil {
			switch status := sv.AssignmentStatus(a.ID); status {
			case StatusActive:
				if sv.Annotator(a.ID) == user.Login {
					// Idempotent re-fetch of the user's own assignment.
					view = makeView(sv, a)
					return nil
				}
				return ninjato.AssignmentError(ninjato.AlreadyAssigned, a.ID,
					"assigned to %q", sv.Annotator(a.ID))
			case StatusCompleted:
				return ninjato.AssignmentError(ninjato.AlreadyCompleted, a.ID, "review approved")
			case StatusInactive:
				// Falls through to relink below.
			default:
				return ninjato.AssignmentError(ninjato.InvalidTransition, a.ID,
					"annotation requested while %s", status)
			}
		}
		if sv.holdsActiveAnnotation(user.Login) {
			return ninjato.NewError(ninjato.AlreadyAssigned,
				"user %q already holds an active annotation assignment", user.Login)
		}

		if a == nil {
			if region == nil {
				return ninjato.RegionError(ninjato.InvalidRegion, label, "no region to assign")
			}
			a, err = s.createAssignment(sv, label)
			if err != nil {
				return err
			}
		}
		sv.appendEvent(a.ID, HistoryEvent{Type: AnnotationAssigned, User: user.Login, Time: when})
		sv.addActive(user.Login, a.ID)
		a.Updated = when
		view = makeView(sv, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// createAssignment makes a fresh assignment bound to a single region and
// materializes its cropped raster.
func (s *Service) createAssignment(sv *Subvolume, label uint64) (*Assignment, error) {
	region, err := sv.Lookup(label)
	if err != nil {
		return nil, err
	}
	a := &Assignment{
		ID:      uuid.NewV4().String(),
		Regions: []uint64{label},
		Extent:  ninjato.BufferedExtent(region.Extent, sv.Extent, s.bufferFactor),
	}
	sv.Assignments[a.ID] = a
	if err := sv.MarkLinked(label, a.ID); err != nil {
		return nil, err
	}
	if err := s.extractAssignment(sv, a); err != nil {
		return nil, err
	}
	return a, nil
}

// recomputeExtent rebuilds the assignment's buffered extent from the tight
// extents of its currently bound regions.
func (s *Service) recomputeExtent(sv *Subvolume, a *Assignment) error {
	if len(a.Regions) == 0 {
		return ninjato.AssignmentError(ninjato.InvalidState, a.ID, "no bound regions")
	}
	region, err := sv.Lookup(a.Regions[0])
	if err != nil {
		return err
	}
	tight := region.Extent
	for _, label := range a.Regions[1:] {
		region, err := sv.Lookup(label)
		if err != nil {
			return err
		}
		tight = tight.Union(region.Extent)
	}
	a.Extent = ninjato.BufferedExtent(tight, sv.Extent, s.bufferFactor)
	return nil
}

// ClaimRegion merges a free neighboring region into the caller's active
// assignment.  The target must be unassigned, not completed, and not
// verified.
func (s *Service) ClaimRegion(user User, subvolumeID, activeAssignmentID string, label uint64) (*AssignmentView, error) {
	var view *AssignmentView
	_, err := s.updateSubvolume(subvolumeID, func(sv *Subvolume) error {
		region, err := sv.Lookup(label)
		if err != nil {
			return err
		}
		a, found := sv.Assignments[activeAssignmentID]
		if !found {
			return ninjato.AssignmentError(ninjato.InvalidState, activeAssignmentID, "unknown assignment")
		}
		if sv.Annotator(a.ID) != user.Login || sv.AssignmentStatus(a.ID) != StatusActive {
			return ninjato.AssignmentError(ninjato.NotOwner, a.ID,
				"user %q has no active annotation on this assignment", user.Login)
		}
		if region.ReviewApproved || region.Verified {
			return ninjato.RegionError(ninjato.AlreadyCompleted, label, "region is verified")
		}
		if region.AssignmentID != "" && region.AssignmentID != a.ID {
			holder := sv.Assignments[region.AssignmentID]
			switch status := sv.AssignmentStatus(region.AssignmentID); status {
			case StatusCompleted:
				return ninjato.RegionError(ninjato.AlreadyCompleted, label, "review approved")
			case StatusAwaitingReview, StatusUnderReview:
				return ninjato.RegionError(ninjato.AlreadyCompleted, label,
					"annotation completed by %q", sv.lastUser(region.AssignmentID, AnnotationCompleted))
			case StatusActive:
				return ninjato.RegionError(ninjato.AlreadyAssigned, label,
					"assigned to %q", sv.Annotator(region.AssignmentID))
			default:
				// Inactive: the holding assignment was rejected or reset;
				// free the region from it.
				if holder != nil {
					holder.removeRegion(label)
				}
			}
		}

		when := s.now()
		if !a.HasRegion(label) {
			a.Regions = append(a.Regions, label)
		}
		if err := sv.MarkLinked(label, a.ID); err != nil {
			return err
		}
		if err := s.recomputeExtent(sv, a); err != nil {
			return err
		}
		if err := s.extractAssignment(sv, a); err != nil {
			return err
		}
		sv.appendEvent(a.ID, HistoryEvent{Type: AnnotationAssigned, User: user.Login, Time: when})
		a.Updated = when
		view = makeView(sv, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// RemoveRegion drops a region from the caller's assignment, making it
// available to other users.  An assignment cannot be emptied this way; the
// sole remaining region can only be walked away from via reject.
func (s *Service) RemoveRegion(user User, subvolumeID, assignID string, label uint64) (*AssignmentView, error) {
	var view *AssignmentView
	_, err := s.updateSubvolume(subvolumeID, func(sv *Subvolume) error {
		a, found := sv.Assignments[assignID]
		if !found {
			return ninjato.AssignmentError(ninjato.InvalidState, assignID, "unknown assignment")
		}
		if sv.Annotator(a.ID) != user.Login {
			return ninjato.AssignmentError(ninjato.NotOwner, a.ID,
				"assigned to %q, not %q", sv.Annotator(a.ID), user.Login)
		}
		if !a.HasRegion(label) {
			return ninjato.RegionError(ninjato.InvalidRegion, label, "not bound to assignment %q", assignID)
		}
		if len(a.Regions) == 1 {
			return ninjato.AssignmentError(ninjato.InvalidState, a.ID,
				"cannot remove sole region %d; reject the assignment instead", label)
		}
		a.removeRegion(label)
		if err := sv.Unlink(label); err != nil {
			return err
		}
		if err := s.recomputeExtent(sv, a); err != nil {
			return err
		}
		if err := s.extractAssignment(sv, a); err != nil {
			return err
		}
		a.Updated = s.now()
		view = makeView(sv, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SaveParams carries a user's annotation save.
type SaveParams struct {
	// Done marks the annotation complete; false is an intermediate checkpoint.
	Done bool

	// Reject abandons the assignment instead of saving.
	Reject bool

	// Comment describes a rejection.
	Comment string

	// Comments holds per-region comments to append to the comment ledger.
	Comments map[uint64]string

	// Colors holds per-region display colors from the client.
	Colors map[uint64]string

	// CurrentRegions is the label set present in the saved raster; nil means
	// the bound set is unchanged.
	CurrentRegions []uint64

	// Content is the user-edited raster blob.
	Content []byte
}

// SaveAnnotation persists a user's annotation work.  Rejection abandons the
// assignment and discards staged edits.  Otherwise the edited raster is
// stored, the current label set is diffed against the bound set to apply
// region additions and removals, and, only if done, the completion event is
// appended and subvolume completion re-checked.
func (s *Service) SaveAnnotation(user User, subvolumeID, assignID string, params SaveParams) (*AssignmentView, error) {
	var view *AssignmentView
	_, err := s.updateSubvolume(subvolumeID, func(sv *Subvolume) error {
		a, found := sv.Assignments[assignID]
		if !found {
			return ninjato.AssignmentError(ninjato.InvalidState, assignID, "unknown assignment")
		}
		if status := sv.AssignmentStatus(a.ID); status == StatusCompleted {
			return ninjato.AssignmentError(ninjato.AlreadyCompleted, a.ID, "review approved")
		}
		if sv.Annotator(a.ID) != user.Login {
			return ninjato.AssignmentError(ninjato.NotOwner, a.ID,
				"assigned to %q, not %q", sv.Annotator(a.ID), user.Login)
		}
		when := s.now()

		if params.Reject {
			sv.removeActive(user.Login, assignID)
			sv.appendEvent(assignID, HistoryEvent{
				Type: AnnotationRejected, User: user.Login, Time: when, Comment: params.Comment,
			})
			if err := s.blobs.DeleteBlob(storage.BlobKey(assignID, storage.BlobEdited)); err != nil {
				ninjato.Warningf("Couldn't discard staged edits for %q: %v\n", assignID, err)
			}
			a.Updated = when
			view = makeView(sv, a)
			return nil
		}

		var edited *raster.Volume
		if params.Content != nil {
			var err error
			if edited, err = s.codec.Decode(params.Content); err != nil {
				return ninjato.WrapError(ninjato.InvalidState, err, "decoding saved raster for %q", assignID)
			}
			if err := s.blobs.PutBlob(storage.BlobKey(assignID, storage.BlobEdited), params.Content); err != nil {
				return ninjato.WrapError(ninjato.StorageUnavailable, err, "storing edited raster for %q", assignID)
			}
		}

		for label, comment := range params.Comments {
			sv.addComment(label, user.Login, when, comment)
		}
		if len(params.Colors) > 0 {
			if a.Colors == nil {
				a.Colors = make(map[uint64]string)
			}
			for label, color := range params.Colors {
				a.Colors[label] = color
			}
		}

		if params.CurrentRegions != nil {
			if err := s.applyRegionDiff(sv, a, params.CurrentRegions, edited); err != nil {
				return err
			}
		}

		a.AnnotationDone = params.Done
		if params.Done {
			sv.appendEvent(assignID, HistoryEvent{Type: AnnotationCompleted, User: user.Login, Time: when})
			sv.removeActive(user.Login, assignID)
			s.checkSubvolumeDone(sv, PhaseAnnotation)
		}
		a.Updated = when
		view = makeView(sv, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// applyRegionDiff reconciles the assignment's bound set with the labels the
// user actually saved: labels that disappeared are removed from the catalog
// and recycled, new labels are cataloged with extents recomputed from the
// saved raster.
func (s *Service) applyRegionDiff(sv *Subvolume, a *Assignment, current []uint64, edited *raster.Volume) error {
	currentSet := make(map[uint64]struct{}, len(current))
	for _, label := range current {
		currentSet[label] = struct{}{}
	}
	var removed []uint64
	for _, label := range a.Regions {
		if _, kept := currentSet[label]; !kept {
			removed = append(removed, label)
		}
	}
	var added []uint64
	for _, label := range current {
		if !a.HasRegion(label) {
			added = append(added, label)
		}
	}

	for _, label := range removed {
		a.removeRegion(label)
		if err := sv.Unlink(label); err != nil {
			return err
		}
		if err := sv.RemoveFromCatalog(label); err != nil {
			return err
		}
		sv.releaseIDs(label)
	}

	for _, label := range added {
		if region, found := sv.Regions[label]; found {
			if region.AssignmentID != "" && region.AssignmentID != a.ID &&
				sv.AssignmentStatus(region.AssignmentID) != StatusInactive {
				return ninjato.RegionError(ninjato.AlreadyAssigned, label,
					"held by assignment %q", region.AssignmentID)
			}
		} else {
			if edited == nil {
				return ninjato.RegionError(ninjato.MissingArtifact, label,
					"new region saved without raster content")
			}
			ext, found := edited.RegionExtent(label)
			if !found {
				return ninjato.RegionError(ninjato.InvalidRegion, label, "not present in saved raster")
			}
			sv.Regions[label] = &Region{Extent: ext}
			if label > sv.MaxRegionID {
				sv.MaxRegionID = label
			}
		}
		if err := sv.MarkLinked(label, a.ID); err != nil {
			return err
		}
		// A re-introduced label may still sit in the recycle pool from an
		// earlier merge; cataloging it must pull it back out.
		sv.unpoolIDs(label)
		a.Regions = append(a.Regions, label)
	}
	return nil
}

// ReviewParams carries a reviewer's verdict.
type ReviewParams struct {
	// Done marks the review complete.
	Done bool

	// Reject abandons the review assignment instead of recording a verdict.
	Reject bool

	// Approve is the reviewer's verdict on the annotation.
	Approve bool

	// Comment describes a rejection.
	Comment string

	// Comments holds per-region review comments.
	Comments map[uint64]string

	// Content is the reviewer-corrected raster blob, if any.
	Content []byte
}

// SaveReviewResult persists a reviewer's verdict.  Disapproval reopens the
// assignment for its original annotator.  Approval folds the edited raster
// into the whole volume and schedules reconciliation of overlapping sibling
// assignments on the background queue.
func (s *Service) SaveReviewResult(user User, subvolumeID, assignID string, params ReviewParams) (*AssignmentView, error) {
	var view *AssignmentView
	enqueueReconcile := false
	_, err := s.updateSubvolume(subvolumeID, func(sv *Subvolume) error {
		enqueueReconcile = false
		a, found := sv.Assignments[assignID]
		if !found {
			return ninjato.AssignmentError(ninjato.InvalidState, assignID, "unknown assignment")
		}
		if sv.Reviewer(a.ID) != user.Login {
			return ninjato.AssignmentError(ninjato.NotOwner, a.ID,
				"review held by %q, not %q", sv.Reviewer(a.ID), user.Login)
		}
		when := s.now()

		if params.Reject {
			sv.removeActive(user.Login, assignID)
			sv.appendEvent(assignID, HistoryEvent{
				Type: ReviewRejected, User: user.Login, Time: when, Comment: params.Comment,
			})
			a.Updated = when
			view = makeView(sv, a)
			return nil
		}

		if params.Content != nil {
			if err := s.blobs.PutBlob(storage.BlobKey(assignID, storage.BlobEdited), params.Content); err != nil {
				return ninjato.WrapError(ninjato.StorageUnavailable, err, "storing reviewed raster for %q", assignID)
			}
		}
		for label, comment := range params.Comments {
			sv.addComment(label, user.Login, when, comment)
		}
		approve := params.Approve
		a.ReviewApproved = &approve

		if !params.Done {
			a.ReviewDone = false
			a.Updated = when
			view = makeView(sv, a)
			return nil
		}

		if !params.Approve {
			// Hand the assignment back to whoever completed the annotation.
			annotator := sv.lastUser(assignID, AnnotationCompleted)
			if annotator != "" {
				sv.addActive(annotator, assignID)
			}
			a.AnnotationDone = false
			a.ReviewDone = false
		} else {
			if err := s.mergeBackAssignment(sv, a); err != nil {
				return err
			}
			for _, label := range a.Regions {
				if region := sv.Regions[label]; region != nil {
					region.ReviewApproved = true
				}
			}
			a.ReviewDone = true
			enqueueReconcile = true
		}

		sv.appendEvent(assignID, HistoryEvent{
			Type: ReviewCompleted, User: user.Login, Time: when, Comment: params.Comment,
		})
		sv.removeActive(user.Login, assignID)
		s.checkSubvolumeDone(sv, PhaseReview)
		a.Updated = when
		view = makeView(sv, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if enqueueReconcile && s.queue != nil {
		msg := storage.JobMessage{
			Job:          storage.JobUpdateAssignmentMasks,
			SubvolumeID:  subvolumeID,
			AssignmentID: assignID,
		}
		if err := s.queue.Enqueue(msg); err != nil {
			// The queue retries by its own policy; never fail the review.
			ninjato.Errorf("Couldn't enqueue mask reconciliation for %q: %v\n", assignID, err)
		}
	}
	return view, nil
}
