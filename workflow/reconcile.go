package workflow

import (
	"errors"

	"github.com/RENCI/ninjato/ninjato"
	"github.com/RENCI/ninjato/raster"
	"github.com/RENCI/ninjato/storage"

	"golang.org/x/sync/errgroup"
)

// reconcileWorkers bounds how many sibling rasters are re-extracted at once
// by the background job.
const reconcileWorkers = 4

func (s *Service) loadVolume(subvolumeID string) (*raster.Volume, error) {
	blob, err := s.blobs.GetBlob(storage.BlobKey(subvolumeID, storage.BlobVolume))
	if errors.Is(err, storage.ErrBlobNotFound) {
		return nil, ninjato.NewError(ninjato.MissingArtifact, "no volume raster for subvolume %q", subvolumeID)
	}
	if err != nil {
		return nil, ninjato.WrapError(ninjato.StorageUnavailable, err, "reading volume raster for %q", subvolumeID)
	}
	return s.codec.Decode(blob)
}

func (s *Service) storeVolume(subvolumeID string, vol *raster.Volume) error {
	blob, err := s.codec.Encode(vol)
	if err != nil {
		return err
	}
	if err := s.blobs.PutBlob(storage.BlobKey(subvolumeID, storage.BlobVolume), blob); err != nil {
		return ninjato.WrapError(ninjato.StorageUnavailable, err, "writing volume raster for %q", subvolumeID)
	}
	return nil
}

// extractAssignment crops the assignment's buffered extent out of the whole
// volume and stores it as the assignment's baseline raster.
func (s *Service) extractAssignment(sv *Subvolume, a *Assignment) error {
	whole, err := s.loadVolume(sv.ID)
	if err != nil {
		return err
	}
	return s.extractFromVolume(whole, a)
}

func (s *Service) extractFromVolume(whole *raster.Volume, a *Assignment) error {
	cropped, err := whole.Extract(a.Extent)
	if err != nil {
		return ninjato.AssignmentError(ninjato.InvalidState, a.ID, "cropping raster: %v", err)
	}
	blob, err := s.codec.Encode(cropped)
	if err != nil {
		return err
	}
	if err := s.blobs.PutBlob(storage.BlobKey(a.ID, storage.BlobBaseline), blob); err != nil {
		return ninjato.WrapError(ninjato.StorageUnavailable, err, "storing baseline raster for %q", a.ID)
	}
	return nil
}

// mergeBackAssignment folds the assignment's edited raster into the whole
// volume.  The in-memory merge goes to a scratch copy and the blob write
// replaces the old volume in one step, so a failure partway leaves the
// stored volume untouched.
func (s *Service) mergeBackAssignment(sv *Subvolume, a *Assignment) error {
	blob, err := s.blobs.GetBlob(storage.BlobKey(a.ID, storage.BlobEdited))
	if errors.Is(err, storage.ErrBlobNotFound) {
		return ninjato.AssignmentError(ninjato.MissingArtifact, a.ID, "no edited raster to merge")
	}
	if err != nil {
		return ninjato.WrapError(ninjato.StorageUnavailable, err, "reading edited raster for %q", a.ID)
	}
	edited, err := s.codec.Decode(blob)
	if err != nil {
		return ninjato.AssignmentError(ninjato.InvalidState, a.ID, "decoding edited raster: %v", err)
	}
	whole, err := s.loadVolume(sv.ID)
	if err != nil {
		return err
	}
	if err := whole.MergeBack(edited); err != nil {
		return ninjato.AssignmentError(ninjato.InvalidState, a.ID, "merging raster: %v", err)
	}
	return s.storeVolume(sv.ID, whole)
}

// UpdateAllAssignmentMasks is the body of the background reconciliation job
// queued after a review approval: every sibling assignment whose buffered
// extent overlaps the approved extent gets its baseline raster re-extracted
// from the updated whole volume.
func (s *Service) UpdateAllAssignmentMasks(subvolumeID, approvedAssignmentID string) error {
	timedLog := ninjato.NewTimeLog()
	sv, err := s.viewSubvolume(subvolumeID)
	if err != nil {
		return err
	}
	approved, found := sv.Assignments[approvedAssignmentID]
	if !found {
		return ninjato.AssignmentError(ninjato.InvalidState, approvedAssignmentID, "unknown assignment")
	}
	whole, err := s.loadVolume(subvolumeID)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(reconcileWorkers)
	updated := 0
	for _, a := range sv.Assignments {
		if a.ID == approvedAssignmentID || len(a.Regions) == 0 {
			continue
		}
		if !a.Extent.Overlaps(approved.Extent) {
			continue
		}
		a := a
		updated++
		g.Go(func() error {
			return s.extractFromVolume(whole, a)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	timedLog.Infof("Reconciled %d assignment masks in subvolume %q after approval of %q",
		updated, subvolumeID, approvedAssignmentID)
	return nil
}

// RunJob dispatches a queued job message.  Worker processes consuming the
// queue call this; tests run it inline.
func (s *Service) RunJob(msg storage.JobMessage) error {
	switch msg.Job {
	case storage.JobUpdateAssignmentMasks:
		return s.UpdateAllAssignmentMasks(msg.SubvolumeID, msg.AssignmentID)
	default:
		return ninjato.NewError(ninjato.InvalidState, "unknown job %q", msg.Job)
	}
}
