package workflow

import "github.com/RENCI/ninjato/ninjato"

// regionPhaseDone reports whether one region has finished the given phase:
// its linked assignment carries a completion event for the phase, or, for
// review, the region was externally verified at ingestion.
func (sv *Subvolume) regionPhaseDone(region *Region, phase Phase) bool {
	if phase == PhaseReview && region.Verified {
		return true
	}
	if region.AssignmentID == "" {
		return false
	}
	return sv.phaseCompleted(region.AssignmentID, phase)
}

// checkSubvolumeDone scans the whole catalog and records phase completion on
// the subvolume.  The scan is O(regions), idempotent, and side-effect-free
// except for the final flag writes.  For the review phase, review_approved
// becomes the conjunction of every region's individual approval.
func (s *Service) checkSubvolumeDone(sv *Subvolume, phase Phase) bool {
	for _, region := range sv.Regions {
		if !sv.regionPhaseDone(region, phase) {
			return false
		}
	}
	switch phase {
	case PhaseAnnotation:
		if !sv.AnnotationDone {
			ninjato.Infof("All %d regions of subvolume %q have completed annotation\n",
				len(sv.Regions), sv.ID)
		}
		sv.AnnotationDone = true
	case PhaseReview:
		if !sv.ReviewDone {
			ninjato.Infof("All %d regions of subvolume %q have completed review\n",
				len(sv.Regions), sv.ID)
		}
		sv.ReviewDone = true
		approved := true
		for _, region := range sv.Regions {
			if !region.ReviewApproved && !region.Verified {
				approved = false
				break
			}
		}
		sv.ReviewApproved = approved
	}
	return true
}

// CheckSubvolumeDone re-derives and persists the subvolume's completion flags
// for a phase, returning whether the phase is complete.
func (s *Service) CheckSubvolumeDone(subvolumeID string, phase Phase) (bool, error) {
	done := false
	_, err := s.updateSubvolume(subvolumeID, func(sv *Subvolume) error {
		done = s.checkSubvolumeDone(sv, phase)
		return nil
	})
	return done, err
}
