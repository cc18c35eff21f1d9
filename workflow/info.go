package workflow

import "sort"

// AssignmentInfo resolves an assignment by id, or by region label when the id
// is empty.  An unassigned region yields an inactive view with no regions.
func (s *Service) AssignmentInfo(subvolumeID, assignID string, label uint64) (*AssignmentView, error) {
	sv, err := s.viewSubvolume(subvolumeID)
	if err != nil {
		return nil, err
	}
	a, _, err := sv.lookupAssignment(assignID, label)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return &AssignmentView{SubvolumeID: subvolumeID, Status: StatusInactive}, nil
	}
	return makeView(sv, a), nil
}

// RegionComments returns the comment ledger for a region label.
func (s *Service) RegionComments(subvolumeID string, label uint64) ([]RegionComment, error) {
	sv, err := s.viewSubvolume(subvolumeID)
	if err != nil {
		return nil, err
	}
	if _, err := sv.Lookup(label); err != nil {
		return nil, err
	}
	return sv.Comments[label], nil
}

// AvailableForReview lists assignments whose annotation is complete but whose
// review is not, the work queue for reviewers.
func (s *Service) AvailableForReview(subvolumeID string) ([]*AssignmentView, error) {
	sv, err := s.viewSubvolume(subvolumeID)
	if err != nil {
		return nil, err
	}
	var avail []*AssignmentView
	for _, a := range sv.Assignments {
		if sv.AssignmentStatus(a.ID) == StatusAwaitingReview {
			avail = append(avail, makeView(sv, a))
		}
	}
	sort.Slice(avail, func(i, j int) bool {
		return avail[i].AssignmentID < avail[j].AssignmentID
	})
	return avail, nil
}

// ProgressSummary reports per-phase totals for one subvolume.
type ProgressSummary struct {
	ID           string
	TotalRegions int

	AnnotationCompleted int
	AnnotationActive    int
	AnnotationAvailable int

	ReviewCompleted       int
	ReviewActive          int
	ReviewAvailable       int
	ReviewApprovedRegions int

	AnnotationDone bool
	ReviewDone     bool
	ReviewApproved bool

	// Rejections lists every rejection ever recorded in the subvolume.
	Rejections []HistoryEvent
}

// SubvolumeInfo derives a progress summary from the catalog and ledger.
func (s *Service) SubvolumeInfo(subvolumeID string) (*ProgressSummary, error) {
	sv, err := s.viewSubvolume(subvolumeID)
	if err != nil {
		return nil, err
	}
	summary := &ProgressSummary{
		ID:             sv.ID,
		TotalRegions:   len(sv.Regions),
		AnnotationDone: sv.AnnotationDone,
		ReviewDone:     sv.ReviewDone,
		ReviewApproved: sv.ReviewApproved,
	}
	for _, region := range sv.Regions {
		var status Status
		if region.AssignmentID != "" {
			status = sv.AssignmentStatus(region.AssignmentID)
		} else {
			status = StatusInactive
		}
		if sv.regionPhaseDone(region, PhaseAnnotation) {
			summary.AnnotationCompleted++
		} else if status == StatusActive {
			summary.AnnotationActive++
		} else {
			summary.AnnotationAvailable++
		}
		if sv.regionPhaseDone(region, PhaseReview) {
			summary.ReviewCompleted++
		} else if status == StatusUnderReview {
			summary.ReviewActive++
		} else {
			summary.ReviewAvailable++
		}
		if region.ReviewApproved || region.Verified {
			summary.ReviewApprovedRegions++
		}
	}
	for _, events := range sv.History {
		for _, ev := range events {
			if ev.Type == AnnotationRejected || ev.Type == ReviewRejected {
				summary.Rejections = append(summary.Rejections, ev)
			}
		}
	}
	return summary, nil
}

// NextAssignment auto-assigns the first eligible region in the subvolume to
// the user: unassigned, not completed, and never rejected by this user.  It
// returns the user's existing active assignment if one is held, and nil with
// no error when nothing is available.  Privileged users are never
// auto-assigned work.
func (s *Service) NextAssignment(user User, subvolumeID string) (*AssignmentView, error) {
	if user.Role.Privileged() {
		return nil, nil
	}
	var view *AssignmentView
	_, err := s.updateSubvolume(subvolumeID, func(sv *Subvolume) error {
		view = nil
		if sv.ReviewApproved {
			return nil
		}
		for _, id := range sv.Active[user.Login] {
			if sv.AssignmentStatus(id) == StatusActive {
				view = makeView(sv, sv.Assignments[id])
				return nil
			}
		}

		labels := make([]uint64, 0, len(sv.Regions))
		for label := range sv.Regions {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

		for _, label := range labels {
			region := sv.Regions[label]
			if region.ReviewApproved || region.Verified {
				continue
			}
			if region.AssignmentID != "" {
				status := sv.AssignmentStatus(region.AssignmentID)
				if status != StatusInactive {
					continue
				}
				if sv.RejectedBy(region.AssignmentID, user.Login) {
					continue
				}
			}

			a := sv.Assignments[region.AssignmentID]
			if a == nil {
				var err error
				if a, err = s.createAssignment(sv, label); err != nil {
					return err
				}
			}
			when := s.now()
			sv.appendEvent(a.ID, HistoryEvent{Type: AnnotationAssigned, User: user.Login, Time: when})
			sv.addActive(user.Login, a.ID)
			a.Updated = when
			view = makeView(sv, a)
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
