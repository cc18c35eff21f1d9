package workflow

import "github.com/RENCI/ninjato/ninjato"

// allocateIDs hands out count region labels, drawing first from the recycle
// pool in FIFO order and then extending past MaxRegionID.  It must run inside
// a subvolume record update so concurrent allocations never overlap.
func (sv *Subvolume) allocateIDs(count int) []uint64 {
	ids := make([]uint64, 0, count)
	for len(ids) < count && len(sv.RecycledIDs) > 0 {
		ids = append(ids, sv.RecycledIDs[0])
		sv.RecycledIDs = sv.RecycledIDs[1:]
	}
	for len(ids) < count {
		sv.MaxRegionID++
		ids = append(ids, sv.MaxRegionID)
	}
	return ids
}

// releaseIDs returns labels to the recycle pool, deduplicating against labels
// already pooled.
func (sv *Subvolume) releaseIDs(labels ...uint64) {
	pooled := make(map[uint64]struct{}, len(sv.RecycledIDs))
	for _, id := range sv.RecycledIDs {
		pooled[id] = struct{}{}
	}
	for _, label := range labels {
		if _, found := pooled[label]; found {
			continue
		}
		sv.RecycledIDs = append(sv.RecycledIDs, label)
		pooled[label] = struct{}{}
	}
}

// unpoolIDs withdraws labels from the recycle pool, so a label cataloged by a
// save cannot be handed out again by a later allocation.
func (sv *Subvolume) unpoolIDs(labels ...uint64) {
	taken := make(map[uint64]struct{}, len(labels))
	for _, label := range labels {
		taken[label] = struct{}{}
	}
	kept := sv.RecycledIDs[:0]
	for _, id := range sv.RecycledIDs {
		if _, found := taken[id]; !found {
			kept = append(kept, id)
		}
	}
	sv.RecycledIDs = kept
}

// AllocateRegionIDs atomically reserves count region labels in the subvolume,
// e.g., ahead of a split.  Recycled labels are reused before new ones are
// minted, and the updated counter and pool persist in the same record write
// as the allocation.
func (s *Service) AllocateRegionIDs(subvolumeID string, count int) ([]uint64, error) {
	if count <= 0 {
		return nil, nil
	}
	var ids []uint64
	_, err := s.updateSubvolume(subvolumeID, func(sv *Subvolume) error {
		ids = sv.allocateIDs(count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ReleaseRegionIDs returns labels to the subvolume's recycle pool, e.g.,
// after an externally performed merge.  Labels still present in the catalog
// are refused.
func (s *Service) ReleaseRegionIDs(subvolumeID string, labels ...uint64) error {
	if len(labels) == 0 {
		return nil
	}
	_, err := s.updateSubvolume(subvolumeID, func(sv *Subvolume) error {
		for _, label := range labels {
			if _, found := sv.Regions[label]; found {
				return ninjato.RegionError(ninjato.InvalidState, label, "still cataloged")
			}
		}
		sv.releaseIDs(labels...)
		return nil
	})
	return err
}
