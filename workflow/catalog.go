package workflow

import "github.com/RENCI/ninjato/ninjato"

// Lookup returns the cataloged region for a label.
func (sv *Subvolume) Lookup(label uint64) (*Region, error) {
	region, found := sv.Regions[label]
	if !found {
		return nil, ninjato.RegionError(ninjato.InvalidRegion, label, "not in subvolume %q", sv.ID)
	}
	return region, nil
}

// MarkLinked binds a cataloged region to an assignment.
func (sv *Subvolume) MarkLinked(label uint64, assignID string) error {
	region, err := sv.Lookup(label)
	if err != nil {
		return err
	}
	region.AssignmentID = assignID
	return nil
}

// Unlink frees a cataloged region from its assignment.
func (sv *Subvolume) Unlink(label uint64) error {
	region, err := sv.Lookup(label)
	if err != nil {
		return err
	}
	region.AssignmentID = ""
	return nil
}

// RemoveFromCatalog deletes a region that was merged away or erased.  The
// label becomes eligible for recycling.  Removal fails if the region is still
// linked to a non-terminal assignment.
func (sv *Subvolume) RemoveFromCatalog(label uint64) error {
	region, err := sv.Lookup(label)
	if err != nil {
		return err
	}
	if region.AssignmentID != "" && sv.AssignmentStatus(region.AssignmentID) != StatusCompleted {
		return ninjato.RegionError(ninjato.InvalidState, label,
			"still linked to active assignment %q", region.AssignmentID)
	}
	delete(sv.Regions, label)
	return nil
}
