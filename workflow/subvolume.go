/*
Package workflow implements the region assignment and review engine: the
per-subvolume region catalog, atomic region id allocation, the append-only
history ledger with status derivation, the assignment state machine, raster
reconciliation, and completion aggregation.

All mutable state for one subvolume lives in a single versioned record, so
every transition is an optimistic read-modify-compare-and-swap on that record
and per-subvolume updates are linearizable.
*/
package workflow

import (
	"encoding/json"
	"time"

	"github.com/RENCI/ninjato/ninjato"
	"github.com/RENCI/ninjato/raster"
)

// Role gates privileged behavior explicitly instead of special-casing logins.
type Role uint8

const (
	RoleAnnotator Role = iota
	RoleReviewer
	RoleAdmin
)

// Privileged returns true for users that administer volumes rather than
// annotate them; they are skipped by auto-assignment.
func (r Role) Privileged() bool {
	return r == RoleAdmin
}

// User identifies an acting annotator or reviewer.
type User struct {
	ID    string
	Login string
	Email string
	Role  Role
}

// Region is the atomic segmentable unit, identified by an integer label.
type Region struct {
	// Extent is the tight bounding box as segmented.
	Extent ninjato.Extent3d `json:"extent"`

	// AssignmentID links the region to an assignment; empty means free.
	AssignmentID string `json:"assignment_id,omitempty"`

	// MergedInto marks a region permanently absorbed by another region.
	MergedInto uint64 `json:"merged_into,omitempty"`

	// ReviewApproved is set when a reviewer approves the region's annotation.
	ReviewApproved bool `json:"review_approved,omitempty"`

	// Verified marks a region externally verified at ingestion; such regions
	// need no review.
	Verified bool `json:"verified,omitempty"`
}

// Assignment is a unit of work owned by one user for one workflow phase.
type Assignment struct {
	ID string `json:"id"`

	// Regions is the set of region labels currently bound to the assignment.
	Regions []uint64 `json:"region_ids"`

	// Extent is the buffered extent covering every bound region, used to crop
	// the assignment's raster.
	Extent ninjato.Extent3d `json:"extent"`

	// AnnotationDone and ReviewDone mirror the latest completion bookkeeping;
	// authoritative status always comes from the history ledger.
	AnnotationDone bool `json:"annotation_done"`
	ReviewDone     bool `json:"review_done"`

	// ReviewApproved is nil until a reviewer records a verdict.
	ReviewApproved *bool `json:"review_approved,omitempty"`

	// Colors holds the client's per-region display colors.
	Colors map[uint64]string `json:"colors,omitempty"`

	Updated time.Time `json:"updated"`
}

// HasRegion returns true if the label is bound to the assignment.
func (a *Assignment) HasRegion(label uint64) bool {
	for _, bound := range a.Regions {
		if bound == label {
			return true
		}
	}
	return false
}

func (a *Assignment) removeRegion(label uint64) {
	for i, bound := range a.Regions {
		if bound == label {
			a.Regions = append(a.Regions[:i], a.Regions[i+1:]...)
			return
		}
	}
}

// RegionComment is one user comment on a region.
type RegionComment struct {
	User    string    `json:"user"`
	Time    time.Time `json:"time"`
	Comment string    `json:"comment"`
}

// Subvolume is the per-partition record holding the region catalog, id
// allocation state, assignments, history ledger, and completion flags.
type Subvolume struct {
	ID     string           `json:"id"`
	Extent ninjato.Extent3d `json:"extent"`

	// MaxRegionID is at least the highest label ever issued.
	MaxRegionID uint64 `json:"max_region_id"`

	// RecycledIDs is a FIFO pool of labels freed by merge or removal.
	RecycledIDs []uint64 `json:"recycled_ids,omitempty"`

	Regions     map[uint64]*Region     `json:"regions"`
	Assignments map[string]*Assignment `json:"assignments,omitempty"`

	// History is the append-only per-assignment event ledger.
	History map[string][]HistoryEvent `json:"history,omitempty"`

	// Comments is the per-region comment ledger.
	Comments map[uint64][]RegionComment `json:"comments,omitempty"`

	// Active maps user login to that user's active assignment ids.
	Active map[string][]string `json:"active_assignments,omitempty"`

	AnnotationDone bool `json:"annotation_done"`
	ReviewDone     bool `json:"review_done"`
	ReviewApproved bool `json:"review_approved"`
}

// NewSubvolume returns an empty subvolume record covering the given extent.
func NewSubvolume(id string, extent ninjato.Extent3d) *Subvolume {
	return &Subvolume{
		ID:          id,
		Extent:      extent,
		Regions:     make(map[uint64]*Region),
		Assignments: make(map[string]*Assignment),
		History:     make(map[string][]HistoryEvent),
		Comments:    make(map[uint64][]RegionComment),
		Active:      make(map[string][]string),
	}
}

// NewSubvolumeFromRaster builds a subvolume record whose region catalog holds
// the tight extent of every nonzero label in the raster.
func NewSubvolumeFromRaster(id string, vol *raster.Volume) *Subvolume {
	sv := NewSubvolume(id, vol.Extent)
	for label := range vol.LabelSet() {
		ext, _ := vol.RegionExtent(label)
		sv.Regions[label] = &Region{Extent: ext}
		if label > sv.MaxRegionID {
			sv.MaxRegionID = label
		}
	}
	return sv
}

// encode serializes the record with snappy compression and a CRC32 checksum.
func (sv *Subvolume) encode() ([]byte, error) {
	data, err := json.Marshal(sv)
	if err != nil {
		return nil, err
	}
	return ninjato.SerializeData(data, ninjato.Snappy, ninjato.CRC32)
}

func decodeSubvolume(value []byte) (*Subvolume, error) {
	data, err := ninjato.DeserializeData(value)
	if err != nil {
		return nil, err
	}
	sv := new(Subvolume)
	if err := json.Unmarshal(data, sv); err != nil {
		return nil, err
	}
	if sv.Regions == nil {
		sv.Regions = make(map[uint64]*Region)
	}
	if sv.Assignments == nil {
		sv.Assignments = make(map[string]*Assignment)
	}
	if sv.History == nil {
		sv.History = make(map[string][]HistoryEvent)
	}
	if sv.Comments == nil {
		sv.Comments = make(map[uint64][]RegionComment)
	}
	if sv.Active == nil {
		sv.Active = make(map[string][]string)
	}
	return sv, nil
}

// --- per-user active assignment pointers ---

func (sv *Subvolume) addActive(login, assignID string) {
	for _, id := range sv.Active[login] {
		if id == assignID {
			return
		}
	}
	sv.Active[login] = append(sv.Active[login], assignID)
}

func (sv *Subvolume) removeActive(login, assignID string) {
	ids := sv.Active[login]
	for i, id := range ids {
		if id == assignID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(sv.Active, login)
	} else {
		sv.Active[login] = ids
	}
}

// ActiveAssignments returns the user's active assignment ids.
func (sv *Subvolume) ActiveAssignments(login string) []string {
	return sv.Active[login]
}

func (sv *Subvolume) addComment(label uint64, user string, when time.Time, comment string) {
	sv.Comments[label] = append(sv.Comments[label], RegionComment{
		User:    user,
		Time:    when,
		Comment: comment,
	})
}
