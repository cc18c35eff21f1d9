package ninjato

import "fmt"

// ErrorKind classifies workflow errors so callers can map them to user-facing
// messages or HTTP-equivalent responses without string matching.
type ErrorKind uint8

const (
	// InvalidTransition means the requested operation is not legal from the
	// assignment's current derived status.
	InvalidTransition ErrorKind = iota

	// AlreadyAssigned means the target region is held by another user.
	AlreadyAssigned

	// AlreadyCompleted means the target region's annotation or review is done.
	AlreadyCompleted

	// NotOwner means the acting user is not the current assignee.
	NotOwner

	// InvalidRegion means the region label is unknown to the catalog.
	InvalidRegion

	// InvalidState means an internal invariant would be violated, e.g.,
	// removing a region still linked to an active assignment.
	InvalidState

	// MissingArtifact means an expected raster blob was not found.
	MissingArtifact

	// ConcurrentUpdateConflict means a compare-and-swap on the subvolume
	// record failed too many times.  Retried internally before surfacing.
	ConcurrentUpdateConflict

	// StorageUnavailable means the record or blob store failed outright.
	StorageUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidTransition:
		return "invalid transition"
	case AlreadyAssigned:
		return "already assigned"
	case AlreadyCompleted:
		return "already completed"
	case NotOwner:
		return "not owner"
	case InvalidRegion:
		return "invalid region"
	case InvalidState:
		return "invalid state"
	case MissingArtifact:
		return "missing artifact"
	case ConcurrentUpdateConflict:
		return "concurrent update conflict"
	case StorageUnavailable:
		return "storage unavailable"
	default:
		return "unknown error"
	}
}

// WorkflowError carries the offending assignment and region label along with
// the error kind so callers can render a useful message.
type WorkflowError struct {
	Kind         ErrorKind
	AssignmentID string
	Label        uint64
	msg          string
	wrapped      error
}

func (e *WorkflowError) Error() string {
	s := e.Kind.String()
	if e.AssignmentID != "" {
		s += fmt.Sprintf(" [assignment %s]", e.AssignmentID)
	}
	if e.Label != 0 {
		s += fmt.Sprintf(" [region %d]", e.Label)
	}
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.wrapped != nil {
		s += ": " + e.wrapped.Error()
	}
	return s
}

func (e *WorkflowError) Unwrap() error {
	return e.wrapped
}

// Is matches any WorkflowError of the same kind, so
// errors.Is(err, ninjato.ErrAlreadyAssigned) works regardless of context.
func (e *WorkflowError) Is(target error) bool {
	t, ok := target.(*WorkflowError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Kind sentinels for use with errors.Is.
var (
	ErrInvalidTransition        = &WorkflowError{Kind: InvalidTransition}
	ErrAlreadyAssigned          = &WorkflowError{Kind: AlreadyAssigned}
	ErrAlreadyCompleted         = &WorkflowError{Kind: AlreadyCompleted}
	ErrNotOwner                 = &WorkflowError{Kind: NotOwner}
	ErrInvalidRegion            = &WorkflowError{Kind: InvalidRegion}
	ErrInvalidState             = &WorkflowError{Kind: InvalidState}
	ErrMissingArtifact          = &WorkflowError{Kind: MissingArtifact}
	ErrConcurrentUpdateConflict = &WorkflowError{Kind: ConcurrentUpdateConflict}
	ErrStorageUnavailable       = &WorkflowError{Kind: StorageUnavailable}
)

// NewError returns a WorkflowError of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// AssignmentError is like NewError but tags the error with an assignment id.
func AssignmentError(kind ErrorKind, assignID string, format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: kind, AssignmentID: assignID, msg: fmt.Sprintf(format, args...)}
}

// RegionError is like NewError but tags the error with a region label.
func RegionError(kind ErrorKind, label uint64, format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: kind, Label: label, msg: fmt.Sprintf(format, args...)}
}

// WrapError wraps an underlying error, typically a storage failure, with a kind.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: kind, msg: fmt.Sprintf(format, args...), wrapped: err}
}
