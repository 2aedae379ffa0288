package assignment

import (
	"errors"
	"fmt"

	"github.com/skyops/fleetmatch/core/model"
)

// ErrNoEligibleCandidate signals that ranking returned no viable pair.
var ErrNoEligibleCandidate = errors.New("no eligible candidate")

// NotFoundError reports an unknown pilot, drone, or mission ID.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConstraintViolationError carries the full conflict report of a failed
// commit-time validation.
type ConstraintViolationError struct {
	Report model.ConflictReport
}

func (e ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violation for mission %s: %s", e.Report.MissionID, e.Report.Reason())
}

// IOFailureError wraps a persistence failure. The in-memory commit has been
// rolled back when this is returned.
type IOFailureError struct {
	Op  string
	Err error
}

func (e IOFailureError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e IOFailureError) Unwrap() error { return e.Err }
