package logging

import (
	"context"
	"time"

	"github.com/skyops/fleetmatch/core/model"
)

// LogQuery defines filters for retrieving reassignment log entries.
type LogQuery struct {
	Start     time.Time
	End       time.Time
	MissionID string
	Outcome   model.ReassignmentOutcome
}

// LogStore persists the append-only reassignment log and supports querying.
type LogStore interface {
	Append(ctx context.Context, entry model.ReassignmentLogEntry) error
	Query(ctx context.Context, q LogQuery) ([]model.ReassignmentLogEntry, error)
	Close() error
}

func matches(e model.ReassignmentLogEntry, q LogQuery) bool {
	if !q.Start.IsZero() && e.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && e.Timestamp.After(q.End) {
		return false
	}
	if q.MissionID != "" && e.MissionID != q.MissionID {
		return false
	}
	if q.Outcome != "" && e.Outcome != q.Outcome {
		return false
	}
	return true
}
