package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TRIAGE_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Cross-service event codes carried over the durable bus.
const (
	TypeTriageCompleted = "TRIAGE_COMPLETED"
	TypeTriageError     = "TRIAGE_ERROR"
	TypeMatchesReady    = "MATCHES_READY"
)

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewTriageCompleted signals that a case finished triage and carries the
// classification downstream consumers need.
func NewTriageCompleted(caseId uuid.UUID, area, subarea string, urgencyHours int) BaseEvent {
	return BaseEvent{
		Type: TypeTriageCompleted,
		Data: map[string]interface{}{
			"case_id":       caseId.String(),
			"area":          area,
			"subarea":       subarea,
			"urgency_hours": urgencyHours,
		},
		OccurredAt: time.Now(),
	}
}

// NewMatchesReady signals that a ranking run persisted matches for a case.
func NewMatchesReady(caseId uuid.UUID, lawyerIds []uuid.UUID, preset string) BaseEvent {
	ids := make([]string, len(lawyerIds))
	for i, id := range lawyerIds {
		ids[i] = id.String()
	}
	return BaseEvent{
		Type: TypeMatchesReady,
		Data: map[string]interface{}{
			"case_id":    caseId.String(),
			"lawyer_ids": ids,
			"preset":     preset,
		},
		OccurredAt: time.Now(),
	}
}
