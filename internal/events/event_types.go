package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCrisisCreated EventType = "crisis_created"
	EventCrisisUpdated EventType = "crisis_updated"
	EventCrisisDeleted EventType = "crisis_deleted"
)

// AllEventTypes lists every event type the service emits.
var AllEventTypes = []EventType{EventCrisisCreated, EventCrisisUpdated, EventCrisisDeleted}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CrisisID  int64       `json:"crisis_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CrisisCreatedPayload payload.
type CrisisCreatedPayload struct {
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
}

// CrisisUpdatedPayload payload.
type CrisisUpdatedPayload struct {
	OldStatus     string   `json:"old_status"`
	NewStatus     string   `json:"new_status"`
	ChangedFields []string `json:"changed_fields"`
}

// CrisisDeletedPayload payload.
type CrisisDeletedPayload struct {
	Title string `json:"title"`
}
