package models

import "time"

// Session event types.
const (
	EventStart      = "START"
	EventLap        = "LAP"
	EventDecelerate = "DECELERATE"
	EventComplete   = "COMPLETE"
	EventError      = "ERROR"
)

// SessionEvent is a single log entry.
type SessionEvent struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | LAP | DECELERATE | COMPLETE | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
