package entities

import "time"

// AuditEvent is an immutable record of a significant system event.
// Like ledger entries, audit events are append-only.
type AuditEvent struct {
	ID        int64     `json:"id" db:"id"`
	EventType string    `json:"event_type" db:"event_type"`
	Details   string    `json:"details" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
