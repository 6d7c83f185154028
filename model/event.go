package model

import "time"

// Event is an immutable fact emitted by an external producer. The producer
// guarantees at-least-once delivery; the engine guarantees at-most-once effect
// via the event ID.
type Event struct {
	ID         string
	Type       string
	UserID     string
	OccurredAt time.Time

	// TestCompleted payload
	TestID     string
	Score      int
	Difficulty string

	// MaterialViewed payload
	MaterialID string
}

// ProcessedEvent is the dedup record for applied events. The unique event_id
// index is what makes retried delivery a no-op.
type ProcessedEvent struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	EventID     string    `json:"event_id" gorm:"uniqueIndex;not null"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	EventType   string    `json:"event_type" gorm:"not null"`
	ProcessedAt time.Time `json:"processed_at" gorm:"not null"`
}
