package model

import "time"

// LedgerEntry is the append-only record of a credited reward. The composite
// unique index on (source_type, source_id, user_id) is the at-most-once
// guarantee for every points credit in the engine.
type LedgerEntry struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"uniqueIndex:idx_ledger_source;not null"`
	SourceType    string    `json:"source_type" gorm:"uniqueIndex:idx_ledger_source;not null"`
	SourceID      string    `json:"source_id" gorm:"uniqueIndex:idx_ledger_source;not null"`
	PointsAwarded int       `json:"points_awarded" gorm:"not null"`
	RecordedAt    time.Time `json:"recorded_at" gorm:"not null"`
}
