package model

import "time"

// Quest is an authored goal: track a metric up to a target, pay reward points
// on claim. Daily/weekly quests carry an expiry; achievement/special quests
// usually do not.
type Quest struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description"`
	Kind         string     `json:"kind" gorm:"not null"` // daily, weekly, achievement, special
	Metric       string     `json:"metric" gorm:"not null"`
	Target       int        `json:"target" gorm:"not null"`
	RewardPoints int        `json:"reward_points" gorm:"not null"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// QuestProgress tracks one user's advance through one quest. Created lazily
// on the first relevant event. Status only moves forward:
// available -> in_progress -> completed -> claimed, with expired reachable
// from available/in_progress only.
type QuestProgress struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	UserID        string     `json:"user_id" gorm:"uniqueIndex:idx_user_quest;not null"`
	QuestID       string     `json:"quest_id" gorm:"uniqueIndex:idx_user_quest;not null"`
	ProgressCount int        `json:"progress_count" gorm:"default:0"`
	Status        string     `json:"status" gorm:"default:available"`
	CompletedAt   *time.Time `json:"completed_at"`
	ClaimedAt     *time.Time `json:"claimed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Quest Quest `json:"quest" gorm:"foreignKey:QuestID"`
}
