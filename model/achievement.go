package model

import "time"

// Achievement is a one-time threshold unlock on an aggregate metric.
type Achievement struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description"`
	BadgeURL     string    `json:"badge_url"`
	Metric       string    `json:"metric" gorm:"not null"`
	Threshold    int       `json:"threshold" gorm:"not null"`
	RewardPoints int       `json:"reward_points" gorm:"default:0"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AchievementUnlock records that a user unlocked an achievement. The unique
// pair index is the single-fire serialization point.
type AchievementUnlock struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"uniqueIndex:idx_user_achievement;not null"`
	AchievementID string    `json:"achievement_id" gorm:"uniqueIndex:idx_user_achievement;not null"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	CreatedAt     time.Time `json:"created_at"`

	Achievement Achievement `json:"achievement" gorm:"foreignKey:AchievementID"`
}
