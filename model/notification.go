package model

import "time"

// NotificationIntent is what the engine hands to the external real-time
// delivery collaborator. Fan-out is entirely the collaborator's problem.
type NotificationIntent struct {
	Type       string                 `json:"type"` // LevelUp, QuestCompleted, AchievementUnlocked
	UserID     string                 `json:"user_id"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}
