package model

import "time"

// UserProgress is the canonical per-user aggregate. Created lazily on the
// first event for a user; only the progress service writes it.
type UserProgress struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	UserID           string     `json:"user_id" gorm:"uniqueIndex;not null"`
	Points           int        `json:"points" gorm:"default:0"`
	XP               int        `json:"xp" gorm:"default:0"`
	Level            int        `json:"level" gorm:"default:1"`
	TestsCompleted   int        `json:"tests_completed" gorm:"default:0"`
	AvgScore         float64    `json:"avg_score" gorm:"default:0"`
	MaterialsViewed  int        `json:"materials_viewed" gorm:"default:0"`
	LoginsTotal      int        `json:"logins_total" gorm:"default:0"`
	StreakCurrent    int        `json:"streak_current" gorm:"default:0"`
	StreakMax        int        `json:"streak_max" gorm:"default:0"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MetricValue reads an aggregate field by metric name. Used by the
// achievement evaluator and quest tracker so thresholds stay data-driven.
func (p *UserProgress) MetricValue(metric string) int {
	switch metric {
	case "tests_completed":
		return p.TestsCompleted
	case "materials_viewed":
		return p.MaterialsViewed
	case "daily_logins":
		return p.LoginsTotal
	case "points":
		return p.Points
	case "streak_current":
		return p.StreakCurrent
	case "streak_max":
		return p.StreakMax
	case "level":
		return p.Level
	default:
		return 0
	}
}
