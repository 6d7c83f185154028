package dto

import (
	"time"

	"github.com/lumen-learn/lumen_api/model"
)

type UserProgressResponse struct {
	UserID           string     `json:"user_id"`
	Points           int        `json:"points"`
	XP               int        `json:"xp"`
	Level            int        `json:"level"`
	TestsCompleted   int        `json:"tests_completed"`
	AvgScore         float64    `json:"avg_score"`
	MaterialsViewed  int        `json:"materials_viewed"`
	LoginsTotal      int        `json:"logins_total"`
	StreakCurrent    int        `json:"streak_current"`
	StreakMax        int        `json:"streak_max"`
	LastActivityDate *time.Time `json:"last_activity_date"`
}

func NewUserProgressResponse(p *model.UserProgress) *UserProgressResponse {
	return &UserProgressResponse{
		UserID:           p.UserID,
		Points:           p.Points,
		XP:               p.XP,
		Level:            p.Level,
		TestsCompleted:   p.TestsCompleted,
		AvgScore:         p.AvgScore,
		MaterialsViewed:  p.MaterialsViewed,
		LoginsTotal:      p.LoginsTotal,
		StreakCurrent:    p.StreakCurrent,
		StreakMax:        p.StreakMax,
		LastActivityDate: p.LastActivityDate,
	}
}

// Leaderboard DTOs
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	UserID         string `json:"user_id"`
	Points         int    `json:"points"`
	Level          int    `json:"level"`
	TestsCompleted int    `json:"tests_completed"`
	StreakCurrent  int    `json:"streak_current"`
}

type LeaderboardResponse struct {
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
	Entries []LeaderboardEntry `json:"entries"`
}

type RankResponse struct {
	UserID string `json:"user_id"`
	Rank   int    `json:"rank"`
	Points int    `json:"points"`
	Total  int    `json:"total"`
}
