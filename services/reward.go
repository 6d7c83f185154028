package services

import (
	"os"
	"strconv"

	"github.com/lumen-learn/lumen_api/shared"
)

// RewardConfig holds the tunable credit amounts. Test rewards follow the
// score/difficulty table below; material views and daily logins pay a flat
// configured amount.
type RewardConfig struct {
	MaterialViewPoints int
	DailyLoginPoints   int
}

func NewRewardConfig() RewardConfig {
	return RewardConfig{
		MaterialViewPoints: envInt("REWARD_MATERIAL_VIEW_POINTS", 10),
		DailyLoginPoints:   envInt("REWARD_DAILY_LOGIN_POINTS", 5),
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return fallback
}

// RewardForScore maps a test score and difficulty to points. Base tiers pay
// for performance, the difficulty multiplier pays for harder tests. The
// result is truncated toward zero.
func RewardForScore(score int, difficulty string) int {
	var base int
	switch {
	case score >= 95:
		base = 100
	case score >= 75:
		base = 75
	case score >= 50:
		base = 50
	default:
		base = 25
	}

	switch difficulty {
	case shared.DifficultyHard:
		return base * 150 / 100
	case shared.DifficultyMedium:
		return base * 125 / 100
	default:
		return base
	}
}

// LevelForPoints is the canonical level curve: one level per 100 lifetime
// points, starting at level 1.
func LevelForPoints(points int) int {
	if points < 0 {
		return 1
	}
	return points/100 + 1
}
