package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-learn/lumen_api/shared"
)

func TestRewardForScore(t *testing.T) {
	cases := []struct {
		score      int
		difficulty string
		want       int
	}{
		{100, shared.DifficultyEasy, 100},
		{95, shared.DifficultyEasy, 100},
		{90, shared.DifficultyEasy, 75},
		{75, shared.DifficultyEasy, 75},
		{74, shared.DifficultyEasy, 50},
		{50, shared.DifficultyEasy, 50},
		{49, shared.DifficultyEasy, 25},
		{0, shared.DifficultyEasy, 25},
		{90, shared.DifficultyMedium, 93},
		{50, shared.DifficultyMedium, 62},
		{95, shared.DifficultyHard, 150},
		{75, shared.DifficultyHard, 112},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, RewardForScore(tc.score, tc.difficulty),
			"score=%d difficulty=%s", tc.score, tc.difficulty)
	}
}

func TestLevelForPoints(t *testing.T) {
	assert.Equal(t, 1, LevelForPoints(0))
	assert.Equal(t, 1, LevelForPoints(99))
	assert.Equal(t, 2, LevelForPoints(100))
	assert.Equal(t, 2, LevelForPoints(199))
	assert.Equal(t, 3, LevelForPoints(200))
	assert.Equal(t, 11, LevelForPoints(1000))
	assert.Equal(t, 1, LevelForPoints(-5))
}

func TestApplyTestCompleted(t *testing.T) {
	eng := newTestEngine(t)
	now := time.Now().UTC()

	progress, err := eng.progress.Apply(testCompletedEvent("user-1", "test-1", 90, shared.DifficultyEasy, now))
	require.NoError(t, err)

	assert.Equal(t, 75, progress.Points)
	assert.Equal(t, 75, progress.XP)
	assert.Equal(t, 1, progress.Level)
	assert.Equal(t, 1, progress.TestsCompleted)
	assert.InDelta(t, 90.0, progress.AvgScore, 0.001)
	assert.Equal(t, 1, progress.StreakCurrent)
}

func TestApplyDuplicateEventIsNoop(t *testing.T) {
	eng := newTestEngine(t)
	now := time.Now().UTC()

	event := testCompletedEvent("user-1", "test-1", 100, shared.DifficultyEasy, now)

	first, err := eng.progress.Apply(event)
	require.NoError(t, err)
	require.Equal(t, 100, first.Points)
	require.Equal(t, 2, first.Level)

	second, err := eng.progress.Apply(event)
	require.NoError(t, err)
	assert.Equal(t, 100, second.Points)
	assert.Equal(t, 1, second.TestsCompleted)
	assert.Equal(t, 2, second.Level)
}

func TestApplyTestRetakeCountsButPaysOnce(t *testing.T) {
	eng := newTestEngine(t)
	now := time.Now().UTC()

	_, err := eng.progress.Apply(testCompletedEvent("user-1", "test-1", 100, shared.DifficultyEasy, now))
	require.NoError(t, err)

	progress, err := eng.progress.Apply(testCompletedEvent("user-1", "test-1", 60, shared.DifficultyEasy, now))
	require.NoError(t, err)

	assert.Equal(t, 2, progress.TestsCompleted)
	assert.InDelta(t, 80.0, progress.AvgScore, 0.001)
	assert.Equal(t, 100, progress.Points, "retaken test must not pay twice")
}

func TestAvgScoreRunningMean(t *testing.T) {
	eng := newTestEngine(t)
	now := time.Now().UTC()

	scores := []int{100, 50, 75, 25}
	for i, score := range scores {
		_, err := eng.progress.Apply(testCompletedEvent("user-1", "test-"+string(rune('a'+i)), score, shared.DifficultyEasy, now))
		require.NoError(t, err)
	}

	progress, err := eng.store.GetUserProgress("user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, progress.TestsCompleted)
	assert.InDelta(t, 62.5, progress.AvgScore, 0.001)
}

func TestStreakRules(t *testing.T) {
	eng := newTestEngine(t)
	day1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	// First activity starts the streak.
	p, err := eng.progress.Apply(dailyLoginEvent("user-1", day1))
	require.NoError(t, err)
	assert.Equal(t, 1, p.StreakCurrent)

	// Same day keeps it.
	p, err = eng.progress.Apply(testCompletedEvent("user-1", "test-1", 80, shared.DifficultyEasy, day1.Add(4*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 1, p.StreakCurrent)

	// Next day extends it.
	p, err = eng.progress.Apply(dailyLoginEvent("user-1", day1.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 2, p.StreakCurrent)

	// A gap resets it to one.
	p, err = eng.progress.Apply(dailyLoginEvent("user-1", day1.Add(5*24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 1, p.StreakCurrent)
	assert.Equal(t, 2, p.StreakMax)
}

func TestApplyMaterialViewedPaysPerMaterial(t *testing.T) {
	eng := newTestEngine(t)
	now := time.Now().UTC()

	p, err := eng.progress.Apply(materialViewedEvent("user-1", "mat-1", now))
	require.NoError(t, err)
	assert.Equal(t, 10, p.Points)
	assert.Equal(t, 1, p.MaterialsViewed)

	// Re-viewing the same material counts but does not pay again.
	p, err = eng.progress.Apply(materialViewedEvent("user-1", "mat-1", now))
	require.NoError(t, err)
	assert.Equal(t, 10, p.Points)
	assert.Equal(t, 2, p.MaterialsViewed)

	p, err = eng.progress.Apply(materialViewedEvent("user-1", "mat-2", now))
	require.NoError(t, err)
	assert.Equal(t, 20, p.Points)
}

func TestApplyDailyLoginPaysOncePerDay(t *testing.T) {
	eng := newTestEngine(t)
	day1 := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

	p, err := eng.progress.Apply(dailyLoginEvent("user-1", day1))
	require.NoError(t, err)
	assert.Equal(t, 5, p.Points)
	assert.Equal(t, 1, p.LoginsTotal)

	p, err = eng.progress.Apply(dailyLoginEvent("user-1", day1.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 5, p.Points, "second login on the same day must not pay")
	assert.Equal(t, 2, p.LoginsTotal)

	p, err = eng.progress.Apply(dailyLoginEvent("user-1", day1.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 10, p.Points)
}

func TestLevelUpAtHundredPoints(t *testing.T) {
	eng := newTestEngine(t)
	now := time.Now().UTC()

	p, err := eng.progress.Apply(testCompletedEvent("user-1", "test-1", 80, shared.DifficultyEasy, now))
	require.NoError(t, err)
	require.Equal(t, 75, p.Points)
	assert.Equal(t, 1, p.Level)

	p, err = eng.progress.Apply(testCompletedEvent("user-1", "test-2", 80, shared.DifficultyEasy, now))
	require.NoError(t, err)
	require.Equal(t, 150, p.Points)
	assert.Equal(t, 2, p.Level)
}

func TestGetUserProgressUnknownUser(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.progress.GetUserProgress("nobody")
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}
