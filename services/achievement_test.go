package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

func seedAchievement(t *testing.T, eng *testEngine, name, metric string, threshold, reward int) *model.Achievement {
	t.Helper()

	achievement := &model.Achievement{
		Name:         name,
		Metric:       metric,
		Threshold:    threshold,
		RewardPoints: reward,
		IsActive:     true,
	}
	require.NoError(t, eng.store.CreateAchievement(achievement))
	return achievement
}

func TestAchievementUnlocksAtThreshold(t *testing.T) {
	eng := newTestEngine(t)
	achievement := seedAchievement(t, eng, "First Steps", shared.MetricTestsCompleted, 1, 25)
	now := time.Now().UTC()

	progress, err := eng.progress.Apply(testCompletedEvent("user-1", "test-1", 80, shared.DifficultyEasy, now))
	require.NoError(t, err)

	// 75 from the test plus the 25 unlock bonus.
	assert.Equal(t, 100, progress.Points)

	unlocks, err := eng.store.ListAchievementUnlocks("user-1")
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
	assert.Equal(t, achievement.ID, unlocks[0].AchievementID)
}

func TestAchievementFiresOnce(t *testing.T) {
	eng := newTestEngine(t)
	seedAchievement(t, eng, "First Steps", shared.MetricTestsCompleted, 1, 25)
	now := time.Now().UTC()

	_, err := eng.progress.Apply(testCompletedEvent("user-1", "test-1", 80, shared.DifficultyEasy, now))
	require.NoError(t, err)
	_, err = eng.progress.Apply(testCompletedEvent("user-1", "test-2", 80, shared.DifficultyEasy, now))
	require.NoError(t, err)

	unlocks, err := eng.store.ListAchievementUnlocks("user-1")
	require.NoError(t, err)
	assert.Len(t, unlocks, 1)

	entries, err := eng.store.ListLedgerEntries("user-1", 0)
	require.NoError(t, err)
	bonuses := 0
	for _, e := range entries {
		if e.SourceType == shared.SourceAchievement {
			bonuses++
		}
	}
	assert.Equal(t, 1, bonuses, "unlock bonus must pay exactly once")
}

func TestAchievementRewardCascades(t *testing.T) {
	eng := newTestEngine(t)
	seedAchievement(t, eng, "Century", shared.MetricPoints, 100, 100)
	seedAchievement(t, eng, "Centurion", shared.MetricPoints, 150, 0)
	now := time.Now().UTC()

	// 100 easy pays 100 points, the first unlock pays 100 more, which
	// carries the aggregate past the second threshold in the same event.
	progress, err := eng.progress.Apply(testCompletedEvent("user-1", "test-1", 100, shared.DifficultyEasy, now))
	require.NoError(t, err)
	assert.Equal(t, 200, progress.Points)

	unlocks, err := eng.store.ListAchievementUnlocks("user-1")
	require.NoError(t, err)
	assert.Len(t, unlocks, 2)
}

func TestClaimRewardUnlocksPointsAchievement(t *testing.T) {
	eng := newTestEngine(t)
	quest := seedQuest(t, eng, shared.MetricTestsCompleted, 1, 80, nil)
	seedAchievement(t, eng, "Century", shared.MetricPoints, 100, 25)
	now := time.Now().UTC()

	// 40 easy pays 25 points, well below the threshold.
	_, err := eng.progress.Apply(testCompletedEvent("user-1", "test-1", 40, shared.DifficultyEasy, now))
	require.NoError(t, err)

	unlocks, err := eng.store.ListAchievementUnlocks("user-1")
	require.NoError(t, err)
	require.Empty(t, unlocks)

	// The 80-point claim reward carries the aggregate past 100, so the
	// unlock must fire at that commit without waiting for another event.
	_, err = eng.quests.Claim("user-1", quest.ID)
	require.NoError(t, err)

	unlocks, err = eng.store.ListAchievementUnlocks("user-1")
	require.NoError(t, err)
	require.Len(t, unlocks, 1)

	progress, err := eng.store.GetUserProgress("user-1")
	require.NoError(t, err)
	assert.Equal(t, 130, progress.Points)
	assert.Equal(t, 2, progress.Level)
}

func TestAchievementOnStreakMax(t *testing.T) {
	eng := newTestEngine(t)
	seedAchievement(t, eng, "Streak Three", shared.MetricStreakMax, 3, 50)
	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := eng.progress.Apply(dailyLoginEvent("user-1", day1.Add(time.Duration(i)*24*time.Hour)))
		require.NoError(t, err)
	}

	unlocks, err := eng.store.ListAchievementUnlocks("user-1")
	require.NoError(t, err)
	require.Len(t, unlocks, 1)

	achievements, err := eng.achievements.GetUserAchievements("user-1")
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, "Streak Three", achievements[0].Name)
}
