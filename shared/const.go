package shared

const (
	UserID = "user_id"

	EventTestCompleted  = "TestCompleted"
	EventMaterialViewed = "MaterialViewed"
	EventDailyLogin     = "DailyLogin"

	SourceTest        = "test"
	SourceQuest       = "quest"
	SourceAchievement = "achievement"
	SourceMaterial    = "material"
	SourceLogin       = "login"

	QuestKindDaily       = "daily"
	QuestKindWeekly      = "weekly"
	QuestKindAchievement = "achievement"
	QuestKindSpecial     = "special"

	QuestStatusAvailable  = "available"
	QuestStatusInProgress = "in_progress"
	QuestStatusCompleted  = "completed"
	QuestStatusClaimed    = "claimed"
	QuestStatusExpired    = "expired"

	MetricTestsCompleted  = "tests_completed"
	MetricMaterialsViewed = "materials_viewed"
	MetricDailyLogins     = "daily_logins"
	MetricPoints          = "points"
	MetricStreakCurrent   = "streak_current"
	MetricStreakMax       = "streak_max"
	MetricLevel           = "level"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	NotificationLevelUp             = "LevelUp"
	NotificationQuestCompleted      = "QuestCompleted"
	NotificationAchievementUnlocked = "AchievementUnlocked"
)

// QuestMetrics are the metrics a quest may track via events.
var QuestMetrics = []string{
	MetricTestsCompleted,
	MetricMaterialsViewed,
	MetricDailyLogins,
	MetricPoints,
	MetricStreakCurrent,
}

// AchievementMetrics are the aggregate fields an achievement threshold may read.
var AchievementMetrics = []string{
	MetricTestsCompleted,
	MetricMaterialsViewed,
	MetricDailyLogins,
	MetricPoints,
	MetricStreakCurrent,
	MetricStreakMax,
	MetricLevel,
}

func IsQuestMetric(metric string) bool {
	for _, m := range QuestMetrics {
		if m == metric {
			return true
		}
	}
	return false
}

func IsAchievementMetric(metric string) bool {
	for _, m := range AchievementMetrics {
		if m == metric {
			return true
		}
	}
	return false
}
