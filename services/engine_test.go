package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

// testEngine wires the domain services against an in-memory sqlite store,
// bypassing the service container.
type testEngine struct {
	store        *SqlStore
	ledger       *LedgerService
	progress     *ProgressService
	quests       *QuestService
	achievements *AchievementService
	leaderboard  *LeaderboardService
}

func newTestStore(t *testing.T) *SqlStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection serializes concurrent transactions, which keeps
	// sqlite's shared-cache table locks out of concurrency tests.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := NewSqlStore(db)
	require.NoError(t, store.Migrate())
	return store
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	store := newTestStore(t)

	ledger := &LedgerService{store: store}
	leaderboard := &LeaderboardService{
		store:    store,
		byUser:   make(map[string]lbEntry),
		cacheTTL: time.Second,
	}
	achievements := &AchievementService{store: store}
	quests := &QuestService{
		store:      store,
		sweepEvery: time.Hour,
		stopSweep:  make(chan struct{}),
	}
	progress := &ProgressService{
		store:        store,
		ledger:       ledger,
		quests:       quests,
		achievements: achievements,
		leaderboard:  leaderboard,
		rewards: RewardConfig{
			MaterialViewPoints: 10,
			DailyLoginPoints:   5,
		},
		userLocks: make(map[string]*sync.Mutex),
	}
	achievements.progress = progress
	quests.progress = progress

	return &testEngine{
		store:        store,
		ledger:       ledger,
		progress:     progress,
		quests:       quests,
		achievements: achievements,
		leaderboard:  leaderboard,
	}
}

func testEvent(userID, eventType string, occurredAt time.Time) *model.Event {
	return &model.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: occurredAt,
	}
}

func testCompletedEvent(userID, testID string, score int, difficulty string, occurredAt time.Time) *model.Event {
	e := testEvent(userID, shared.EventTestCompleted, occurredAt)
	e.TestID = testID
	e.Score = score
	e.Difficulty = difficulty
	return e
}

func materialViewedEvent(userID, materialID string, occurredAt time.Time) *model.Event {
	e := testEvent(userID, shared.EventMaterialViewed, occurredAt)
	e.MaterialID = materialID
	return e
}

func dailyLoginEvent(userID string, occurredAt time.Time) *model.Event {
	return testEvent(userID, shared.EventDailyLogin, occurredAt)
}
