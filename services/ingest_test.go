package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-learn/lumen_api/shared"
)

func TestIngestAppliesQueuedEvents(t *testing.T) {
	eng := newTestEngine(t)
	ing := &IngestService{
		progress:  eng.progress,
		workers:   4,
		queueSize: 128,
	}
	ing.run()

	now := time.Now().UTC()
	const n = 30
	for i := 0; i < n; i++ {
		err := ing.Enqueue(testCompletedEvent("user-1", fmt.Sprintf("test-%03d", i), 80, shared.DifficultyEasy, now))
		require.NoError(t, err)
	}

	ing.Shutdown()

	progress, err := eng.store.GetUserProgress("user-1")
	require.NoError(t, err)
	assert.Equal(t, n, progress.TestsCompleted)
	assert.Equal(t, n*75, progress.Points)
	assert.InDelta(t, 80.0, progress.AvgScore, 0.001)
}

func TestIngestMultipleUsersInParallel(t *testing.T) {
	eng := newTestEngine(t)
	ing := &IngestService{
		progress:  eng.progress,
		workers:   4,
		queueSize: 128,
	}
	ing.run()

	now := time.Now().UTC()
	users := []string{"user-1", "user-2", "user-3", "user-4", "user-5"}
	for _, user := range users {
		for i := 0; i < 10; i++ {
			err := ing.Enqueue(testCompletedEvent(user, fmt.Sprintf("test-%03d", i), 80, shared.DifficultyEasy, now))
			require.NoError(t, err)
		}
	}

	ing.Shutdown()

	for _, user := range users {
		progress, err := eng.store.GetUserProgress(user)
		require.NoError(t, err)
		assert.Equal(t, 10, progress.TestsCompleted, "user %s", user)
	}
}

func TestIngestFullQueueRejects(t *testing.T) {
	eng := newTestEngine(t)
	ing := &IngestService{
		progress:  eng.progress,
		workers:   1,
		queueSize: 2,
	}
	// Queues without consumers, so the buffer fills deterministically.
	ing.initQueues()

	now := time.Now().UTC()
	require.NoError(t, ing.Enqueue(testEvent("user-1", shared.EventDailyLogin, now)))
	require.NoError(t, ing.Enqueue(testEvent("user-1", shared.EventDailyLogin, now)))

	err := ing.Enqueue(testEvent("user-1", shared.EventDailyLogin, now))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrTransient))

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 503, appErr.StatusCode)
}

func TestIngestSameUserSameWorker(t *testing.T) {
	ing := &IngestService{workers: 8, queueSize: 1}

	first := ing.workerFor("user-42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ing.workerFor("user-42"))
	}
}
