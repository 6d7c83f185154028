package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-learn/lumen_api/model"
)

func newTestLeaderboard() *LeaderboardService {
	return &LeaderboardService{
		byUser:   make(map[string]lbEntry),
		cacheTTL: time.Second,
	}
}

func lbProgress(userID string, points, tests int) *model.UserProgress {
	return &model.UserProgress{
		UserID:         userID,
		Points:         points,
		Level:          LevelForPoints(points),
		TestsCompleted: tests,
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	lb := newTestLeaderboard()

	lb.Upsert(lbProgress("alice", 300, 5))
	lb.Upsert(lbProgress("bob", 500, 2))
	lb.Upsert(lbProgress("carol", 300, 8))

	page, total := lb.Query(10, 0)
	require.Equal(t, 3, total)
	require.Len(t, page, 3)

	assert.Equal(t, "bob", page[0].UserID)
	// Equal points, carol has more tests completed.
	assert.Equal(t, "carol", page[1].UserID)
	assert.Equal(t, "alice", page[2].UserID)
}

func TestLeaderboardTieBreakByUserID(t *testing.T) {
	lb := newTestLeaderboard()

	lb.Upsert(lbProgress("zed", 100, 1))
	lb.Upsert(lbProgress("amy", 100, 1))

	page, _ := lb.Query(10, 0)
	require.Len(t, page, 2)
	assert.Equal(t, "amy", page[0].UserID)
	assert.Equal(t, "zed", page[1].UserID)
}

func TestLeaderboardUpsertMovesUser(t *testing.T) {
	lb := newTestLeaderboard()

	lb.Upsert(lbProgress("alice", 100, 1))
	lb.Upsert(lbProgress("bob", 200, 1))

	rank, _, ok := lb.RankOf("alice")
	require.True(t, ok)
	assert.Equal(t, 2, rank)

	lb.Upsert(lbProgress("alice", 300, 2))

	rank, entry, ok := lb.RankOf("alice")
	require.True(t, ok)
	assert.Equal(t, 1, rank)
	assert.Equal(t, 300, entry.Points)

	_, total := lb.Query(10, 0)
	assert.Equal(t, 2, total, "upsert must not duplicate a user")
}

func TestLeaderboardRankMatchesQuery(t *testing.T) {
	lb := newTestLeaderboard()

	for i := 0; i < 20; i++ {
		lb.Upsert(lbProgress(fmt.Sprintf("user-%02d", i), i*10, i))
	}

	page, _ := lb.Query(20, 0)
	for _, e := range page {
		rank, _, ok := lb.RankOf(e.UserID)
		require.True(t, ok)
		assert.Equal(t, e.Rank, rank)
	}
}

func TestLeaderboardPagination(t *testing.T) {
	lb := newTestLeaderboard()

	for i := 0; i < 10; i++ {
		lb.Upsert(lbProgress(fmt.Sprintf("user-%02d", i), i*10, 0))
	}

	page, total := lb.Query(3, 0)
	assert.Equal(t, 10, total)
	require.Len(t, page, 3)
	assert.Equal(t, 1, page[0].Rank)

	page, _ = lb.Query(3, 8)
	require.Len(t, page, 2)
	assert.Equal(t, 9, page[0].Rank)

	page, _ = lb.Query(3, 50)
	assert.Empty(t, page)
}

func TestLeaderboardRankOfUnknownUser(t *testing.T) {
	lb := newTestLeaderboard()

	_, _, ok := lb.RankOf("nobody")
	assert.False(t, ok)
}

func TestLeaderboardConcurrentUpserts(t *testing.T) {
	lb := newTestLeaderboard()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for round := 0; round < 10; round++ {
				lb.Upsert(lbProgress(fmt.Sprintf("user-%02d", n), n*10+round, round))
			}
		}(i)
	}
	wg.Wait()

	page, total := lb.Query(100, 0)
	require.Equal(t, 50, total)
	require.Len(t, page, 50)

	for i := 1; i < len(page); i++ {
		prev, cur := page[i-1], page[i]
		ordered := prev.Points > cur.Points ||
			(prev.Points == cur.Points && prev.TestsCompleted > cur.TestsCompleted) ||
			(prev.Points == cur.Points && prev.TestsCompleted == cur.TestsCompleted && prev.UserID < cur.UserID)
		assert.True(t, ordered, "index out of order at position %d", i)
	}
}

func TestLeaderboardRebuildFromStore(t *testing.T) {
	eng := newTestEngine(t)
	now := time.Now().UTC()

	_, err := eng.progress.Apply(testCompletedEvent("user-1", "test-1", 100, "easy", now))
	require.NoError(t, err)
	_, err = eng.progress.Apply(testCompletedEvent("user-2", "test-1", 60, "easy", now))
	require.NoError(t, err)

	fresh := &LeaderboardService{
		store:    eng.store,
		byUser:   make(map[string]lbEntry),
		cacheTTL: time.Second,
	}
	require.NoError(t, fresh.Rebuild())

	page, total := fresh.Query(10, 0)
	require.Equal(t, 2, total)
	assert.Equal(t, "user-1", page[0].UserID)
	assert.Equal(t, "user-2", page[1].UserID)
}
