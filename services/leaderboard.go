package services

import (
	goContext "context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/lumen-learn/lumen_api/dto"
	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

// LeaderboardService keeps the full ranking in memory, ordered by points
// descending with tests completed then user ID as deterministic tie-breaks.
// The index rebuilds from the store at startup and is updated on every
// aggregate change; redis only caches rendered pages.
type LeaderboardService struct {
	context.DefaultService

	store *SqlStore
	cache *RedisService

	mu      sync.RWMutex
	entries []lbEntry
	byUser  map[string]lbEntry
	version uint64

	cacheTTL time.Duration
}

type lbEntry struct {
	UserID         string `json:"user_id"`
	Points         int    `json:"points"`
	Level          int    `json:"level"`
	TestsCompleted int    `json:"tests_completed"`
	StreakCurrent  int    `json:"streak_current"`
}

// lbLess orders a strictly before b in the ranking.
func lbLess(a, b lbEntry) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.TestsCompleted != b.TestsCompleted {
		return a.TestsCompleted > b.TestsCompleted
	}
	return a.UserID < b.UserID
}

const LEADERBOARD_SVC = "leaderboard_svc"

func (svc *LeaderboardService) Id() string {
	return LEADERBOARD_SVC
}

func (svc *LeaderboardService) Configure(ctx *context.Context) error {
	svc.byUser = make(map[string]lbEntry)
	svc.cacheTTL = 30 * time.Second
	return svc.DefaultService.Configure(ctx)
}

func (svc *LeaderboardService) Start() error {
	svc.store = databaseStore(svc.Service(SQLITE_SVC), svc.Service(POSTGRES_SVC))
	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok {
		svc.cache = redisSvc
	}

	return svc.Rebuild()
}

// Rebuild reloads the index from the store.
func (svc *LeaderboardService) Rebuild() error {
	rows, err := svc.store.ListUserProgress()
	if err != nil {
		return err
	}

	entries := make([]lbEntry, 0, len(rows))
	byUser := make(map[string]lbEntry, len(rows))
	for i := range rows {
		e := lbEntry{
			UserID:         rows[i].UserID,
			Points:         rows[i].Points,
			Level:          rows[i].Level,
			TestsCompleted: rows[i].TestsCompleted,
			StreakCurrent:  rows[i].StreakCurrent,
		}
		entries = append(entries, e)
		byUser[e.UserID] = e
	}
	sort.Slice(entries, func(i, j int) bool { return lbLess(entries[i], entries[j]) })

	svc.mu.Lock()
	svc.entries = entries
	svc.byUser = byUser
	svc.version++
	svc.mu.Unlock()

	ObserveLeaderboardSize(len(entries))
	log.WithField("entries", len(entries)).Info("Leaderboard index rebuilt")
	return nil
}

// Upsert folds one user's latest aggregate into the index.
func (svc *LeaderboardService) Upsert(progress *model.UserProgress) {
	entry := lbEntry{
		UserID:         progress.UserID,
		Points:         progress.Points,
		Level:          progress.Level,
		TestsCompleted: progress.TestsCompleted,
		StreakCurrent:  progress.StreakCurrent,
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if old, ok := svc.byUser[entry.UserID]; ok {
		if old == entry {
			return
		}
		idx := svc.locate(old)
		svc.entries = append(svc.entries[:idx], svc.entries[idx+1:]...)
	}

	pos := sort.Search(len(svc.entries), func(i int) bool {
		return lbLess(entry, svc.entries[i])
	})
	svc.entries = append(svc.entries, lbEntry{})
	copy(svc.entries[pos+1:], svc.entries[pos:])
	svc.entries[pos] = entry

	svc.byUser[entry.UserID] = entry
	svc.version++
	ObserveLeaderboardSize(len(svc.entries))
}

// locate finds the index of an entry known to be present. Keys are unique
// per user, so the binary search lands exactly on it.
func (svc *LeaderboardService) locate(e lbEntry) int {
	return sort.Search(len(svc.entries), func(i int) bool {
		return !lbLess(svc.entries[i], e)
	})
}

// RankOf returns the 1-based rank for a user, or ok=false when the user has
// no aggregate yet.
func (svc *LeaderboardService) RankOf(userID string) (int, lbEntry, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	entry, ok := svc.byUser[userID]
	if !ok {
		return 0, lbEntry{}, false
	}
	return svc.locate(entry) + 1, entry, true
}

// Query returns one page of the ranking.
func (svc *LeaderboardService) Query(limit, offset int) ([]dto.LeaderboardEntry, int) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	total := len(svc.entries)
	if offset >= total {
		return []dto.LeaderboardEntry{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]dto.LeaderboardEntry, 0, end-offset)
	for i := offset; i < end; i++ {
		e := svc.entries[i]
		page = append(page, dto.LeaderboardEntry{
			Rank:           i + 1,
			UserID:         e.UserID,
			Points:         e.Points,
			Level:          e.Level,
			TestsCompleted: e.TestsCompleted,
			StreakCurrent:  e.StreakCurrent,
		})
	}
	return page, total
}

// GetLeaderboard serves a page, through the redis cache when available.
// Cache keys embed the index version, so a stale page can never outlive the
// write that invalidated it past its own TTL.
func (svc *LeaderboardService) GetLeaderboard(limit, offset int) (*dto.LeaderboardResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	svc.mu.RLock()
	version := svc.version
	svc.mu.RUnlock()

	cacheKey := fmt.Sprintf("leaderboard:v%d:%d:%d", version, limit, offset)
	if svc.cache != nil {
		var cached dto.LeaderboardResponse
		ctx, cancel := goContext.WithTimeout(goContext.Background(), 200*time.Millisecond)
		err := svc.cache.GetJSON(ctx, cacheKey, &cached)
		cancel()
		if err == nil && cached.Entries != nil {
			return &cached, nil
		}
	}

	page, total := svc.Query(limit, offset)
	resp := &dto.LeaderboardResponse{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Entries: page,
	}

	if svc.cache != nil {
		ctx, cancel := goContext.WithTimeout(goContext.Background(), 200*time.Millisecond)
		if err := svc.cache.Set(ctx, cacheKey, resp, svc.cacheTTL); err != nil {
			log.WithError(err).Debug("Leaderboard page cache write failed")
		}
		cancel()
	}

	return resp, nil
}

// GetRank returns a single user's rank view.
func (svc *LeaderboardService) GetRank(userID string) (*dto.RankResponse, error) {
	rank, entry, ok := svc.RankOf(userID)
	if !ok {
		return nil, shared.NewNotFoundError(nil, "User not on leaderboard")
	}

	svc.mu.RLock()
	total := len(svc.entries)
	svc.mu.RUnlock()

	return &dto.RankResponse{
		UserID: userID,
		Rank:   rank,
		Points: entry.Points,
		Total:  total,
	}, nil
}
