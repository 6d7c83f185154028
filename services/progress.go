package services

import (
	"errors"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/lumen-learn/lumen_api/dto"
	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

// ProgressService is the aggregation core. It owns the per-user locks, so
// every state mutation for a user, whether from an event or a quest claim,
// is serialized here while different users proceed in parallel.
type ProgressService struct {
	context.DefaultService

	store        *SqlStore
	ledger       *LedgerService
	quests       *QuestService
	achievements *AchievementService
	leaderboard  *LeaderboardService
	notifier     *NotificationService

	rewards RewardConfig

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

const PROGRESS_SVC = "progress_svc"

func (svc *ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *context.Context) error {
	svc.rewards = NewRewardConfig()
	svc.userLocks = make(map[string]*sync.Mutex)
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	svc.store = databaseStore(svc.Service(SQLITE_SVC), svc.Service(POSTGRES_SVC))
	svc.ledger = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.quests = svc.Service(QUEST_SVC).(*QuestService)
	svc.achievements = svc.Service(ACHIEVEMENT_SVC).(*AchievementService)
	svc.leaderboard = svc.Service(LEADERBOARD_SVC).(*LeaderboardService)
	svc.notifier = svc.Service(NOTIFICATION_SVC).(*NotificationService)
	return nil
}

func (svc *ProgressService) userLock(userID string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	lock, ok := svc.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		svc.userLocks[userID] = lock
	}
	return lock
}

// Apply folds one event into the user's state. The dedup insert, aggregate
// update, reward credits, quest advances and achievement unlocks commit in a
// single transaction; a retried duplicate is a silent no-op.
func (svc *ProgressService) Apply(event *model.Event) (*model.UserProgress, error) {
	lock := svc.userLock(event.UserID)
	lock.Lock()
	defer lock.Unlock()

	var progress *model.UserProgress
	var intents []*model.NotificationIntent
	var completed []*model.QuestProgress
	var unlocked []*model.AchievementUnlock

	err := svc.store.Transaction(func(tx *SqlStore) error {
		if err := tx.MarkEventProcessed(event); err != nil {
			return err
		}

		var err error
		progress, err = tx.GetOrCreateUserProgress(event.UserID)
		if err != nil {
			return err
		}

		pointsBefore := progress.Points
		levelBefore := progress.Level

		svc.touchStreak(progress, event.OccurredAt)

		deltas := map[string]int{}

		switch event.Type {
		case shared.EventTestCompleted:
			progress.TestsCompleted++
			progress.AvgScore += (float64(event.Score) - progress.AvgScore) / float64(progress.TestsCompleted)
			deltas[shared.MetricTestsCompleted] = 1

			points := RewardForScore(event.Score, event.Difficulty)
			if _, err := svc.creditTx(tx, progress, shared.SourceTest, event.TestID, points); err != nil {
				if !errors.Is(err, shared.ErrAlreadyAwarded) {
					return err
				}
				// Test retake: counted, never paid twice.
			}

		case shared.EventMaterialViewed:
			progress.MaterialsViewed++
			deltas[shared.MetricMaterialsViewed] = 1

			if svc.rewards.MaterialViewPoints > 0 {
				if _, err := svc.creditTx(tx, progress, shared.SourceMaterial, event.MaterialID, svc.rewards.MaterialViewPoints); err != nil {
					if !errors.Is(err, shared.ErrAlreadyAwarded) {
						return err
					}
				}
			}

		case shared.EventDailyLogin:
			progress.LoginsTotal++
			deltas[shared.MetricDailyLogins] = 1

			if svc.rewards.DailyLoginPoints > 0 {
				day := event.OccurredAt.UTC().Format("2006-01-02")
				if _, err := svc.creditTx(tx, progress, shared.SourceLogin, day, svc.rewards.DailyLoginPoints); err != nil {
					if !errors.Is(err, shared.ErrAlreadyAwarded) {
						return err
					}
				}
			}
		}

		unlocked, err = svc.achievements.EvaluateTx(tx, progress)
		if err != nil {
			return err
		}

		if delta := progress.Points - pointsBefore; delta > 0 {
			deltas[shared.MetricPoints] = delta
		}
		deltas[shared.MetricStreakCurrent] = progress.StreakCurrent

		completed, err = svc.quests.OnEventTx(tx, event.UserID, deltas)
		if err != nil {
			return err
		}

		if err := tx.SaveUserProgress(progress); err != nil {
			return err
		}

		if progress.Level > levelBefore {
			intents = append(intents, &model.NotificationIntent{
				Type:   shared.NotificationLevelUp,
				UserID: progress.UserID,
				Payload: map[string]interface{}{
					"level":  progress.Level,
					"points": progress.Points,
				},
				OccurredAt: time.Now().UTC(),
			})
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, shared.ErrDuplicateEvent) {
			ObserveEventDuplicate(event.Type)
			log.WithFields(log.Fields{
				"event_id": event.ID,
				"user_id":  event.UserID,
			}).Debug("Duplicate event skipped")

			prior, gerr := svc.store.GetOrCreateUserProgress(event.UserID)
			if gerr != nil {
				return nil, gerr
			}
			return prior, nil
		}
		return nil, err
	}

	ObserveEventProcessed(event.Type)

	intents = append(intents, outcomeIntents(completed, unlocked)...)

	svc.afterCommit(progress, intents)
	return progress, nil
}

// outcomeIntents builds the notification intents for quest completions and
// achievement unlocks produced by one committed state change.
func outcomeIntents(completed []*model.QuestProgress, unlocked []*model.AchievementUnlock) []*model.NotificationIntent {
	var intents []*model.NotificationIntent
	for _, qp := range completed {
		intents = append(intents, &model.NotificationIntent{
			Type:   shared.NotificationQuestCompleted,
			UserID: qp.UserID,
			Payload: map[string]interface{}{
				"quest_id": qp.QuestID,
				"title":    qp.Quest.Title,
			},
			OccurredAt: time.Now().UTC(),
		})
	}
	for _, u := range unlocked {
		intents = append(intents, &model.NotificationIntent{
			Type:   shared.NotificationAchievementUnlocked,
			UserID: u.UserID,
			Payload: map[string]interface{}{
				"achievement_id": u.AchievementID,
				"name":           u.Achievement.Name,
			},
			OccurredAt: time.Now().UTC(),
		})
	}
	return intents
}

// Credit pays points from a non-event source (quest claim) under the user
// lock. The credit is an aggregate change like any other: achievement
// thresholds re-evaluate and points-metric quests advance in the same
// transaction, together with the caller's extra writes.
func (svc *ProgressService) Credit(userID, sourceType, sourceID string, points int, within func(tx *SqlStore) error) (*model.UserProgress, error) {
	lock := svc.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var progress *model.UserProgress
	var intents []*model.NotificationIntent
	var completed []*model.QuestProgress
	var unlocked []*model.AchievementUnlock

	err := svc.store.Transaction(func(tx *SqlStore) error {
		var err error
		progress, err = tx.GetOrCreateUserProgress(userID)
		if err != nil {
			return err
		}

		pointsBefore := progress.Points
		levelBefore := progress.Level

		if _, err = svc.creditTx(tx, progress, sourceType, sourceID, points); err != nil {
			return err
		}

		unlocked, err = svc.achievements.EvaluateTx(tx, progress)
		if err != nil {
			return err
		}

		deltas := map[string]int{}
		if delta := progress.Points - pointsBefore; delta > 0 {
			deltas[shared.MetricPoints] = delta
		}
		completed, err = svc.quests.OnEventTx(tx, userID, deltas)
		if err != nil {
			return err
		}

		if within != nil {
			if err := within(tx); err != nil {
				return err
			}
		}

		if err := tx.SaveUserProgress(progress); err != nil {
			return err
		}

		if progress.Level > levelBefore {
			intents = append(intents, &model.NotificationIntent{
				Type:   shared.NotificationLevelUp,
				UserID: progress.UserID,
				Payload: map[string]interface{}{
					"level":  progress.Level,
					"points": progress.Points,
				},
				OccurredAt: time.Now().UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	intents = append(intents, outcomeIntents(completed, unlocked)...)

	svc.afterCommit(progress, intents)
	return progress, nil
}

// creditTx mutates the loaded aggregate and appends the ledger row. The
// caller holds the user lock and saves the aggregate once at the end.
func (svc *ProgressService) creditTx(tx *SqlStore, progress *model.UserProgress, sourceType, sourceID string, points int) (bool, error) {
	if _, err := svc.ledger.RecordTx(tx, progress.UserID, sourceType, sourceID, points); err != nil {
		return false, err
	}

	progress.Points += points
	progress.XP += points

	newLevel := LevelForPoints(progress.Points)
	leveledUp := newLevel > progress.Level
	if leveledUp {
		progress.Level = newLevel
	}

	ObserveRewardCredited(sourceType, points)
	return leveledUp, nil
}

// touchStreak applies the daily-streak rule. Same day keeps the streak,
// the next day extends it, any longer gap resets it to one.
func (svc *ProgressService) touchStreak(progress *model.UserProgress, occurredAt time.Time) {
	day := occurredAt.UTC().Truncate(24 * time.Hour)

	if progress.LastActivityDate == nil {
		progress.StreakCurrent = 1
		progress.LastActivityDate = &day
	} else {
		last := progress.LastActivityDate.UTC().Truncate(24 * time.Hour)
		daysDiff := int(day.Sub(last).Hours() / 24)

		switch {
		case daysDiff <= 0:
			// Same day or late-arriving event, streak unchanged.
		case daysDiff == 1:
			progress.StreakCurrent++
			progress.LastActivityDate = &day
		default:
			progress.StreakCurrent = 1
			progress.LastActivityDate = &day
		}
	}

	if progress.StreakCurrent > progress.StreakMax {
		progress.StreakMax = progress.StreakCurrent
	}
}

func (svc *ProgressService) afterCommit(progress *model.UserProgress, intents []*model.NotificationIntent) {
	if svc.leaderboard != nil {
		svc.leaderboard.Upsert(progress)
	}
	if svc.notifier != nil {
		for _, intent := range intents {
			svc.notifier.Send(intent)
		}
	}
}

// GetUserProgress returns the aggregate view for the API.
func (svc *ProgressService) GetUserProgress(userID string) (*dto.UserProgressResponse, error) {
	progress, err := svc.store.GetUserProgress(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User progress not found")
	}
	return dto.NewUserProgressResponse(progress), nil
}
