package services

import (
	"errors"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/lumen-learn/lumen_api/dto"
	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

// AchievementService evaluates threshold unlocks against the user aggregate.
// An achievement fires once per user; the unique unlock row enforces that
// even across replays.
type AchievementService struct {
	context.DefaultService

	store    *SqlStore
	progress *ProgressService
}

const ACHIEVEMENT_SVC = "achievement_svc"

func (svc AchievementService) Id() string {
	return ACHIEVEMENT_SVC
}

func (svc *AchievementService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AchievementService) Start() error {
	svc.store = databaseStore(svc.Service(SQLITE_SVC), svc.Service(POSTGRES_SVC))
	svc.progress = svc.Service(PROGRESS_SVC).(*ProgressService)
	return nil
}

// EvaluateTx checks every active achievement against the loaded aggregate
// and unlocks those whose threshold is met. Runs inside the event
// transaction while the caller holds the user lock. Unlock rewards credit
// points immediately, which can push the aggregate over further points-based
// thresholds, so evaluation loops until it settles.
func (svc *AchievementService) EvaluateTx(tx *SqlStore, progress *model.UserProgress) ([]*model.AchievementUnlock, error) {
	achievements, err := tx.ListActiveAchievements()
	if err != nil {
		return nil, err
	}
	unlockedIDs, err := tx.ListUnlockedAchievementIDs(progress.UserID)
	if err != nil {
		return nil, err
	}

	var unlocked []*model.AchievementUnlock

	for pass := 0; pass < 5; pass++ {
		fired := false

		for i := range achievements {
			achievement := &achievements[i]
			if unlockedIDs[achievement.ID] {
				continue
			}
			if progress.MetricValue(achievement.Metric) < achievement.Threshold {
				continue
			}

			unlock := &model.AchievementUnlock{
				UserID:        progress.UserID,
				AchievementID: achievement.ID,
				UnlockedAt:    time.Now().UTC(),
				Achievement:   *achievement,
			}
			if err := tx.CreateAchievementUnlock(unlock); err != nil {
				if errors.Is(err, shared.ErrAlreadyAwarded) {
					unlockedIDs[achievement.ID] = true
					continue
				}
				return nil, err
			}
			unlockedIDs[achievement.ID] = true

			if achievement.RewardPoints > 0 {
				if _, err := svc.progress.creditTx(tx, progress, shared.SourceAchievement, achievement.ID, achievement.RewardPoints); err != nil {
					if !errors.Is(err, shared.ErrAlreadyAwarded) {
						return nil, err
					}
				}
			}

			ObserveAchievementUnlocked(achievement.Metric)
			log.WithFields(log.Fields{
				"user_id":        progress.UserID,
				"achievement_id": achievement.ID,
			}).Info("Achievement unlocked")

			unlocked = append(unlocked, unlock)
			fired = true
		}

		if !fired {
			break
		}
	}

	return unlocked, nil
}

// GetUserAchievements returns the user's unlocks in unlock order.
func (svc *AchievementService) GetUserAchievements(userID string) ([]*dto.AchievementResponse, error) {
	unlocks, err := svc.store.ListAchievementUnlocks(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.AchievementResponse, 0, len(unlocks))
	for i := range unlocks {
		responses = append(responses, dto.NewAchievementResponse(&unlocks[i]))
	}
	return responses, nil
}

// CreateAchievement registers an authored achievement.
func (svc *AchievementService) CreateAchievement(req *dto.CreateAchievementRequest) (*model.Achievement, error) {
	achievement := req.ToAchievement()
	if err := svc.store.CreateAchievement(achievement); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"achievement_id": achievement.ID,
		"metric":         achievement.Metric,
		"threshold":      achievement.Threshold,
	}).Info("Achievement created")

	return achievement, nil
}
