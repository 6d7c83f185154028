package services

import (
	"errors"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lumen-learn/lumen_api/dto"
	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

// QuestService tracks per-user quest advancement and pays rewards on claim.
// Trackers are created lazily on the first relevant event, so an authored
// quest costs nothing until a user actually progresses it.
type QuestService struct {
	context.DefaultService

	store    *SqlStore
	progress *ProgressService

	sweepEvery time.Duration
	stopSweep  chan struct{}
}

const QUEST_SVC = "quest_svc"

func (svc QuestService) Id() string {
	return QUEST_SVC
}

func (svc *QuestService) Configure(ctx *context.Context) error {
	svc.sweepEvery = time.Hour
	svc.stopSweep = make(chan struct{})
	return svc.DefaultService.Configure(ctx)
}

func (svc *QuestService) Start() error {
	svc.store = databaseStore(svc.Service(SQLITE_SVC), svc.Service(POSTGRES_SVC))
	svc.progress = svc.Service(PROGRESS_SVC).(*ProgressService)

	if err := svc.SweepExpired(time.Now().UTC()); err != nil {
		log.WithError(err).Error("Startup quest expiry sweep failed")
	}

	ticker := time.NewTicker(svc.sweepEvery)
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := svc.SweepExpired(time.Now().UTC()); err != nil {
					log.WithError(err).Error("Failed to sweep expired quests")
				}
			case <-svc.stopSweep:
				ticker.Stop()
				return
			}
		}
	}()

	return nil
}

func (svc *QuestService) Shutdown() {
	close(svc.stopSweep)
}

// OnEventTx advances the user's trackers for every metric the event moved.
// Runs inside the event transaction while the caller holds the user lock.
// Returns trackers that reached their target this event.
func (svc *QuestService) OnEventTx(tx *SqlStore, userID string, deltas map[string]int) ([]*model.QuestProgress, error) {
	now := time.Now().UTC()
	var completed []*model.QuestProgress

	for metric, value := range deltas {
		quests, err := tx.ListActiveQuestsByMetric(metric, now)
		if err != nil {
			return nil, err
		}

		for i := range quests {
			quest := &quests[i]

			qp, err := tx.GetOrCreateQuestProgress(userID, quest.ID)
			if err != nil {
				return nil, err
			}

			switch qp.Status {
			case shared.QuestStatusAvailable, shared.QuestStatusInProgress:
			default:
				continue
			}

			if metric == shared.MetricStreakCurrent {
				// Streak quests track the high-water mark, never regress.
				if value > qp.ProgressCount {
					qp.ProgressCount = value
				}
			} else {
				qp.ProgressCount += value
			}

			if qp.ProgressCount >= quest.Target {
				qp.ProgressCount = quest.Target
				qp.Status = shared.QuestStatusCompleted
				qp.CompletedAt = &now
				completed = append(completed, qp)
			} else if qp.ProgressCount > 0 {
				qp.Status = shared.QuestStatusInProgress
			}

			if err := tx.SaveQuestProgress(qp); err != nil {
				return nil, err
			}
		}
	}

	for _, qp := range completed {
		ObserveQuestCompleted(qp.Quest.Kind)
		log.WithFields(log.Fields{
			"user_id":  qp.UserID,
			"quest_id": qp.QuestID,
		}).Info("Quest completed")
	}

	return completed, nil
}

// Claim pays the quest reward exactly once. The status re-check, status
// transition and ledger credit share one transaction under the user lock, so
// two racing claims settle to a single payout.
func (svc *QuestService) Claim(userID, questID string) (*dto.ClaimRewardResponse, error) {
	qp, err := svc.store.GetQuestProgress(userID, questID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The board shows untracked quests as available, so claiming
			// one is premature rather than unknown.
			if _, qerr := svc.store.GetQuest(questID); qerr == nil {
				return nil, shared.NewConflictError(shared.ErrQuestNotCompleted, "Quest is not completed")
			}
			return nil, shared.NewNotFoundError(err, "Quest progress not found")
		}
		return nil, svc.store.HandleError(err)
	}

	switch qp.Status {
	case shared.QuestStatusClaimed:
		return nil, shared.NewConflictError(shared.ErrQuestAlreadyClaimed, "Quest reward already claimed")
	case shared.QuestStatusCompleted:
	default:
		return nil, shared.NewConflictError(shared.ErrQuestNotCompleted, "Quest is not completed")
	}

	now := time.Now().UTC()
	reward := qp.Quest.RewardPoints

	_, err = svc.progress.Credit(userID, shared.SourceQuest, questID, reward, func(tx *SqlStore) error {
		current, err := tx.GetQuestProgress(userID, questID)
		if err != nil {
			return err
		}
		switch current.Status {
		case shared.QuestStatusCompleted:
		case shared.QuestStatusClaimed:
			return shared.ErrQuestAlreadyClaimed
		default:
			return shared.ErrQuestNotCompleted
		}

		current.Status = shared.QuestStatusClaimed
		current.ClaimedAt = &now
		return tx.SaveQuestProgress(current)
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrAlreadyAwarded), errors.Is(err, shared.ErrQuestAlreadyClaimed):
			return nil, shared.NewConflictError(shared.ErrQuestAlreadyClaimed, "Quest reward already claimed")
		case errors.Is(err, shared.ErrQuestNotCompleted):
			return nil, shared.NewConflictError(shared.ErrQuestNotCompleted, "Quest is not completed")
		default:
			return nil, err
		}
	}

	ObserveQuestClaimed(qp.Quest.Kind)
	log.WithFields(log.Fields{
		"user_id":  userID,
		"quest_id": questID,
		"points":   reward,
	}).Info("Quest reward claimed")

	return &dto.ClaimRewardResponse{
		QuestID:       questID,
		PointsAwarded: reward,
		ClaimedAt:     now,
	}, nil
}

// SweepExpired closes trackers whose quest deadline has passed. Completed
// and claimed trackers are left alone.
func (svc *QuestService) SweepExpired(now time.Time) error {
	rows, err := svc.store.ListExpirableQuestProgress(now)
	if err != nil {
		return err
	}

	for i := range rows {
		qp := &rows[i]
		qp.Status = shared.QuestStatusExpired
		if err := svc.store.SaveQuestProgress(qp); err != nil {
			return err
		}
		ObserveQuestExpired(qp.Quest.Kind)
	}

	if len(rows) > 0 {
		log.WithField("count", len(rows)).Info("Expired quest trackers closed")
	}
	return nil
}

// GetQuests returns the user's quest board: tracked quests at their current
// state plus untracked active quests shown as available.
func (svc *QuestService) GetQuests(userID, status string) ([]*dto.QuestProgressResponse, error) {
	tracked, err := svc.store.ListQuestProgress(userID, "")
	if err != nil {
		return nil, err
	}

	trackedIDs := make(map[string]bool, len(tracked))
	var responses []*dto.QuestProgressResponse
	for i := range tracked {
		trackedIDs[tracked[i].QuestID] = true
		if status == "" || tracked[i].Status == status {
			responses = append(responses, dto.NewQuestProgressResponse(&tracked[i]))
		}
	}

	if status == "" || status == shared.QuestStatusAvailable {
		quests, err := svc.store.ListActiveQuests()
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		for i := range quests {
			quest := &quests[i]
			if trackedIDs[quest.ID] {
				continue
			}
			if quest.ExpiresAt != nil && !quest.ExpiresAt.After(now) {
				continue
			}
			responses = append(responses, dto.NewQuestProgressResponse(&model.QuestProgress{
				QuestID: quest.ID,
				Status:  shared.QuestStatusAvailable,
				Quest:   *quest,
			}))
		}
	}

	return responses, nil
}

// CreateQuest registers an authored quest.
func (svc *QuestService) CreateQuest(req *dto.CreateQuestRequest) (*model.Quest, error) {
	quest := req.ToQuest()
	if err := svc.store.CreateQuest(quest); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"quest_id": quest.ID,
		"metric":   quest.Metric,
		"target":   quest.Target,
	}).Info("Quest created")

	return quest, nil
}

// ListQuests returns all active authored quests.
func (svc *QuestService) ListQuests() ([]model.Quest, error) {
	return svc.store.ListActiveQuests()
}
