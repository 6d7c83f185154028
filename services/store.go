package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

// SqlStore is the repository layer shared by the postgres and sqlite
// services. All engine reads and writes go through here so the domain
// services never touch gorm directly.
type SqlStore struct {
	db *gorm.DB
}

func NewSqlStore(db *gorm.DB) *SqlStore {
	return &SqlStore{db: db}
}

func (s *SqlStore) Db() *gorm.DB {
	return s.db
}

func (s *SqlStore) Migrate() error {
	return s.db.AutoMigrate(
		&model.ProcessedEvent{},
		&model.UserProgress{},
		&model.LedgerEntry{},
		&model.Quest{},
		&model.QuestProgress{},
		&model.Achievement{},
		&model.AchievementUnlock{},
	)
}

// databaseStore picks the store from whichever database service the runtime
// registered. Exactly one of the two is wired per process.
func databaseStore(sqliteSvc, postgresSvc interface{}) *SqlStore {
	if db, ok := sqliteSvc.(*SqliteService); ok && db.Store() != nil {
		return db.Store()
	}
	if db, ok := postgresSvc.(*PostgresService); ok {
		return db.Store()
	}
	return nil
}

// Transaction runs fn inside a single gorm transaction on a store bound to
// the transaction handle. Domain services compose multi-row writes with it.
func (s *SqlStore) Transaction(fn func(tx *SqlStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&SqlStore{db: tx})
	})
}

// IsUniqueViolation reports whether err is a unique constraint failure on
// either backend. The engine leans on unique indexes for idempotency, so
// this is a routine outcome rather than a fault.
func (s *SqlStore) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func (s *SqlStore) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound // 404
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict // 409
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest // 400
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError // 500
		errorType = "TRANSACTION_ERROR"
	default:
		if s.IsUniqueViolation(err) {
			statusCode = http.StatusConflict // 409
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable // 503
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError // 500
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	if errorType == "DATABASE_CONNECTION_ERROR" {
		return fmt.Errorf("%s: %w", errorType, errors.Join(shared.ErrTransient, err))
	}
	return fmt.Errorf("%s: %w", errorType, err)
}

// ==================== PROCESSED EVENTS ====================

// MarkEventProcessed inserts the dedup record for an event. Returns
// shared.ErrDuplicateEvent when the event was already applied. The insert
// uses ON CONFLICT DO NOTHING so a duplicate never aborts the enclosing
// transaction.
func (s *SqlStore) MarkEventProcessed(event *model.Event) error {
	row := &model.ProcessedEvent{
		ID:          uuid.Must(uuid.NewV7()).String(),
		EventID:     event.ID,
		UserID:      event.UserID,
		EventType:   event.Type,
		ProcessedAt: time.Now().UTC(),
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return s.HandleError(res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrDuplicateEvent
	}
	return nil
}

// ==================== USER PROGRESS ====================

func (s *SqlStore) GetUserProgress(userID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	if err := s.db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetOrCreateUserProgress returns the aggregate for userID, creating the
// zero-value row on first contact.
func (s *SqlStore) GetOrCreateUserProgress(userID string) (*model.UserProgress, error) {
	progress, err := s.GetUserProgress(userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.HandleError(err)
	}

	progress = &model.UserProgress{
		ID:     uuid.Must(uuid.NewV7()).String(),
		UserID: userID,
		Level:  1,
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(progress)
	if res.Error != nil {
		return nil, s.HandleError(res.Error)
	}
	if res.RowsAffected == 0 {
		return s.GetUserProgress(userID)
	}
	return progress, nil
}

func (s *SqlStore) SaveUserProgress(progress *model.UserProgress) error {
	if err := s.db.Save(progress).Error; err != nil {
		return s.HandleError(err)
	}
	return nil
}

func (s *SqlStore) ListUserProgress() ([]model.UserProgress, error) {
	var rows []model.UserProgress
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return rows, nil
}

// ==================== LEDGER ====================

// CreateLedgerEntry appends a credit record. Returns shared.ErrAlreadyAwarded
// when the (source_type, source_id, user_id) triple was already recorded.
// Conflict handling happens in the insert itself so the enclosing
// transaction stays usable after a duplicate.
func (s *SqlStore) CreateLedgerEntry(entry *model.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
	if res.Error != nil {
		return s.HandleError(res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrAlreadyAwarded
	}
	return nil
}

func (s *SqlStore) ListLedgerEntries(userID string, limit int) ([]model.LedgerEntry, error) {
	var rows []model.LedgerEntry
	q := s.db.Where("user_id = ?", userID).Order("recorded_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return rows, nil
}

// ==================== QUESTS ====================

func (s *SqlStore) CreateQuest(quest *model.Quest) error {
	if quest.ID == "" {
		quest.ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := s.db.Create(quest).Error; err != nil {
		return s.HandleError(err)
	}
	return nil
}

func (s *SqlStore) GetQuest(questID string) (*model.Quest, error) {
	var quest model.Quest
	if err := s.db.Where("id = ?", questID).First(&quest).Error; err != nil {
		return nil, err
	}
	return &quest, nil
}

func (s *SqlStore) ListActiveQuests() ([]model.Quest, error) {
	var quests []model.Quest
	if err := s.db.Where("is_active = ?", true).Find(&quests).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return quests, nil
}

// ListActiveQuestsByMetric returns active, unexpired quests tracking metric.
func (s *SqlStore) ListActiveQuestsByMetric(metric string, now time.Time) ([]model.Quest, error) {
	var quests []model.Quest
	err := s.db.
		Where("is_active = ? AND metric = ?", true, metric).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Find(&quests).Error
	if err != nil {
		return nil, s.HandleError(err)
	}
	return quests, nil
}

func (s *SqlStore) GetQuestProgress(userID, questID string) (*model.QuestProgress, error) {
	var qp model.QuestProgress
	err := s.db.Preload("Quest").
		Where("user_id = ? AND quest_id = ?", userID, questID).
		First(&qp).Error
	if err != nil {
		return nil, err
	}
	return &qp, nil
}

// GetOrCreateQuestProgress lazily materializes a user's tracker for a quest.
func (s *SqlStore) GetOrCreateQuestProgress(userID, questID string) (*model.QuestProgress, error) {
	qp, err := s.GetQuestProgress(userID, questID)
	if err == nil {
		return qp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.HandleError(err)
	}

	qp = &model.QuestProgress{
		ID:      uuid.Must(uuid.NewV7()).String(),
		UserID:  userID,
		QuestID: questID,
		Status:  shared.QuestStatusAvailable,
	}
	res := s.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(qp)
	if res.Error != nil {
		return nil, s.HandleError(res.Error)
	}
	return s.GetQuestProgress(userID, questID)
}

func (s *SqlStore) SaveQuestProgress(qp *model.QuestProgress) error {
	if err := s.db.Omit(clause.Associations).Save(qp).Error; err != nil {
		return s.HandleError(err)
	}
	return nil
}

func (s *SqlStore) ListQuestProgress(userID, status string) ([]model.QuestProgress, error) {
	var rows []model.QuestProgress
	q := s.db.Preload("Quest").Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return rows, nil
}

// ListExpirableQuestProgress returns trackers still open against quests whose
// deadline has passed. Used by the expiry sweep.
func (s *SqlStore) ListExpirableQuestProgress(now time.Time) ([]model.QuestProgress, error) {
	var rows []model.QuestProgress
	err := s.db.Preload("Quest").
		Joins("JOIN quests ON quests.id = quest_progresses.quest_id").
		Where("quests.expires_at IS NOT NULL AND quests.expires_at <= ?", now).
		Where("quest_progresses.status IN ?", []string{shared.QuestStatusAvailable, shared.QuestStatusInProgress}).
		Find(&rows).Error
	if err != nil {
		return nil, s.HandleError(err)
	}
	return rows, nil
}

// ==================== ACHIEVEMENTS ====================

func (s *SqlStore) CreateAchievement(achievement *model.Achievement) error {
	if achievement.ID == "" {
		achievement.ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := s.db.Create(achievement).Error; err != nil {
		return s.HandleError(err)
	}
	return nil
}

func (s *SqlStore) ListActiveAchievements() ([]model.Achievement, error) {
	var rows []model.Achievement
	if err := s.db.Where("is_active = ?", true).Find(&rows).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return rows, nil
}

// CreateAchievementUnlock records a single-fire unlock. Returns
// shared.ErrAlreadyAwarded when the pair already exists.
func (s *SqlStore) CreateAchievementUnlock(unlock *model.AchievementUnlock) error {
	if unlock.ID == "" {
		unlock.ID = uuid.Must(uuid.NewV7()).String()
	}
	if unlock.UnlockedAt.IsZero() {
		unlock.UnlockedAt = time.Now().UTC()
	}
	res := s.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(unlock)
	if res.Error != nil {
		return s.HandleError(res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrAlreadyAwarded
	}
	return nil
}

func (s *SqlStore) ListAchievementUnlocks(userID string) ([]model.AchievementUnlock, error) {
	var rows []model.AchievementUnlock
	err := s.db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, s.HandleError(err)
	}
	return rows, nil
}

func (s *SqlStore) ListUnlockedAchievementIDs(userID string) (map[string]bool, error) {
	var ids []string
	err := s.db.Model(&model.AchievementUnlock{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, s.HandleError(err)
	}
	unlocked := make(map[string]bool, len(ids))
	for _, id := range ids {
		unlocked[id] = true
	}
	return unlocked, nil
}
