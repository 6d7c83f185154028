package services

import (
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/lumen-learn/lumen_api/model"
)

// LedgerService owns the append-only reward ledger. Every points credit in
// the engine passes through RecordTx so the (source_type, source_id, user_id)
// uniqueness check happens in exactly one place.
type LedgerService struct {
	context.DefaultService

	store *SqlStore
}

const LEDGER_SVC = "ledger_svc"

func (svc LedgerService) Id() string {
	return LEDGER_SVC
}

func (svc *LedgerService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *LedgerService) Start() error {
	svc.store = databaseStore(svc.Service(SQLITE_SVC), svc.Service(POSTGRES_SVC))
	return nil
}

// RecordTx appends a credit inside the caller's transaction. Returns
// shared.ErrAlreadyAwarded when this source already paid this user.
func (svc *LedgerService) RecordTx(tx *SqlStore, userID, sourceType, sourceID string, points int) (*model.LedgerEntry, error) {
	entry := &model.LedgerEntry{
		UserID:        userID,
		SourceType:    sourceType,
		SourceID:      sourceID,
		PointsAwarded: points,
		RecordedAt:    time.Now().UTC(),
	}
	if err := tx.CreateLedgerEntry(entry); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":     userID,
		"source_type": sourceType,
		"source_id":   sourceID,
		"points":      points,
	}).Debug("Ledger entry recorded")

	return entry, nil
}

// History returns the most recent credits for a user, newest first.
func (svc *LedgerService) History(userID string, limit int) ([]model.LedgerEntry, error) {
	return svc.store.ListLedgerEntries(userID, limit)
}
