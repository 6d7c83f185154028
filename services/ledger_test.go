package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-learn/lumen_api/shared"
)

func TestLedgerRejectsDuplicateSource(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ledger.RecordTx(eng.store, "user-1", shared.SourceTest, "test-1", 75)
	require.NoError(t, err)

	_, err = eng.ledger.RecordTx(eng.store, "user-1", shared.SourceTest, "test-1", 75)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrAlreadyAwarded))
}

func TestLedgerSameSourceDifferentUsers(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ledger.RecordTx(eng.store, "user-1", shared.SourceTest, "test-1", 75)
	require.NoError(t, err)

	// The same test paying a different user is a distinct credit.
	_, err = eng.ledger.RecordTx(eng.store, "user-2", shared.SourceTest, "test-1", 75)
	require.NoError(t, err)
}

func TestLedgerSameIDDifferentSourceTypes(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ledger.RecordTx(eng.store, "user-1", shared.SourceQuest, "abc", 50)
	require.NoError(t, err)

	_, err = eng.ledger.RecordTx(eng.store, "user-1", shared.SourceAchievement, "abc", 50)
	require.NoError(t, err)
}

func TestLedgerHistory(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ledger.RecordTx(eng.store, "user-1", shared.SourceTest, "test-1", 75)
	require.NoError(t, err)
	_, err = eng.ledger.RecordTx(eng.store, "user-1", shared.SourceTest, "test-2", 50)
	require.NoError(t, err)
	_, err = eng.ledger.RecordTx(eng.store, "user-2", shared.SourceTest, "test-1", 100)
	require.NoError(t, err)

	entries, err := eng.ledger.History("user-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "user-1", e.UserID)
	}
}
