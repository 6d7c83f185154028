package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteServiceOpensAndMigrates(t *testing.T) {
	svc := &SqliteService{database: filepath.Join(t.TempDir(), "engine.db")}
	require.NoError(t, svc.Start())
	require.NotNil(t, svc.Store())

	progress, err := svc.Store().GetOrCreateUserProgress("user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Level)
}

func TestDatabaseStoreSelection(t *testing.T) {
	lite := &SqliteService{database: filepath.Join(t.TempDir(), "engine.db")}
	require.NoError(t, lite.Start())

	assert.Equal(t, lite.Store(), databaseStore(lite, nil))
	assert.Nil(t, databaseStore(nil, nil))

	// An unstarted sqlite service never shadows a live postgres store.
	pg := &PostgresService{store: lite.Store()}
	assert.Equal(t, lite.Store(), databaseStore(&SqliteService{}, pg))
}
