package catalog

import (
	"testing"

	"github.com/kilupskalvis/catalogd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_BackendSelection(t *testing.T) {
	cfg := config.Default(t.TempDir())

	cfg.Backend = config.BackendDocument
	repo, err := Open(cfg, testLogger())
	require.NoError(t, err)
	defer repo.Close()
	assert.IsType(t, &DocumentRepository{}, repo)

	cfg.Backend = config.BackendSQLite
	repo, err = Open(cfg, testLogger())
	require.NoError(t, err)
	defer repo.Close()
	assert.IsType(t, &SQLiteRepository{}, repo)

	cfg.Backend = "mongodb"
	_, err = Open(cfg, testLogger())
	assert.Error(t, err)
}
