package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	svc, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file:dbtest?mode=memory&cache=shared"}, logger.NewNop())
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, "sqlite", svc.Driver())
	require.NoError(t, AutoMigrateAll(svc.DB()))
	assert.True(t, svc.DB().Migrator().HasTable(&site.Draft{}))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql", DSN: "x"}, logger.NewNop())
	require.Error(t, err)
}
