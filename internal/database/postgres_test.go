package database

import (
	"io"
	"testing"

	"github.com/sdko-org/fipe-gateway/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{User: "u", Password: "p", Host: "db", Port: "5432", DBName: "fipe", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=fipe sslmode=disable", cfg.DSN())
}

func TestOpenMigratesModels(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := Open(logger, sqlite.Open("file:open_migrates?mode=memory&cache=shared"), nil)
	require.NoError(t, err)

	for _, m := range []any{&models.AccessLog{}, &models.Listing{}, &models.SearchHistory{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}
