package mocks

import (
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
)

// MockPostgresDAL serves the postgres driver from SQLite when no DATABASE_URL is set in development
type MockPostgresDAL struct {
	*dal.SQLiteDAL
}

// NewMockPostgresDAL opens sqliteFile with migrations applied
func NewMockPostgresDAL(sqliteFile string) (*MockPostgresDAL, error) {
	logger.Info("Using MOCK Postgres (SQLite) for local development", "file", sqliteFile)

	sqliteDAL, err := dal.NewSQLiteDAL(sqliteFile, true)
	if err != nil {
		return nil, err
	}
	return &MockPostgresDAL{SQLiteDAL: sqliteDAL}, nil
}
