package dal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
)

// PostgresDAL implements Store using PostgreSQL
type PostgresDAL struct {
	*sqlStore
}

// NewPostgresDAL connects to Postgres, retrying while cluster DNS settles
func NewPostgresDAL(connString string, migrateSchema bool) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute) // recycle across failovers
	db.SetConnMaxIdleTime(1 * time.Minute)

	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()

		if lastErr == nil {
			break
		}
		logger.Warn("Postgres not reachable yet", "attempt", i+1, "error", lastErr)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	if lastErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	if migrateSchema {
		if err := Migrate(db, DialectPostgres); err != nil {
			db.Close()
			return nil, err
		}
	}

	dal := &PostgresDAL{sqlStore: &sqlStore{db: db, dialect: DialectPostgres}}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := dal.seedIfEmpty(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed postgres: %w", err)
	}
	return dal, nil
}
