package dal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDAL implements Store using SQLite
type SQLiteDAL struct {
	*sqlStore
}

// NewSQLiteDAL opens (or creates) the database at dbPath. When migrateSchema
// is set, pending migrations run before the default pool is seeded.
func NewSQLiteDAL(dbPath string, migrateSchema bool) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// one writer keeps SQLite from returning SQLITE_BUSY under concurrent saves
	db.SetMaxOpenConns(1)

	if migrateSchema {
		if err := Migrate(db, DialectSQLite); err != nil {
			db.Close()
			return nil, err
		}
	}

	dal := &SQLiteDAL{sqlStore: &sqlStore{db: db, dialect: DialectSQLite}}
	if err := dal.seedIfEmpty(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed sqlite: %w", err)
	}
	return dal, nil
}
