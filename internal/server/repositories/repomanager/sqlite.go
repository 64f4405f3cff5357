package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cmsauth/internal/dbx"
	"github.com/dmitrijs2005/cmsauth/internal/server/repositories/users"
)

// SQLiteRepositoryManager vends SQLite-backed repositories, used for local
// development and tests.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "sqlite3", "sqlite")
}
