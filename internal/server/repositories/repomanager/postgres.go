// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/evgsol/vipgate/internal/dbx"
	"github.com/evgsol/vipgate/internal/server/migrations"
	"github.com/evgsol/vipgate/internal/server/repositories/auditlogs"
	"github.com/evgsol/vipgate/internal/server/repositories/blacklist"
	"github.com/evgsol/vipgate/internal/server/repositories/cards"
	"github.com/evgsol/vipgate/internal/server/repositories/loginlogs"
	"github.com/evgsol/vipgate/internal/server/repositories/rechargelogs"
	"github.com/evgsol/vipgate/internal/server/repositories/resetcodes"
	"github.com/evgsol/vipgate/internal/server/repositories/sessions"
	"github.com/evgsol/vipgate/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Cards(db dbx.DBTX) cards.Repository {
	return cards.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RechargeLogs(db dbx.DBTX) rechargelogs.Repository {
	return rechargelogs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ResetCodes(db dbx.DBTX) resetcodes.Repository {
	return resetcodes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) LoginLogs(db dbx.DBTX) loginlogs.Repository {
	return loginlogs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuditLogs(db dbx.DBTX) auditlogs.Repository {
	return auditlogs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Blacklist(db dbx.DBTX) blacklist.Repository {
	return blacklist.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
