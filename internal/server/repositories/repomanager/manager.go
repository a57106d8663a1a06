package repomanager

import (
	"context"
	"database/sql"

	"github.com/evgsol/vipgate/internal/dbx"
	"github.com/evgsol/vipgate/internal/server/repositories/auditlogs"
	"github.com/evgsol/vipgate/internal/server/repositories/blacklist"
	"github.com/evgsol/vipgate/internal/server/repositories/cards"
	"github.com/evgsol/vipgate/internal/server/repositories/loginlogs"
	"github.com/evgsol/vipgate/internal/server/repositories/rechargelogs"
	"github.com/evgsol/vipgate/internal/server/repositories/resetcodes"
	"github.com/evgsol/vipgate/internal/server/repositories/sessions"
	"github.com/evgsol/vipgate/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, which
// lets services run any subset of repositories inside one transaction by
// passing the same *sql.Tx to each.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Cards(db dbx.DBTX) cards.Repository
	RechargeLogs(db dbx.DBTX) rechargelogs.Repository
	ResetCodes(db dbx.DBTX) resetcodes.Repository
	LoginLogs(db dbx.DBTX) loginlogs.Repository
	AuditLogs(db dbx.DBTX) auditlogs.Repository
	Blacklist(db dbx.DBTX) blacklist.Repository
}
