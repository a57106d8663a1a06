package blacklist

import (
	"context"
	"fmt"

	"github.com/evgsol/vipgate/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) IsBlocked(ctx context.Context, username, hardware, ip string) (bool, error) {
	// Unused match columns are stored as ''; guard them so a row blocking
	// only a username does not match every request with no hardware code.
	query :=
		`SELECT COUNT(*)
		 FROM blacklist
		 WHERE (username = $1 AND username <> '')
		    OR (hardware_code = $2 AND hardware_code <> '')
		    OR (ip_address = $3 AND ip_address <> '')
		 `
	var n int
	if err := r.db.QueryRowContext(ctx, query, username, hardware, ip).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
