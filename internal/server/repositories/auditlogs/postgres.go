package auditlogs

import (
	"context"
	"fmt"

	"github.com/evgsol/vipgate/internal/dbx"
	"github.com/evgsol/vipgate/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	query :=
		`INSERT INTO admin_logs (admin_id, action, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 `
	if _, err := r.db.ExecContext(ctx, query,
		entry.AdminID, entry.Action, entry.Details, entry.IPAddress, entry.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
