package loginlogs

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

func (r *PostgresRepository) Append(ctx context.Context, log *models.LoginLog) error {
	query :=
		`INSERT INTO login_logs (user_id, login_time, hardware_code, software_version, ip_address, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `
	if _, err := r.db.ExecContext(ctx, query,
		log.UserID, log.LoginTime, log.HardwareCode, log.SoftwareVersion,
		log.IPAddress, log.Status, log.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
