package rechargelogs

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

func (r *PostgresRepository) Append(ctx context.Context, log *models.RechargeLog) (*models.RechargeLog, error) {

	query :=
		`INSERT INTO recharge_logs (user_id, card_code, vip_level, duration_days, recharge_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		log.UserID, log.CardCode, log.VIPLevel, log.DurationDays, log.RechargeTime, log.CreatedAt).Scan(&log.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return log, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.RechargeLog, error) {
	query :=
		`SELECT id, user_id, card_code, vip_level, duration_days, recharge_time, created_at
		 FROM recharge_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var logs []*models.RechargeLog
	for rows.Next() {
		l := &models.RechargeLog{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.CardCode, &l.VIPLevel, &l.DurationDays, &l.RechargeTime, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return logs, nil
}
