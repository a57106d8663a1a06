package cards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/evgsol/vipgate/internal/common"
	"github.com/evgsol/vipgate/internal/dbx"
	"github.com/evgsol/vipgate/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, card *models.RechargeCard) (*models.RechargeCard, error) {

	query :=
		`INSERT INTO recharge_cards (card_code, vip_level, duration_days, price, is_used, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		card.CardCode, card.VIPLevel, card.DurationDays, card.Price, card.IsUsed, card.CreatedAt).Scan(&card.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return card, nil
}

func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*models.RechargeCard, error) {
	query :=
		`SELECT id, card_code, vip_level, duration_days, price, is_used, used_at, used_by, created_at
		 FROM recharge_cards
		 WHERE card_code = $1
		 `

	card := &models.RechargeCard{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&card.ID, &card.CardCode, &card.VIPLevel, &card.DurationDays, &card.Price,
		&card.IsUsed, &card.UsedAt, &card.UsedBy, &card.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return card, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, code string, userID int64, at time.Time) (bool, error) {
	query :=
		`UPDATE recharge_cards
		 SET is_used = TRUE, used_at = $1, used_by = $2
		 WHERE card_code = $3 AND is_used = FALSE
		 `
	res, err := r.db.ExecContext(ctx, query, at, userID, code)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}
