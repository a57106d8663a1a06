package resetcodes

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

func scanCode(row *sql.Row) (*models.VerificationCode, error) {
	vc := &models.VerificationCode{}
	err := row.Scan(&vc.ID, &vc.UserID, &vc.Email, &vc.Code, &vc.Token, &vc.ExpiresAt, &vc.Used, &vc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return vc, nil
}

func (r *PostgresRepository) Create(ctx context.Context, vc *models.VerificationCode) error {
	query :=
		`INSERT INTO verification_codes (user_id, email, code, token, expires_at, used, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `
	if _, err := r.db.ExecContext(ctx, query,
		vc.UserID, vc.Email, vc.Code, vc.Token, vc.ExpiresAt, vc.Used, vc.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindUnusedByUser(ctx context.Context, userID int64) (*models.VerificationCode, error) {
	query :=
		`SELECT id, user_id, email, code, token, expires_at, used, created_at
		 FROM verification_codes
		 WHERE user_id = $1 AND used = FALSE
		 `
	return scanCode(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) FindByUserAndCode(ctx context.Context, userID int64, code string) (*models.VerificationCode, error) {
	query :=
		`SELECT id, user_id, email, code, token, expires_at, used, created_at
		 FROM verification_codes
		 WHERE user_id = $1 AND code = $2
		 `
	return scanCode(r.db.QueryRowContext(ctx, query, userID, code))
}

func (r *PostgresRepository) Replace(ctx context.Context, id int64, code, token string, expiresAt time.Time) error {
	query :=
		`UPDATE verification_codes
		 SET code = $1, token = $2, expires_at = $3, used = FALSE
		 WHERE id = $4
		 `
	if _, err := r.db.ExecContext(ctx, query, code, token, expiresAt, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, id int64) (bool, error) {
	query :=
		`UPDATE verification_codes
		 SET used = TRUE
		 WHERE id = $1 AND used = FALSE
		 `
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}
