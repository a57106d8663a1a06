package sessions

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

const sessionColumns = `id, user_id, session_token, login_time, hardware_code,
	 software_version, ip_address, last_activity_at, status_interval, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanSession(row *sql.Row) (*models.Session, error) {
	s := &models.Session{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.SessionToken, &s.LoginTime, &s.HardwareCode,
		&s.SoftwareVersion, &s.IPAddress, &s.LastActivityAt, &s.StatusInterval, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrSessionNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {

	query :=
		`INSERT INTO sessions (user_id, session_token, login_time, hardware_code,
		                       software_version, ip_address, last_activity_at, status_interval, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		session.UserID, session.SessionToken, session.LoginTime, session.HardwareCode,
		session.SoftwareVersion, session.IPAddress, session.LastActivityAt,
		session.StatusInterval, session.CreatedAt).Scan(&session.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_token = $1`
	return scanSession(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1`
	return scanSession(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) Touch(ctx context.Context, token, hardware, version string, at time.Time) error {
	query :=
		`UPDATE sessions
		 SET last_activity_at = $1, hardware_code = $2, software_version = $3
		 WHERE session_token = $4
		 `
	res, err := r.db.ExecContext(ctx, query, at, hardware, version, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrSessionNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateToken(ctx context.Context, id int64, newToken string) error {
	query :=
		`UPDATE sessions
		 SET session_token = $1
		 WHERE id = $2
		 `
	res, err := r.db.ExecContext(ctx, query, newToken, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrSessionNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE session_token = $1`
	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrSessionNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM sessions WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE last_activity_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
