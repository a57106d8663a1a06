package users

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

const userColumns = `id, username, password_hash, email, email_verified, vip_level, vip_expires_at,
	 status, last_login_at, last_login_hardware, last_login_version, last_login_ip,
	 last_logout_at, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.UserName, &user.PasswordHash, &user.Email, &user.EmailVerified,
		&user.VIPLevel, &user.VIPExpiresAt, &user.Status,
		&user.LastLoginAt, &user.LastLoginHardware, &user.LastLoginVersion, &user.LastLoginIP,
		&user.LastLogoutAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, password_hash, email, email_verified, vip_level, status,
		                    last_login_hardware, last_login_version, last_login_ip,
		                    last_login_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.PasswordHash, user.Email, user.EmailVerified, user.VIPLevel, user.Status,
		user.LastLoginHardware, user.LastLoginVersion, user.LastLoginIP,
		user.LastLoginAt, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id int64, hardware, version, ip string, at time.Time) error {
	query :=
		`UPDATE users
		 SET last_login_at = $1, last_login_hardware = $2, last_login_version = $3,
		     last_login_ip = $4, updated_at = $5
		 WHERE id = $6
		 `
	if _, err := r.db.ExecContext(ctx, query, at, hardware, version, ip, at, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateLastLogout(ctx context.Context, id int64, at time.Time) error {
	query :=
		`UPDATE users
		 SET last_logout_at = $1, updated_at = $2
		 WHERE id = $3
		 `
	if _, err := r.db.ExecContext(ctx, query, at, at, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateVIP(ctx context.Context, id int64, level int, expiresAt time.Time, at time.Time) (*models.User, error) {
	query :=
		`UPDATE users
		 SET vip_level = $1, vip_expires_at = $2, updated_at = $3
		 WHERE id = $4
		 RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, level, expiresAt, at, id))
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string, at time.Time) error {
	query :=
		`UPDATE users
		 SET password_hash = $1, updated_at = $2
		 WHERE id = $3
		 `
	if _, err := r.db.ExecContext(ctx, query, hash, at, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetEmailVerified(ctx context.Context, id int64, at time.Time) error {
	query :=
		`UPDATE users
		 SET email_verified = TRUE, updated_at = $1
		 WHERE id = $2
		 `
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
