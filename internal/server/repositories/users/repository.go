package users

import (
	"context"
	"time"

	"github.com/evgsol/vipgate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUserName(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, hardware, version, ip string, at time.Time) error
	UpdateLastLogout(ctx context.Context, id int64, at time.Time) error
	UpdateVIP(ctx context.Context, id int64, level int, expiresAt time.Time, at time.Time) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string, at time.Time) error
	SetEmailVerified(ctx context.Context, id int64, at time.Time) error
}
