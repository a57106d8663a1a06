package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/evgsol/vipgate/internal/common"
	"github.com/evgsol/vipgate/internal/server/models"
	"github.com/evgsol/vipgate/internal/server/repositories/repomanager"
)

// UserInfo is the account snapshot returned to an authenticated client. The
// VIP tier here is the derived, currently-effective one.
type UserInfo struct {
	ID            int64
	UserName      string
	Email         string
	EmailVerified bool
	VIPLevel      int
	VIPExpiresAt  *time.Time
	LastLoginAt   *time.Time
	CreatedAt     time.Time
}

// UserService serves account queries.
type UserService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repos: m}
}

// GetUserInfo returns the account snapshot for the given user id.
func (s *UserService) GetUserInfo(ctx context.Context, userID int64) (*UserInfo, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return snapshot(user, time.Now()), nil
}

func snapshot(user *models.User, now time.Time) *UserInfo {
	info := &UserInfo{
		ID:            user.ID,
		UserName:      user.UserName,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		VIPLevel:      user.EffectiveVIP(now),
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	}
	if info.VIPLevel > 0 {
		info.VIPExpiresAt = user.VIPExpiresAt
	}
	return info
}
