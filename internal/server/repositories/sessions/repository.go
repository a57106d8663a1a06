// Package sessions implements the session registry storage: one row per live
// login, keyed by the bearer session token.
package sessions

import (
	"context"
	"time"

	"github.com/evgsol/vipgate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	FindByUser(ctx context.Context, userID int64) (*models.Session, error)
	// Touch advances the liveness timestamp for the session holding token.
	// Matching zero rows is reported as common.ErrSessionNotFound, never
	// silently ignored.
	Touch(ctx context.Context, token, hardware, version string, at time.Time) error
	// UpdateToken replaces the stored bearer token in place (refresh-token
	// exchange) without otherwise disturbing the session.
	UpdateToken(ctx context.Context, id int64, newToken string) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID int64) error
	// DeleteInactiveBefore evicts every session whose liveness timestamp is
	// older than cutoff and returns the number of rows removed.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
