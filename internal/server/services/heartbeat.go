package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/evgsol/vipgate/internal/common"
	"github.com/evgsol/vipgate/internal/logging"
	"github.com/evgsol/vipgate/internal/server/repositories/repomanager"
)

// HeartbeatService keeps the session registry's liveness timestamps fresh and
// evicts sessions that stop reporting.
type HeartbeatService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewHeartbeatService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *HeartbeatService {
	return &HeartbeatService{db: db, repos: m, logger: logger.With("module", "heartbeat")}
}

// Heartbeat advances the liveness timestamp of the session holding the token
// and records the client's current hardware code and software version. A
// token with no matching session yields ErrorUnauthorized so the client
// knows to log in again.
func (s *HeartbeatService) Heartbeat(ctx context.Context, sessionToken, hardware, version string) error {
	err := s.repos.Sessions(s.db).Touch(ctx, sessionToken, hardware, version, time.Now())
	if err != nil {
		if errors.Is(err, common.ErrSessionNotFound) {
			return common.ErrorUnauthorized
		}
		return common.ErrorInternal
	}
	return nil
}

// CleanupInactive evicts every session whose last heartbeat is older than
// threshold and returns the number of evictions.
func (s *HeartbeatService) CleanupInactive(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().Add(-threshold)
	removed, err := s.repos.Sessions(s.db).DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info(ctx, "evicted inactive sessions", "count", removed)
	}
	return removed, nil
}
