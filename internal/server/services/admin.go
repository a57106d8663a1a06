package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evgsol/vipgate/internal/common"
	"github.com/evgsol/vipgate/internal/logging"
	"github.com/evgsol/vipgate/internal/server/models"
	"github.com/evgsol/vipgate/internal/server/repositories/repomanager"
)

// maxCodeRetries bounds retries on a card-code collision. With 36^16 possible
// codes a single retry is already overwhelmingly unlikely.
const maxCodeRetries = 5

// AdminService implements privileged operations, currently card batch
// generation. Every operation leaves a best-effort audit record.
type AdminService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AdminService {
	return &AdminService{db: db, repos: m, logger: logger.With("module", "admin")}
}

// GenerateCards mints count fresh unused cards with the given tier, duration
// and price, and returns them. Codes are random; a collision with an existing
// code is retried with a new draw.
func (s *AdminService) GenerateCards(ctx context.Context, adminID int64, count, vipLevel, durationDays int, price float64) ([]*models.RechargeCard, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", common.ErrorBadRequest)
	}
	if vipLevel <= 0 || durationDays <= 0 {
		return nil, fmt.Errorf("%w: vip level and duration must be positive", common.ErrorBadRequest)
	}

	cardsRepo := s.repos.Cards(s.db)
	batch := uuid.NewString()
	now := time.Now()

	generated := make([]*models.RechargeCard, 0, count)
	for i := 0; i < count; i++ {
		var card *models.RechargeCard
		var err error
		for attempt := 0; attempt < maxCodeRetries; attempt++ {
			code, cerr := common.MakeCardCode()
			if cerr != nil {
				return nil, common.ErrorInternal
			}
			card, err = cardsRepo.Create(ctx, &models.RechargeCard{
				CardCode:     code,
				VIPLevel:     vipLevel,
				DurationDays: durationDays,
				Price:        price,
				CreatedAt:    now,
			})
			if err == nil {
				break
			}
		}
		if err != nil {
			return nil, fmt.Errorf("error creating card: %w", err)
		}
		generated = append(generated, card)
	}

	if err := s.repos.AuditLogs(s.db).Append(ctx, &models.AuditLog{
		AdminID:   adminID,
		Action:    "generate_cards",
		Details:   fmt.Sprintf("batch=%s count=%d vip_level=%d duration_days=%d", batch, count, vipLevel, durationDays),
		CreatedAt: now,
	}); err != nil {
		s.logger.Warn(ctx, "audit log write failed", "action", "generate_cards", "error", err.Error())
	}

	return generated, nil
}
