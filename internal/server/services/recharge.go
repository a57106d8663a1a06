package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/evgsol/vipgate/internal/common"
	"github.com/evgsol/vipgate/internal/dbx"
	"github.com/evgsol/vipgate/internal/logging"
	"github.com/evgsol/vipgate/internal/server/models"
	"github.com/evgsol/vipgate/internal/server/repositories/repomanager"
)

// RechargeService redeems single-use cards against user entitlements.
//
// Redemption runs in one transaction and claims the card with a conditional
// update that only matches a still-unused row. Under concurrent redemption of
// the same code exactly one caller observes the claim and applies the grant;
// every other caller gets a CardUsedError.
type RechargeService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewRechargeService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *RechargeService {
	return &RechargeService{db: db, repos: m, logger: logger.With("module", "recharge")}
}

// Redeem consumes the card and extends the user's entitlement. The new
// expiry stacks on the remaining time when the current entitlement is still
// active, otherwise it counts from now. The card's tier always overwrites
// the stored one, including downgrades.
func (s *RechargeService) Redeem(ctx context.Context, userID int64, cardCode string) (*models.User, *models.RechargeCard, error) {

	var user *models.User
	var card *models.RechargeCard

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cardsRepo := s.repos.Cards(tx)
		now := time.Now()

		consumed, err := cardsRepo.MarkUsed(ctx, cardCode, userID, now)
		if err != nil {
			return err
		}
		if !consumed {
			prior, err := cardsRepo.FindByCode(ctx, cardCode)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("%w: card does not exist", common.ErrorNotFound)
				}
				return err
			}
			usedAt := now
			if prior.UsedAt != nil {
				usedAt = *prior.UsedAt
			}
			return &common.CardUsedError{UsedAt: usedAt}
		}

		card, err = cardsRepo.FindByCode(ctx, cardCode)
		if err != nil {
			return err
		}

		current, err := s.repos.Users(tx).GetByID(ctx, userID)
		if err != nil {
			return err
		}

		base := now
		if current.VIPExpiresAt != nil && current.VIPExpiresAt.After(now) {
			base = *current.VIPExpiresAt
		}
		newExpiry := base.AddDate(0, 0, card.DurationDays)

		user, err = s.repos.Users(tx).UpdateVIP(ctx, userID, card.VIPLevel, newExpiry, now)
		if err != nil {
			return err
		}

		_, err = s.repos.RechargeLogs(tx).Append(ctx, &models.RechargeLog{
			UserID:       userID,
			CardCode:     card.CardCode,
			VIPLevel:     card.VIPLevel,
			DurationDays: card.DurationDays,
			RechargeTime: now,
			CreatedAt:    now,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "card redeemed",
		"user_id", userID, "card_code", card.CardCode,
		"vip_level", card.VIPLevel, "duration_days", card.DurationDays)

	return user, card, nil
}

// ListLogs returns the user's redemption history, newest first.
func (s *RechargeService) ListLogs(ctx context.Context, userID int64) ([]*models.RechargeLog, error) {
	return s.repos.RechargeLogs(s.db).ListByUser(ctx, userID)
}
