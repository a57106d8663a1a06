// Package cards implements storage for single-use recharge cards.
package cards

import (
	"context"
	"time"

	"github.com/evgsol/vipgate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, card *models.RechargeCard) (*models.RechargeCard, error)
	FindByCode(ctx context.Context, code string) (*models.RechargeCard, error)
	// MarkUsed conditionally consumes the card: the update only matches a row
	// that is still unused, so two concurrent redemptions of the same code
	// cannot both succeed. It reports whether this call consumed the card.
	MarkUsed(ctx context.Context, code string, userID int64, at time.Time) (bool, error)
}
