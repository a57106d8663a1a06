// Package rechargelogs implements the append-only record of successful
// redemptions. Rows are never mutated or deleted.
package rechargelogs

import (
	"context"

	"github.com/evgsol/vipgate/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, log *models.RechargeLog) (*models.RechargeLog, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.RechargeLog, error)
}
