// Package loginlogs implements the append-only login history.
package loginlogs

import (
	"context"

	"github.com/evgsol/vipgate/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, log *models.LoginLog) error
}
