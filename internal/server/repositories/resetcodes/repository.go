// Package resetcodes stores password-reset verification codes so a reset can
// be invalidated server-side before the signed token expires.
package resetcodes

import (
	"context"
	"time"

	"github.com/evgsol/vipgate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, vc *models.VerificationCode) error
	FindUnusedByUser(ctx context.Context, userID int64) (*models.VerificationCode, error)
	FindByUserAndCode(ctx context.Context, userID int64, code string) (*models.VerificationCode, error)
	// Replace overwrites an existing row with a fresh code, token and expiry.
	Replace(ctx context.Context, id int64, code, token string, expiresAt time.Time) error
	// MarkUsed conditionally consumes the code: the update only matches a
	// row that is still unused, so two concurrent confirmations cannot both
	// succeed. It reports whether this call consumed the code.
	MarkUsed(ctx context.Context, id int64) (bool, error)
}
