// Package auditlogs implements the append-only audit trail of privileged
// operations. Writes are best-effort at the service layer: an insert failure
// is logged and never fails the audited action.
package auditlogs

import (
	"context"

	"github.com/evgsol/vipgate/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, entry *models.AuditLog) error
}
