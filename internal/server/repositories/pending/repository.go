package pending

import (
	"context"
	"time"

	"github.com/emotify/accounts/internal/server/models"
)

// Repository is the pending-registration store contract. Save supersedes any
// prior record for the same email. Consume removes the record only when the
// submitted code matches; Refresh replaces the code and restarts the expiry
// window on an existing record without ever creating one.
type Repository interface {
	Save(ctx context.Context, rec *models.PendingRegistration, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) (*models.PendingRegistration, error)
	Refresh(ctx context.Context, email, code string, ttl time.Duration) (*models.PendingRegistration, error)
}
