package users

import (
	"context"

	"github.com/emotify/accounts/internal/server/models"
)

// Repository is the credential store contract. Create must enforce email and
// username uniqueness; concurrent duplicate inserts yield
// common.ErrorAlreadyExists for the loser.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
