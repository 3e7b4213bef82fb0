package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/emotify/accounts/internal/common"
	"github.com/emotify/accounts/internal/server/auth"
	"github.com/emotify/accounts/internal/server/config"
	"github.com/emotify/accounts/internal/server/models"
	"github.com/emotify/accounts/internal/server/repositories/users"
)

// dummyHash is compared against when the email is unknown so that both
// failure paths cost a bcrypt verification. bcrypt hash of "password".
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// UserService verifies credentials and mints session tokens.
type UserService struct {
	users         users.Repository
	secretKey     []byte
	tokenValidity time.Duration
}

// NewUserService constructs a UserService using the credential store and
// server config.
func NewUserService(u users.Repository, cfg *config.Config) *UserService {
	return &UserService{
		users:         u,
		secretKey:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// Login verifies the email/password pair and returns the account plus a
// signed session token. Unknown email and wrong password both come back as
// common.ErrInvalidCredentials so callers cannot tell which check failed.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password required", common.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn a comparison anyway to keep timing uniform
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Username, s.secretKey, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}
