// Package services contains the server-side business logic: the registration
// engine driving the OTP lifecycle, and the user service handling login.
package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/emotify/accounts/internal/common"
	"github.com/emotify/accounts/internal/logging"
	"github.com/emotify/accounts/internal/server/config"
	"github.com/emotify/accounts/internal/server/mail"
	"github.com/emotify/accounts/internal/server/models"
	"github.com/emotify/accounts/internal/server/repositories/pending"
	"github.com/emotify/accounts/internal/server/repositories/users"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
	otpDigits         = 6
)

var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationService orchestrates the registration lifecycle: it creates
// pending records, dispatches and refreshes codes, and promotes a verified
// registration into a durable account.
//
// State machine per email:
//
//	[no record] --Register--> [pending]
//	[pending]   --ResendOTP--> [pending, code refreshed, window restarted]
//	[pending]   --VerifyOTP match--> [account created] (terminal)
//	[pending]   --VerifyOTP mismatch/expired--> [pending] (error surfaced)
//	[pending]   --window elapses--> [no record]
//	[pending]   --Register again--> [pending, prior attempt superseded]
type RegistrationService struct {
	users   users.Repository
	pending pending.Repository
	mailer  mail.Mailer
	logger  logging.Logger
	otpTTL  time.Duration
}

// NewRegistrationService constructs a RegistrationService from its
// collaborators and server config.
func NewRegistrationService(u users.Repository, p pending.Repository, m mail.Mailer, l logging.Logger, cfg *config.Config) *RegistrationService {
	return &RegistrationService{
		users:   u,
		pending: p,
		mailer:  m,
		logger:  l,
		otpTTL:  cfg.OTPValidityDuration,
	}
}

// Register starts a signup: it validates input, rejects emails that already
// have an account, writes a pending record holding the hashed password and a
// fresh code, and dispatches the code by mail. A repeated call for the same
// email supersedes the earlier attempt, so the earlier code stops verifying.
//
// When the mail dispatch fails the pending record stays committed and
// common.ErrNotificationFailed is returned; the user recovers via ResendOTP.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if username == "" {
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if !emailRx.MatchString(email) {
		return fmt.Errorf("%w: valid email required", common.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "register: credential store lookup failed", "error", err)
		return common.ErrorInternal
	}

	code, err := generateOTP()
	if err != nil {
		return common.ErrorInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return common.ErrorInternal
	}

	rec := &models.PendingRegistration{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Code:         code,
		ExpiresAt:    time.Now().Add(s.otpTTL).Unix(),
	}
	if err := s.pending.Save(ctx, rec, s.otpTTL); err != nil {
		s.logger.Error(ctx, "register: saving pending registration failed", "error", err)
		return common.ErrorInternal
	}

	if err := s.mailer.SendVerificationCode(ctx, email, username, code); err != nil {
		s.logger.Error(ctx, "register: otp mail dispatch failed", "email", email, "error", err)
		return common.ErrNotificationFailed
	}

	return nil
}

// VerifyOTP consumes the pending record for email when the submitted code
// matches and is not expired, then promotes it into a credential record.
// Missing record, expiry, and mismatch are deliberately indistinguishable.
// A verify that races another with the same code loses on the store's
// uniqueness constraint and reports the same error: the record was already
// consumed.
func (s *RegistrationService) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and otp required", common.ErrValidation)
	}

	rec, err := s.pending.Consume(ctx, email, code)
	if err != nil {
		if errors.Is(err, pending.ErrPendingNotFound) || errors.Is(err, pending.ErrCodeMismatch) {
			return common.ErrOTPInvalidOrExpired
		}
		s.logger.Error(ctx, "verify: pending store failed", "error", err)
		return common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     rec.Username,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrOTPInvalidOrExpired
		}
		s.logger.Error(ctx, "verify: creating user failed", "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "account created", "email", email)
	return nil
}

// ResendOTP replaces the code on an existing pending registration and
// restarts the expiry window, then dispatches the new code. It never creates
// a pending record: with nothing to refresh the signup window has elapsed and
// the caller gets common.ErrRegistrationExpired.
func (s *RegistrationService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrValidation)
	}

	code, err := generateOTP()
	if err != nil {
		return common.ErrorInternal
	}

	rec, err := s.pending.Refresh(ctx, email, code, s.otpTTL)
	if err != nil {
		if errors.Is(err, pending.ErrPendingNotFound) {
			return common.ErrRegistrationExpired
		}
		s.logger.Error(ctx, "resend: pending store failed", "error", err)
		return common.ErrorInternal
	}

	if err := s.mailer.SendNewCode(ctx, email, rec.Username, code); err != nil {
		s.logger.Error(ctx, "resend: otp mail dispatch failed", "email", email, "error", err)
		return common.ErrNotificationFailed
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateOTP draws a 6-digit code uniformly from [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()+100000), nil
}
