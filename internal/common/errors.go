// Package common defines shared sentinel errors used across the Emotify
// accounts service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration flow errors.
	ErrValidation          = errors.New("validation error")
	ErrEmailTaken          = errors.New("email already in use")
	ErrOTPInvalidOrExpired = errors.New("invalid or expired otp")
	ErrRegistrationExpired = errors.New("registration session expired")
	ErrNotificationFailed  = errors.New("notification dispatch failed")

	// Login / token errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
