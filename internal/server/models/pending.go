package models

// PendingRegistration is an unverified signup awaiting OTP confirmation.
// It holds the already-hashed password and a short-lived code; the plaintext
// password is never persisted. The record is stored under a single key per
// email, so at most one live registration exists for any address.
type PendingRegistration struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Code         string `json:"code"`
	// ExpiresAt is unix seconds. Expiry is checked explicitly on every read,
	// the store TTL only reaps records that were never consumed.
	ExpiresAt int64 `json:"expires_at"`
}
