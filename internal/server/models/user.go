package models

import "time"

// User is a finalized, durable account usable for login. PasswordHash is
// excluded from JSON so no read path can leak it.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
