// Package auth issues and verifies the signed session tokens handed out
// after a successful login.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emotify/accounts/internal/common"
)

// Claims embeds the registered claims plus the identity fields the frontend
// reads back from GET /me.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// GenerateToken signs an HS256 token carrying the user's identity, valid for
// validityDuration from now.
func GenerateToken(userID, email, username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   userID,
		Email:    email,
		Username: username,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and expiry and returns the claims.
// Invalid, malformed, or expired tokens return common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
