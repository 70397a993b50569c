// ABOUTME: JWT issuance and parsing for docuvault access tokens.
// ABOUTME: Always enforces HS256 and expiration. Never call jwt.Parse directly.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the claims embedded in an access token. The verified identity
// handed to handlers is exactly this pair: who the caller is and whether they
// hold the admin flag.
type Claims struct {
	jwt.RegisteredClaims
	// UserID is the authenticated user's UUID. The json:"sub" tag intentionally
	// shadows RegisteredClaims.Subject so "sub" serializes as a UUID string.
	// Go's encoding/json picks the outermost field when embedded tags collide.
	UserID uuid.UUID `json:"sub"`
	// IsAdmin mirrors users.is_admin at issue time.
	IsAdmin bool `json:"adm"`
}

// IssueToken creates a signed HS256 access token for the given user.
func IssueToken(secret []byte, userID uuid.UUID, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:  userID,
		IsAdmin: isAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates and parses an HS256 access token. Returns an error if
// the token is expired, uses a wrong algorithm, or is otherwise invalid.
func ParseToken(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}
