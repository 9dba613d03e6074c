// Package token issues and verifies the stateless session credentials used by
// the API. Validity is determined entirely by signature and expiry; there is
// no server-side session state or revocation list, so logout is a client-side
// credential discard.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/chandankhang/CompTrack/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims embeds the caller identity and role in the signed token.
type Claims struct {
	UserID uint64          `json:"user_id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a shared HMAC secret.
type Manager struct {
	secret   []byte
	lifetime time.Duration
}

func NewManager(secret string, lifetime time.Duration) *Manager {
	return &Manager{
		secret:   []byte(secret),
		lifetime: lifetime,
	}
}

// Issue creates a signed token for the user.
func (m *Manager) Issue(userID uint64, role models.UserRole) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "comptrack",
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify checks the signature and expiry and returns the embedded claims.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
