package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
)

// Claims carried by an access token. The subject is the user's email; the
// role claim is informational only and never trusted for authorization, since
// roles may change after issuance.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager mints and validates HS256 bearer tokens with a fixed expiry.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Issue(u *models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates the token and returns its subject email. Any signature,
// expiry or shape failure maps to ErrUnauthenticated.
func (m *TokenManager) Parse(raw string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", errs.ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token missing subject: %w", errs.ErrUnauthenticated)
	}
	return claims.Subject, nil
}
