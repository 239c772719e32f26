package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Manager issues short-lived signed session tokens attached to partner API
// requests (the quote service). Tokens are HS256 with a shared secret; the
// partner verifies them server-side.
type Manager struct {
	secret  []byte
	subject string
	ttl     time.Duration
}

// NewManager creates a token manager. subject identifies the calling
// application in the token's sub claim.
func NewManager(secret, subject string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Manager{secret: []byte(secret), subject: subject, ttl: ttl}
}

// Token signs a fresh session token.
func (m *Manager) Token() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   m.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and reports whether it is currently valid for this
// manager's secret and subject.
func (m *Manager) Verify(token string) (bool, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to parse session token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return false, nil
	}
	return claims.Subject == m.subject, nil
}
