package auth

import (
	"fmt"
	"time"

	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// sessionTTL bounds how long a session cookie stays valid without a fresh
// remember-me consumption or interactive login.
const sessionTTL = 24 * time.Hour

// SessionCodec signs and verifies session cookies as HMAC-SHA256 JWTs.
type SessionCodec struct {
	secret []byte
}

// NewSessionCodec creates a codec from the configured session secret.
func NewSessionCodec(secret string) *SessionCodec {
	return &SessionCodec{secret: []byte(secret)}
}

// Sign produces a signed session token carrying the user id.
func (c *SessionCodec) Sign(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", shared.ErrInvalidInput)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	return signed, nil
}

// Verify checks a session token and returns the user id it carries.
// Expired, tampered, or foreign-algorithm tokens yield
// [shared.ErrSessionInvalid]; the caller treats that as anonymous, never as a
// visible error.
func (c *SessionCodec) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", shared.ErrSessionInvalid
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", shared.ErrSessionInvalid
	}

	return claims.Subject, nil
}
