package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrix/internal/shared"
)

// tokenBytes yields 64 characters of base64url once encoded.
const tokenBytes = 48

// TokenStore is the slice of the credential store the manager consumes.
// Implemented by [repositories.TokenRepository].
type TokenStore interface {
	Save(token, ownerID string) error
	Take(token string) (string, error)
	DeleteByOwner(ownerID string) error
}

// Manager drives the remember-me token lifecycle.
type Manager struct {
	tokens      TokenStore
	logger      *log.Logger
	multiDevice bool
}

// NewManager creates a [Manager]. When multiDevice is false, issuing a token
// invalidates the owner's outstanding ones so a single live token exists per
// identity; when true, each device keeps its own.
func NewManager(tokens TokenStore, logger *log.Logger, multiDevice bool) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{tokens: tokens, logger: logger, multiDevice: multiDevice}
}

// Issue generates a fresh high-entropy token for the owner, persists it, and
// returns the plaintext value for delivery to the client. The value is not
// logged or echoed anywhere else.
func (m *Manager) Issue(ownerID string) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("%w: empty owner id", shared.ErrInvalidInput)
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	if !m.multiDevice {
		if err := m.tokens.DeleteByOwner(ownerID); err != nil {
			return "", err
		}
	}

	if err := m.tokens.Save(token, ownerID); err != nil {
		return "", err
	}

	return token, nil
}

// ValidateAndRotate consumes a presented token and issues its replacement as
// one logical step.
//
// An absent or already-consumed token yields [shared.ErrInvalidToken]; store
// failures propagate as [shared.ErrStore] wraps. If rotation fails after the
// old token was consumed, the owner is still returned with an empty
// replacement: the caller stays authenticated for this visit but is not
// re-armed, and the consumed token never validates again.
func (m *Manager) ValidateAndRotate(token string) (ownerID, next string, err error) {
	if token == "" {
		return "", "", shared.ErrInvalidToken
	}

	ownerID, err = m.tokens.Take(token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", "", shared.ErrInvalidToken
		}
		return "", "", err
	}

	next, err = m.Issue(ownerID)
	if err != nil {
		m.logger.Warn("failed to rotate remember token", "owner", ownerID, "error", err)
		return ownerID, "", nil
	}

	return ownerID, next, nil
}

// generateToken returns a 64-character base64url string from crypto/rand.
// Predictable generation here would defeat the bearer-capability model, so
// there is no fallback source.
func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
