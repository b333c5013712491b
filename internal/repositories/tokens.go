package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lyrix/internal/shared"
)

// TokenRepository persists outstanding remember-me tokens.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save stores a newly issued token for an owner.
func (r *TokenRepository) Save(token, ownerID string) error {
	if token == "" || ownerID == "" {
		return fmt.Errorf("%w: empty token or owner id", shared.ErrInvalidInput)
	}

	query := "INSERT INTO tokens (token, owner_id, created_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, token, ownerID, time.Now()); err != nil {
		return fmt.Errorf("%w: failed to save remember token: %v", shared.ErrStore, err)
	}

	return nil
}

// Take consumes a token: lookup and delete as one atomic unit.
//
// The single DELETE ... RETURNING statement is linearizable per token value;
// of two concurrent calls with the same token exactly one receives the owner
// id and the other [shared.ErrNotFound]. A consumed token can never match
// again.
func (r *TokenRepository) Take(token string) (string, error) {
	query := "DELETE FROM tokens WHERE token = ? RETURNING owner_id"

	var ownerID string
	err := r.db.QueryRow(query, token).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: remember token", shared.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to take remember token: %v", shared.ErrStore, err)
	}

	return ownerID, nil
}

// DeleteByOwner removes every outstanding token for an owner. Used when
// multi-device persistent login is disabled so that issuing a token leaves
// exactly one live credential per identity.
func (r *TokenRepository) DeleteByOwner(ownerID string) error {
	if _, err := r.db.Exec("DELETE FROM tokens WHERE owner_id = ?", ownerID); err != nil {
		return fmt.Errorf("%w: failed to delete owner tokens: %v", shared.ErrStore, err)
	}
	return nil
}

// CountByOwner reports how many tokens are outstanding for an owner.
func (r *TokenRepository) CountByOwner(ownerID string) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM tokens WHERE owner_id = ?", ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count owner tokens: %v", shared.ErrStore, err)
	}
	return count, nil
}
