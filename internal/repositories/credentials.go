package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lyrix/internal/models"
	"github.com/desertthunder/lyrix/internal/shared"
)

// CredentialRepository persists [models.UserIdentity] records.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Upsert stores the current refresh token for an identity: insert if absent,
// overwrite otherwise. At most one row per id exists afterwards, so calling
// twice with the same arguments is a no-op beyond the updated_at bump.
func (r *CredentialRepository) Upsert(id, refreshToken string) error {
	if id == "" {
		return fmt.Errorf("%w: empty user id", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO users (id, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET refresh_token = excluded.refresh_token, updated_at = excluded.updated_at
	`

	now := time.Now()
	if _, err := r.db.Exec(query, id, refreshToken, now, now); err != nil {
		return fmt.Errorf("%w: failed to upsert user: %v", shared.ErrStore, err)
	}

	return nil
}

// Get retrieves an identity by its provider id.
func (r *CredentialRepository) Get(id string) (*models.UserIdentity, error) {
	query := `
		SELECT id, refresh_token, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	var user models.UserIdentity
	err := r.db.QueryRow(query, id).Scan(&user.ID, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query user: %v", shared.ErrStore, err)
	}

	return &user, nil
}

// Delete removes an identity and every remember-me token issued for it.
//
// Both deletes run in one transaction: a failed token cleanup aborts the
// logout instead of leaving orphaned credentials behind.
func (r *CredentialRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrStore, err)
	}
	defer tx.Rollback()

	result, err := tx.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete user: %v", shared.ErrStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get affected rows: %v", shared.ErrStore, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}

	if _, err := tx.Exec("DELETE FROM tokens WHERE owner_id = ?", id); err != nil {
		return fmt.Errorf("%w: failed to delete remember tokens: %v", shared.ErrStore, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit delete: %v", shared.ErrStore, err)
	}

	return nil
}
