package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

// APIKeyRepository implements API key lookup using SQLite.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new SQLite API key repository.
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create stores a key hash mapped to an actor.
func (r *APIKeyRepository) Create(ctx context.Context, keyHash, actorID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, actor_id, created_at) VALUES (?, ?, ?)`,
		keyHash, actorID, now)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("inserting api key: %w", err)
	}
	return nil
}

// ResolveActor returns the actor owning the given key hash.
func (r *APIKeyRepository) ResolveActor(ctx context.Context, keyHash string) (string, error) {
	var actorID string
	err := r.db.QueryRowContext(ctx,
		`SELECT actor_id FROM api_keys WHERE key_hash = ?`, keyHash).Scan(&actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("resolving api key: %w", err)
	}
	return actorID, nil
}

// Delete removes a key hash.
func (r *APIKeyRepository) Delete(ctx context.Context, keyHash string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM api_keys WHERE key_hash = ?`, keyHash)
	if err != nil {
		return fmt.Errorf("deleting api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting api key: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
