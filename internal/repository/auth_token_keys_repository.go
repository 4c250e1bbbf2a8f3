package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/pkg/database"
	"github.com/lib/pq"
)

// authTokenKeysRepository implements AuthTokenKeysRepository interface
type authTokenKeysRepository struct {
	db *database.Postgres
}

// NewAuthTokenKeysRepository creates a new token keys repository
func NewAuthTokenKeysRepository(db *database.Postgres) AuthTokenKeysRepository {
	return &authTokenKeysRepository{db: db}
}

// Create persists a fresh key pair for a user
func (r *authTokenKeysRepository) Create(ctx context.Context, keys *domain.AuthTokenKeys) error {
	query := `
		INSERT INTO auth_token_keys (user_id, access_token_key, refresh_token_key)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.DB.ExecContext(ctx, query, keys.UserID, keys.AccessTokenKey, keys.RefreshTokenKey)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("user %s already has an active key pair: %w", keys.UserID, ErrDuplicateKeys)
		}
		return fmt.Errorf("failed to create token keys: %w", err)
	}

	return nil
}

// Find retrieves a key pair by partial match: zero-valued match fields
// are ignored, provided fields must all match.
func (r *authTokenKeysRepository) Find(ctx context.Context, match domain.AuthTokenKeys) (*domain.AuthTokenKeys, error) {
	where, args := buildKeysFilter(match)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty key pair filter: %w", ErrNotFound)
	}

	query := fmt.Sprintf(`SELECT user_id, access_token_key, refresh_token_key FROM auth_token_keys WHERE %s`, where)

	keys := &domain.AuthTokenKeys{}
	err := r.db.DB.QueryRowContext(ctx, query, args...).Scan(&keys.UserID, &keys.AccessTokenKey, &keys.RefreshTokenKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token keys not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find token keys: %w", err)
	}

	return keys, nil
}

// DeleteByUserID removes the key pair for a user, revoking every token
// issued against it. Returns the number of rows deleted.
func (r *authTokenKeysRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM auth_token_keys WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete token keys: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// Replace rotates the key pair in a single transaction serialized per
// user through an advisory lock, so two concurrent refreshes cannot
// both succeed against the same stale pair. Returns ErrNotFound when no
// row matches, which the caller treats as a stale or replayed token.
func (r *authTokenKeysRepository) Replace(ctx context.Context, match domain.AuthTokenKeys, next *domain.AuthTokenKeys) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rotation: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, match.UserID); err != nil {
		return fmt.Errorf("failed to acquire rotation lock: %w", err)
	}

	where, args := buildKeysFilter(match)
	query := fmt.Sprintf(`DELETE FROM auth_token_keys WHERE %s`, where)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete matched keys: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("token keys not found: %w", ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO auth_token_keys (user_id, access_token_key, refresh_token_key) VALUES ($1, $2, $3)`,
		next.UserID, next.AccessTokenKey, next.RefreshTokenKey,
	)
	if err != nil {
		return fmt.Errorf("failed to create rotated keys: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rotation: %w", err)
	}

	return nil
}

func buildKeysFilter(match domain.AuthTokenKeys) (string, []any) {
	var clauses []string
	var args []any

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	add("user_id", match.UserID)
	add("access_token_key", match.AccessTokenKey)
	add("refresh_token_key", match.RefreshTokenKey)

	return strings.Join(clauses, " AND "), args
}
