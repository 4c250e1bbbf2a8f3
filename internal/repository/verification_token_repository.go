package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/pkg/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// verificationTokenRepository implements VerificationTokenRepository interface
type verificationTokenRepository struct {
	db *database.Postgres
}

// NewVerificationTokenRepository creates a new verification token repository
func NewVerificationTokenRepository(db *database.Postgres) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

// Create persists a verification token
func (r *verificationTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (id, user_id, token, token_type, verified, token_expiry)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if token.ID == "" {
		token.ID = uuid.New().String()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.TokenType,
		token.Verified,
		token.TokenExpiry,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("verification token already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	return nil
}

const verificationTokenColumns = "id, user_id, token, token_type, verified, token_expiry"

func (r *verificationTokenRepository) getBy(ctx context.Context, column, value string) (*domain.VerificationToken, error) {
	query := fmt.Sprintf(`SELECT %s FROM verification_tokens WHERE %s = $1`, verificationTokenColumns, column)

	token := &domain.VerificationToken{}
	err := r.db.DB.QueryRowContext(ctx, query, value).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.TokenType,
		&token.Verified,
		&token.TokenExpiry,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}

	return token, nil
}

// GetByToken retrieves a verification token by its raw token string
func (r *verificationTokenRepository) GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	return r.getBy(ctx, "token", token)
}

// GetByID retrieves a verification token by id
func (r *verificationTokenRepository) GetByID(ctx context.Context, id string) (*domain.VerificationToken, error) {
	return r.getBy(ctx, "id", id)
}

// MarkVerified sets the verified flag on a token without consuming it
func (r *verificationTokenRepository) MarkVerified(ctx context.Context, token string) error {
	result, err := r.db.DB.ExecContext(ctx, `UPDATE verification_tokens SET verified = true WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to mark token verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("verification token not found: %w", ErrNotFound)
	}

	return nil
}

// DeleteByUserID removes any outstanding verification token for a user,
// regardless of purpose. Returns the number of rows deleted.
func (r *verificationTokenRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM verification_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete verification token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
