package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/pkg/database"
)

// activityRepository implements ActivityRepository interface
type activityRepository struct {
	db *database.Postgres
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.Postgres) ActivityRepository {
	return &activityRepository{db: db}
}

// Create creates the security state row for a user
func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	query := `
		INSERT INTO activities (user_id, failed_login_attempts, email_verified, access_restricted, permanent_access_restricted, password_changed_last)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		activity.UserID,
		activity.FailedLoginAttempts,
		activity.EmailVerified,
		activity.AccessRestricted,
		activity.PermanentAccessRestricted,
		activity.PasswordChangedLast,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	return nil
}

// Update writes the full security state row for a user
func (r *activityRepository) Update(ctx context.Context, activity *domain.Activity) error {
	query := `
		UPDATE activities
		SET failed_login_attempts = $2, email_verified = $3, access_restricted = $4, permanent_access_restricted = $5, password_changed_last = $6
		WHERE user_id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		activity.UserID,
		activity.FailedLoginAttempts,
		activity.EmailVerified,
		activity.AccessRestricted,
		activity.PermanentAccessRestricted,
		activity.PasswordChangedLast,
	)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("activity for user %s not found: %w", activity.UserID, ErrNotFound)
	}

	return nil
}

// GetByUserID retrieves the security state for a user
func (r *activityRepository) GetByUserID(ctx context.Context, userID string) (*domain.Activity, error) {
	query := `
		SELECT user_id, failed_login_attempts, email_verified, access_restricted, permanent_access_restricted, password_changed_last
		FROM activities
		WHERE user_id = $1
	`

	activity := &domain.Activity{}
	var passwordChangedLast sql.NullTime
	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&activity.UserID,
		&activity.FailedLoginAttempts,
		&activity.EmailVerified,
		&activity.AccessRestricted,
		&activity.PermanentAccessRestricted,
		&passwordChangedLast,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity for user %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get activity by user id: %w", err)
	}
	if passwordChangedLast.Valid {
		activity.PasswordChangedLast = &passwordChangedLast.Time
	}

	return activity, nil
}
