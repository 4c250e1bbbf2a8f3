package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/pkg/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, user_name, first_name, last_name, email, gender, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.UserName,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Gender,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			if strings.Contains(pqErr.Constraint, "user_name") {
				return fmt.Errorf("username %s is taken: %w", user.UserName, ErrDuplicateUserName)
			}
			return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = "u.id, u.user_name, u.first_name, u.last_name, u.email, u.gender, u.password, u.created_at, u.updated_at"

func (r *userRepository) getBy(ctx context.Context, column, value string, include Include) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.%s = $1`, userColumns, column)

	user := &domain.User{}
	err := r.db.DB.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.UserName,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Gender,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with %s %s not found: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	if include.Role {
		role, err := r.loadRole(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}

	if include.Activity {
		activity, err := r.loadActivity(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		user.Activity = activity
	}

	return user, nil
}

func (r *userRepository) loadRole(ctx context.Context, userID string) (*domain.Role, error) {
	query := `SELECT id, user_id, admin, "user" FROM roles WHERE user_id = $1`

	role := &domain.Role{}
	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(&role.ID, &role.UserID, &role.Admin, &role.User)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load role: %w", err)
	}
	return role, nil
}

func (r *userRepository) loadActivity(ctx context.Context, userID string) (*domain.Activity, error) {
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
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}
	if passwordChangedLast.Valid {
		activity.PasswordChangedLast = &passwordChangedLast.Time
	}
	return activity, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string, include Include) (*domain.User, error) {
	return r.getBy(ctx, "id", id, include)
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string, include Include) (*domain.User, error) {
	return r.getBy(ctx, "email", email, include)
}

// GetByUserName retrieves a user by username
func (r *userRepository) GetByUserName(ctx context.Context, userName string, include Include) (*domain.User, error) {
	return r.getBy(ctx, "user_name", userName, include)
}

// UpdatePassword replaces the stored password hash for a user
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`
	return r.exec(ctx, query, userID, passwordHash, time.Now())
}

// UpdateUserName replaces the username for a user
func (r *userRepository) UpdateUserName(ctx context.Context, userID, userName string) error {
	query := `UPDATE users SET user_name = $2, updated_at = $3 WHERE id = $1`

	err := r.exec(ctx, query, userID, userName, time.Now())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("username %s is taken: %w", userName, ErrDuplicateUserName)
		}
		return err
	}
	return nil
}

// Delete removes a user row; dependent rows cascade
func (r *userRepository) Delete(ctx context.Context, userID string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
}

func (r *userRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}

	return nil
}
