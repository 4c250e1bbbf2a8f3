package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/pkg/database"
	"github.com/google/uuid"
)

// roleRepository implements RoleRepository interface
type roleRepository struct {
	db *database.Postgres
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *database.Postgres) RoleRepository {
	return &roleRepository{db: db}
}

// Create creates a role row for a user
func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (id, user_id, admin, "user")
		VALUES ($1, $2, $3, $4)
	`

	if role.ID == "" {
		role.ID = uuid.New().String()
	}

	_, err := r.db.DB.ExecContext(ctx, query, role.ID, role.UserID, role.Admin, role.User)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	return nil
}

// GetByUserID retrieves the role for a user
func (r *roleRepository) GetByUserID(ctx context.Context, userID string) (*domain.Role, error) {
	query := `SELECT id, user_id, admin, "user" FROM roles WHERE user_id = $1`

	role := &domain.Role{}
	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(&role.ID, &role.UserID, &role.Admin, &role.User)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role for user %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get role by user id: %w", err)
	}

	return role, nil
}
