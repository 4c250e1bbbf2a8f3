package repository

import (
	"context"

	"github.com/chatloop/chat-backend/internal/domain"
)

// Include selects which associations to load eagerly with a user.
type Include struct {
	Role     bool
	Activity bool
}

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string, include Include) (*domain.User, error)
	GetByEmail(ctx context.Context, email string, include Include) (*domain.User, error)
	GetByUserName(ctx context.Context, userName string, include Include) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateUserName(ctx context.Context, userID, userName string) error
	Delete(ctx context.Context, userID string) error
}

// RoleRepository defines methods for role operations
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByUserID(ctx context.Context, userID string) (*domain.Role, error)
}

// ActivityRepository defines methods for the per-user security state
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	Update(ctx context.Context, activity *domain.Activity) error
	GetByUserID(ctx context.Context, userID string) (*domain.Activity, error)
}

// AuthTokenKeysRepository manages the per-user token key pair.
// Replace performs the find-delete-create rotation as one isolated
// transaction keyed by userId.
type AuthTokenKeysRepository interface {
	Create(ctx context.Context, keys *domain.AuthTokenKeys) error
	Find(ctx context.Context, match domain.AuthTokenKeys) (*domain.AuthTokenKeys, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	Replace(ctx context.Context, match domain.AuthTokenKeys, next *domain.AuthTokenKeys) error
}

// VerificationTokenRepository manages single-use verification tokens
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *domain.VerificationToken) error
	GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	GetByID(ctx context.Context, id string) (*domain.VerificationToken, error)
	MarkVerified(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}
