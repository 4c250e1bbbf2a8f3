package repository

import (
	"github.com/chatloop/chat-backend/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User              UserRepository
	Role              RoleRepository
	Activity          ActivityRepository
	AuthTokenKeys     AuthTokenKeysRepository
	VerificationToken VerificationTokenRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:              NewUserRepository(db),
		Role:              NewRoleRepository(db),
		Activity:          NewActivityRepository(db),
		AuthTokenKeys:     NewAuthTokenKeysRepository(db),
		VerificationToken: NewVerificationTokenRepository(db),
	}
}
