package service

import (
	"context"
	"errors"

	"github.com/chatloop/chat-backend/internal/apperror"
	"github.com/chatloop/chat-backend/internal/repository"
	"github.com/chatloop/chat-backend/internal/utils"
)

// userService implements UserService interface
type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// UpdateUserName changes a user's username, rejecting taken names
func (s *userService) UpdateUserName(ctx context.Context, userID, newUserName string) error {
	if !utils.ValidateUserName(newUserName) {
		return apperror.BadRequest("Invalid username")
	}

	if _, err := s.userRepo.GetByUserName(ctx, newUserName, repository.Include{}); err == nil {
		return apperror.Conflict("Username is taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperror.Internal("")
	}

	if err := s.userRepo.UpdateUserName(ctx, userID, newUserName); err != nil {
		if errors.Is(err, repository.ErrDuplicateUserName) {
			return apperror.Conflict("Username is taken")
		}
		return apperror.Internal("")
	}
	return nil
}
