package services

import (
	"errors"
	"fmt"

	"closet/internal/models"
	"closet/internal/repositories"
)

// UserService handles user bootstrap and lookups. Users are created once and
// never mutated by this service.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Bootstrap returns the user registered under email, creating them on first
// call. Repeated calls with the same email are idempotent and ignore the
// other fields.
func (s *UserService) Bootstrap(email, fullName string, avatarImageURL *string) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	user := &models.User{
		Email:          email,
		FullName:       fullName,
		AvatarImageURL: avatarImageURL,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to bootstrap user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}
