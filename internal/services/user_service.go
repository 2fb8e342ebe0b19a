package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moving_ops/internal/apierr"
	"moving_ops/internal/models"
	"moving_ops/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	ValidateUserRole(ctx context.Context, userID uint, roles ...models.UserRole) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

const minPasswordLength = 8

func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = string(models.RoleClient)
	}

	fields := map[string]string{}
	if strings.TrimSpace(user.Name) == "" {
		fields["name"] = "required"
	}
	if user.Email == "" {
		fields["email"] = "required"
	}
	if !models.UserRole(user.Role).Valid() {
		fields["role"] = "unknown role"
	}
	if len(password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLength)
	}
	if len(fields) > 0 {
		return apierr.InvalidErr("Invalid user", fields)
	}

	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return apierr.ConflictErr("Email is already registered", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.Wrap(err, "user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apierr.Wrap(fmt.Errorf("failed to hash password: %w", err), "user")
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return apierr.Wrap(fmt.Errorf("failed to create user: %w", err), "user")
	}
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.Wrap(err, "user")
	}
	return user, nil
}

func (s *userService) GetUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if !role.Valid() {
		return nil, apierr.InvalidErr("Unknown role", map[string]string{"role": string(role)})
	}
	users, err := s.userRepo.GetByRole(ctx, string(role))
	if err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to list users: %w", err), "users")
	}
	return users, nil
}

// ValidateUserRole loads the user and checks it is active and holds one of
// roles.
func (s *userService) ValidateUserRole(ctx context.Context, userID uint, roles ...models.UserRole) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(apierr.Unauthorized, "Unknown user")
		}
		return nil, apierr.Wrap(err, "user")
	}
	if !user.IsActive {
		return nil, apierr.ForbiddenErr("User is disabled")
	}

	for _, role := range roles {
		if user.Role == string(role) {
			return user, nil
		}
	}
	return nil, apierr.ForbiddenErr("Insufficient permissions")
}
