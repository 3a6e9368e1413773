package auth

import (
	"context"
	"errors"
	"fmt"

	"cafe-directory/models"
	"cafe-directory/repository"
)

// UserStore is the persistence the service needs.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
}

// Service registers and authenticates users.
type Service struct {
	users  UserStore
	hasher PasswordHasher
}

func NewService(users UserStore, hasher PasswordHasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// Register creates an account. The caller establishes the session.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var missing []string
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if len(req.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		// Lost a race with a concurrent sign-up for the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns the matching user.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		var missing []string
		if req.Email == "" {
			missing = append(missing, "email")
		}
		if req.Password == "" {
			missing = append(missing, "password")
		}
		return nil, &ValidationError{Fields: missing}
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnknownEmail
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Verify(ctx, user.Password, req.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// CurrentUser loads the user a session points at. A session whose user no
// longer exists yields (nil, nil) and is treated as anonymous.
func (s *Service) CurrentUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// RequireAdmin allows only administrators; anonymous users are refused too.
func RequireAdmin(user *models.User) error {
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
