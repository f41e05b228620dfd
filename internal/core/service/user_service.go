package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookhaven/library-system/internal/core/domain"
	"github.com/bookhaven/library-system/internal/core/ports"
)

// UserService implements account lifecycle: idempotent self-registration and
// the admin-gated role and delete operations.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// Register creates the record on first call for an email and is a no-op on
// repeats. The stored role is always "user"; callers cannot pick their tier.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return &ports.RegisterResult{User: existing, AlreadyExisted: true}, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &domain.User{
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		// Concurrent registration for the same email: the unique index wins
		// the race and both calls observe the single stored record.
		if errors.Is(err, domain.ErrUserExists) {
			winner, ferr := s.repo.FindByEmail(ctx, email)
			if ferr != nil {
				return nil, fmt.Errorf("register: %w", ferr)
			}
			return &ports.RegisterResult{User: winner, AlreadyExisted: true}, nil
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("email", email).Msg("user registered")
	return &ports.RegisterResult{User: created}, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// UpdateRole sets a user's tier to one of the known roles. The write is a
// single-document update, so concurrent calls leave one of the requested
// values, never a blend.
func (s *UserService) UpdateRole(ctx context.Context, id string, role string) error {
	parsed, ok := domain.ParseRole(role)
	if !ok {
		return domain.ErrInvalidRole
	}
	if err := s.repo.UpdateRole(ctx, id, parsed); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	s.log.Info().Str("user_id", id).Str("role", string(parsed)).Msg("role updated")
	return nil
}

// Delete removes the user record. Orders and payments referencing the email
// are intentionally left behind.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
