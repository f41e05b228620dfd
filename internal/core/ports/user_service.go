package ports

import (
	"context"

	"github.com/bookhaven/library-system/internal/core/domain"
)

// RegisterInput carries the self-registration payload. The email is supplied
// by the client and used only to key the record; it grants nothing by itself
// since every gated request re-verifies identity and re-reads the stored role.
type RegisterInput struct {
	Email string
	Name  string
}

// RegisterResult reports the outcome of an idempotent registration.
type RegisterResult struct {
	User *domain.User
	// AlreadyExisted is true when a record for the email was present; the
	// call is then a no-op and User is the existing record.
	AlreadyExisted bool
}

// UserService defines account lifecycle operations.
type UserService interface {
	// Register creates the user record on first call and is a no-op on
	// repeats for the same email. New records always get role "user".
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// UpdateRole changes a user's tier. Only reachable through the
	// admin-gated route.
	UpdateRole(ctx context.Context, id string, role string) error
	Delete(ctx context.Context, id string) error
}
