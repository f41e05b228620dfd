package ports

import (
	"context"

	"github.com/bookhaven/library-system/internal/core/domain"
)

// UserRepository defines persistence for user records.
type UserRepository interface {
	// Insert stores a new user. A duplicate email yields domain.ErrUserExists
	// (backed by the unique index, so concurrent registrations collapse).
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound when no record exists.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// UpdateRole sets the role on one record by id. The write is a single
	// document $set: concurrent updates land last-write-wins, never merged.
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	// Delete removes the record only. Orders and payments referencing the
	// email are left in place.
	Delete(ctx context.Context, id string) error
}
