package ports

import (
	"context"

	"github.com/bookhaven/library-system/internal/core/domain"
)

// CreateOrderInput carries the order creation payload. UserEmail always comes
// from the verified principal, never from the request body.
type CreateOrderInput struct {
	UserEmail string
	BookID    string
	Quantity  int
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	// Create snapshots the book's current price into the order. Stock is not
	// decremented.
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	Delete(ctx context.Context, id string) error
}
