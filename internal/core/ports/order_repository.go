package ports

import (
	"context"
	"time"

	"github.com/bookhaven/library-system/internal/core/domain"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Insert(ctx context.Context, o *domain.Order) (*domain.Order, error)
	// FindByID returns domain.ErrOrderNotFound when no order exists.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// FindByPaymentSession resolves the order a checkout session was opened
	// for. Returns domain.ErrOrderNotFound when the session is unknown.
	FindByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	// SetPaymentSession records the checkout session id issued for the order.
	SetPaymentSession(ctx context.Context, id, sessionID string) error
	// MarkPaid sets status=paid and paidAt on one order document.
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	Delete(ctx context.Context, id string) error
}
