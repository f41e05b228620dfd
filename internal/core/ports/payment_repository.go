package ports

import (
	"context"

	"github.com/bookhaven/library-system/internal/core/domain"
)

// PaymentRepository defines persistence operations for completed payments.
type PaymentRepository interface {
	Insert(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	// FindBySessionID is the duplicate-check read guarding replayed
	// confirmations. Returns domain.ErrPaymentNotFound when unseen.
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.Payment, error)
}
