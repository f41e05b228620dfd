package ports

import (
	"context"

	"github.com/bookhaven/library-system/internal/core/domain"
)

// CheckoutInput identifies the order to open a hosted checkout session for.
// UserEmail is the verified principal's email and must own the order.
type CheckoutInput struct {
	OrderID   string
	UserEmail string
}

// CheckoutResult carries what the client needs to hand off to the hosted
// payment page.
type CheckoutResult struct {
	SessionID   string
	CheckoutURL string
}

// ConfirmInput carries a completed-session notification from the provider.
type ConfirmInput struct {
	SessionID string
}

// ConfirmResult reports the confirmation outcome.
type ConfirmResult struct {
	Payment *domain.Payment
	// AlreadyProcessed is true when the session had been recorded before;
	// the call is then a no-op.
	AlreadyProcessed bool
}

// PaymentService drives the hosted checkout flow: session creation before the
// redirect, confirmation after it.
type PaymentService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	Confirm(ctx context.Context, in ConfirmInput) (*ConfirmResult, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.Payment, error)
}
