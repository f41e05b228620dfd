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

// CheckoutProvider abstracts the hosted payment provider's session API.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, in ports.CheckoutSessionInput) (*ports.CheckoutSession, error)
	Name() string
}

// ConfirmDedup abstracts the transport-level guard against redelivered
// confirmation callbacks (Redis). The duplicate-check read on the payments
// collection remains the semantic guard; this only short-circuits replays.
type ConfirmDedup interface {
	Seen(ctx context.Context, sessionID string) (bool, error)
	Mark(ctx context.Context, sessionID string) error
}

type paymentService struct {
	payments ports.PaymentRepository
	orders   ports.OrderRepository
	provider CheckoutProvider
	dedup    ConfirmDedup
	log      zerolog.Logger
}

// NewPaymentService returns a PaymentService implementation.
func NewPaymentService(
	payments ports.PaymentRepository,
	orders ports.OrderRepository,
	provider CheckoutProvider,
	dedup ConfirmDedup,
	log zerolog.Logger,
) ports.PaymentService {
	return &paymentService{
		payments: payments,
		orders:   orders,
		provider: provider,
		dedup:    dedup,
		log:      log,
	}
}

// Checkout opens a hosted checkout session for a pending order owned by the
// caller and records the session id on the order.
func (s *paymentService) Checkout(ctx context.Context, in ports.CheckoutInput) (*ports.CheckoutResult, error) {
	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(order.UserEmail, in.UserEmail) {
		return nil, domain.ErrForbidden
	}
	if order.Status == domain.OrderPaid {
		return nil, domain.ErrOrderAlreadyPaid
	}

	session, err := s.provider.CreateSession(ctx, ports.CheckoutSessionInput{
		ReferenceID:   order.ID,
		CustomerEmail: order.UserEmail,
		AmountCents:   order.AmountCents,
		Currency:      order.Currency,
		Description:   order.BookTitle,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout: create session: %w", err)
	}

	if err := s.orders.SetPaymentSession(ctx, order.ID, session.ID); err != nil {
		return nil, fmt.Errorf("checkout: record session: %w", err)
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("session_id", session.ID).
		Msg("checkout session created")

	return &ports.CheckoutResult{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

// Confirm records a completed checkout session. The flow is deliberately the
// original's: one duplicate-check read, then two separate store writes
// (payment insert, then order mark-paid) with no transaction around them. A
// crash between the writes leaves a payment recorded against an unpaid order.
func (s *paymentService) Confirm(ctx context.Context, in ports.ConfirmInput) (*ports.ConfirmResult, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, domain.ErrPaymentNotFound
	}

	// Transport-level replay guard; failure is non-fatal.
	seen, err := s.dedup.Seen(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("confirm dedup check failed, processing anyway")
	} else if seen {
		existing, ferr := s.payments.FindBySessionID(ctx, sessionID)
		if ferr == nil {
			return &ports.ConfirmResult{Payment: existing, AlreadyProcessed: true}, nil
		}
		s.log.Warn().Err(ferr).Str("session_id", sessionID).Msg("dedup hit without stored payment")
	}

	// The duplicate-check read.
	existing, err := s.payments.FindBySessionID(ctx, sessionID)
	if err == nil {
		return &ports.ConfirmResult{Payment: existing, AlreadyProcessed: true}, nil
	}
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, fmt.Errorf("confirm: %w", err)
	}

	order, err := s.orders.FindByPaymentSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	if order.Status == domain.OrderPaid {
		return nil, domain.ErrOrderAlreadyPaid
	}

	if markErr := s.dedup.Mark(ctx, sessionID); markErr != nil {
		s.log.Warn().Err(markErr).Str("session_id", sessionID).Msg("failed to set confirm dedup key")
	}

	now := time.Now().UTC()
	payment, err := s.payments.Insert(ctx, &domain.Payment{
		SessionID:   sessionID,
		OrderID:     order.ID,
		UserEmail:   order.UserEmail,
		AmountCents: order.AmountCents,
		Currency:    order.Currency,
		Provider:    s.provider.Name(),
		CreatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("confirm: insert payment: %w", err)
	}

	if err := s.orders.MarkPaid(ctx, order.ID, now); err != nil {
		// Payment is recorded but the order is not marked. Surfaced, not
		// rolled back.
		return nil, fmt.Errorf("confirm: mark order paid: %w", err)
	}

	s.log.Info().
		Str("session_id", sessionID).
		Str("order_id", order.ID).
		Int64("amount_cents", payment.AmountCents).
		Msg("payment confirmed")

	return &ports.ConfirmResult{Payment: payment}, nil
}

func (s *paymentService) ListByEmail(ctx context.Context, email string) ([]*domain.Payment, error) {
	return s.payments.ListByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}
