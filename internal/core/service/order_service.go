package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookhaven/library-system/internal/core/domain"
	"github.com/bookhaven/library-system/internal/core/ports"
)

// OrderService implements order use cases. Ownership checks against the
// verified principal happen at the transport layer; this service trusts the
// email it is given.
type OrderService struct {
	orders ports.OrderRepository
	books  ports.BookRepository
	log    zerolog.Logger
}

func NewOrderService(orders ports.OrderRepository, books ports.BookRepository, log zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, books: books, log: log}
}

// Create records a pending order for a book, snapshotting the current price.
// Stock is not decremented and no reservation is made.
func (s *OrderService) Create(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	book, err := s.books.FindByID(ctx, in.BookID)
	if err != nil {
		return nil, err
	}

	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}

	order := &domain.Order{
		UserEmail:   strings.TrimSpace(strings.ToLower(in.UserEmail)),
		BookID:      book.ID,
		BookTitle:   book.Title,
		Quantity:    qty,
		AmountCents: book.PriceCents * int64(qty),
		Currency:    book.Currency,
		Status:      domain.OrderPending,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.orders.Insert(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info().
		Str("order_id", created.ID).
		Str("book_id", book.ID).
		Str("email", created.UserEmail).
		Msg("order created")
	return created, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderService) ListByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	return s.orders.ListByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

func (s *OrderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.ListAll(ctx)
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.log.Info().Str("order_id", id).Msg("order deleted")
	return nil
}
