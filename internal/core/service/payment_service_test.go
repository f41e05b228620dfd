package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bookhaven/library-system/internal/core/domain"
	"github.com/bookhaven/library-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubPaymentRepo struct {
	bySession map[string]*domain.Payment
	nextID    int

	insertErr error // if set, Insert returns this error

	insertCalls int
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{bySession: make(map[string]*domain.Payment)}
}

func clonePayment(p *domain.Payment) *domain.Payment {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (r *stubPaymentRepo) Insert(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	r.insertCalls++
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	copy := clonePayment(p)
	r.nextID++
	copy.ID = fmt.Sprintf("p%d", r.nextID)
	r.bySession[copy.SessionID] = clonePayment(copy)
	return clonePayment(copy), nil
}

func (r *stubPaymentRepo) FindBySessionID(_ context.Context, sessionID string) (*domain.Payment, error) {
	p, ok := r.bySession[sessionID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

func (r *stubPaymentRepo) ListByEmail(_ context.Context, email string) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range r.bySession {
		if p.UserEmail == email {
			out = append(out, clonePayment(p))
		}
	}
	return out, nil
}

type stubProvider struct {
	sessionID string
	createErr error
	calls     int
	lastInput ports.CheckoutSessionInput
}

func (p *stubProvider) CreateSession(_ context.Context, in ports.CheckoutSessionInput) (*ports.CheckoutSession, error) {
	p.calls++
	p.lastInput = in
	if p.createErr != nil {
		return nil, p.createErr
	}
	return &ports.CheckoutSession{ID: p.sessionID, URL: "https://pay.example.com/s/" + p.sessionID}, nil
}

func (p *stubProvider) Name() string { return "payflow" }

type stubConfirmDedup struct {
	seenResult bool
	seenErr    error
	markErr    error
	marked     []string
}

func (d *stubConfirmDedup) Seen(_ context.Context, sessionID string) (bool, error) {
	return d.seenResult, d.seenErr
}

func (d *stubConfirmDedup) Mark(_ context.Context, sessionID string) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, sessionID)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type paymentFixture struct {
	payments *stubPaymentRepo
	orders   *stubOrderRepo
	provider *stubProvider
	dedup    *stubConfirmDedup
	svc      ports.PaymentService
	order    *domain.Order
}

// newPaymentFixture seeds one pending order for alice owned via the given
// checkout session id (empty means no session opened yet).
func newPaymentFixture(t *testing.T, sessionID string) *paymentFixture {
	t.Helper()

	orders := newStubOrderRepo()
	order, err := orders.Insert(context.Background(), &domain.Order{
		UserEmail:   "alice@example.com",
		BookID:      "b1",
		BookTitle:   "Dune",
		Quantity:    1,
		AmountCents: 1250,
		Currency:    "USD",
		Status:      domain.OrderPending,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	if sessionID != "" {
		if err := orders.SetPaymentSession(context.Background(), order.ID, sessionID); err != nil {
			t.Fatalf("seed session: %v", err)
		}
		order.PaymentSessionID = sessionID
	}

	f := &paymentFixture{
		payments: newStubPaymentRepo(),
		orders:   orders,
		provider: &stubProvider{sessionID: "sess_new"},
		dedup:    &stubConfirmDedup{},
		order:    order,
	}
	f.svc = NewPaymentService(f.payments, f.orders, f.provider, f.dedup, zerolog.Nop())
	return f
}

// ---------------------------------------------------------------------------
// Checkout
// ---------------------------------------------------------------------------

func TestPaymentService_Checkout_OpensSession(t *testing.T) {
	f := newPaymentFixture(t, "")

	res, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{
		OrderID:   f.order.ID,
		UserEmail: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if res.SessionID != "sess_new" {
		t.Errorf("unexpected session id: %q", res.SessionID)
	}
	if res.CheckoutURL == "" {
		t.Errorf("expected checkout url")
	}
	if f.provider.lastInput.ReferenceID != f.order.ID {
		t.Errorf("expected order id as reference, got %q", f.provider.lastInput.ReferenceID)
	}
	if f.provider.lastInput.AmountCents != 1250 {
		t.Errorf("expected order amount forwarded, got %d", f.provider.lastInput.AmountCents)
	}

	stored, _ := f.orders.FindByID(context.Background(), f.order.ID)
	if stored.PaymentSessionID != "sess_new" {
		t.Errorf("expected session recorded on order, got %q", stored.PaymentSessionID)
	}
}

func TestPaymentService_Checkout_WrongOwner(t *testing.T) {
	f := newPaymentFixture(t, "")

	_, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{
		OrderID:   f.order.ID,
		UserEmail: "mallory@example.com",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if f.provider.calls != 0 {
		t.Errorf("provider must not be called for a foreign order")
	}
}

func TestPaymentService_Checkout_AlreadyPaid(t *testing.T) {
	f := newPaymentFixture(t, "")
	_ = f.orders.MarkPaid(context.Background(), f.order.ID, f.order.CreatedAt)

	_, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{
		OrderID:   f.order.ID,
		UserEmail: "alice@example.com",
	})
	if !errors.Is(err, domain.ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}
	if f.provider.calls != 0 {
		t.Errorf("provider must not be called for a paid order")
	}
}

func TestPaymentService_Checkout_OrderNotFound(t *testing.T) {
	f := newPaymentFixture(t, "")

	_, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{OrderID: "missing", UserEmail: "alice@example.com"})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPaymentService_Checkout_ProviderError(t *testing.T) {
	f := newPaymentFixture(t, "")
	f.provider.createErr = errors.New("provider down")

	if _, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{OrderID: f.order.ID, UserEmail: "alice@example.com"}); err == nil {
		t.Fatalf("expected provider error to surface")
	}
	stored, _ := f.orders.FindByID(context.Background(), f.order.ID)
	if stored.PaymentSessionID != "" {
		t.Errorf("no session must be recorded when the provider fails")
	}
}

// ---------------------------------------------------------------------------
// Confirm
// ---------------------------------------------------------------------------

func TestPaymentService_Confirm_HappyPath(t *testing.T) {
	f := newPaymentFixture(t, "sess_1")

	res, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"})
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if res.AlreadyProcessed {
		t.Fatalf("first confirmation must not report AlreadyProcessed")
	}
	if res.Payment == nil || res.Payment.OrderID != f.order.ID {
		t.Fatalf("unexpected payment: %+v", res.Payment)
	}
	if res.Payment.AmountCents != 1250 || res.Payment.Provider != "payflow" {
		t.Errorf("payment fields not copied from order: %+v", res.Payment)
	}

	stored, _ := f.orders.FindByID(context.Background(), f.order.ID)
	if stored.Status != domain.OrderPaid {
		t.Errorf("expected order marked paid, got %q", stored.Status)
	}
	if stored.PaidAt == nil {
		t.Errorf("expected paidAt set")
	}
	if len(f.dedup.marked) != 1 {
		t.Errorf("expected dedup key marked")
	}
}

// Replaying a session is a no-op: the duplicate-check read finds the stored
// payment and nothing is written again.
func TestPaymentService_Confirm_ReplayIsNoOp(t *testing.T) {
	f := newPaymentFixture(t, "sess_1")

	first, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"})
	if err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}

	second, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"})
	if err != nil {
		t.Fatalf("replay confirm failed: %v", err)
	}
	if !second.AlreadyProcessed {
		t.Fatalf("expected AlreadyProcessed on replay")
	}
	if second.Payment.ID != first.Payment.ID {
		t.Errorf("replay must return the stored payment")
	}
	if f.payments.insertCalls != 1 {
		t.Errorf("expected exactly one insert, got %d", f.payments.insertCalls)
	}
}

func TestPaymentService_Confirm_DedupHitShortCircuits(t *testing.T) {
	f := newPaymentFixture(t, "sess_1")

	// First pass stores the payment, then simulate the redelivery arriving
	// with the dedup key already set.
	if _, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"}); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	f.dedup.seenResult = true
	markPaidBefore := f.orders.markPaidCalls

	res, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if !res.AlreadyProcessed {
		t.Fatalf("expected AlreadyProcessed on dedup hit")
	}
	if f.orders.markPaidCalls != markPaidBefore {
		t.Errorf("dedup hit must not write to the order")
	}
}

// A dedup backend failure must not block confirmations; the stored payment
// remains the source of truth.
func TestPaymentService_Confirm_DedupErrorIgnored(t *testing.T) {
	f := newPaymentFixture(t, "sess_1")
	f.dedup.seenErr = errors.New("redis timeout")

	res, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"})
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if res.AlreadyProcessed {
		t.Fatalf("expected normal processing despite dedup failure")
	}
	if f.payments.insertCalls != 1 {
		t.Errorf("expected payment stored, got %d inserts", f.payments.insertCalls)
	}
}

func TestPaymentService_Confirm_UnknownSession(t *testing.T) {
	f := newPaymentFixture(t, "sess_1")

	if _, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_other"}); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if f.payments.insertCalls != 0 {
		t.Errorf("no payment may be stored for an unknown session")
	}
}

func TestPaymentService_Confirm_EmptySession(t *testing.T) {
	f := newPaymentFixture(t, "sess_1")

	if _, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "  "}); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

// The two confirmation writes are not transactional: when marking the order
// fails, the payment stays recorded and the error surfaces to the caller.
func TestPaymentService_Confirm_MarkPaidFailureLeavesPayment(t *testing.T) {
	f := newPaymentFixture(t, "sess_1")
	f.orders.markPaidErr = errors.New("write concern failed")

	_, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"})
	if err == nil {
		t.Fatalf("expected mark-paid failure to surface")
	}

	if _, ferr := f.payments.FindBySessionID(context.Background(), "sess_1"); ferr != nil {
		t.Errorf("payment must remain recorded after mark-paid failure: %v", ferr)
	}
	stored, _ := f.orders.FindByID(context.Background(), f.order.ID)
	if stored.Status != domain.OrderPending {
		t.Errorf("order must remain pending, got %q", stored.Status)
	}

	// The retry then reports AlreadyProcessed off the stored payment and the
	// order stays unpaid, which is the recorded inconsistency window.
	res, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"})
	if err != nil {
		t.Fatalf("retry confirm failed: %v", err)
	}
	if !res.AlreadyProcessed {
		t.Errorf("expected AlreadyProcessed on retry")
	}
}

func TestPaymentService_Confirm_PaidOrderWithoutPayment(t *testing.T) {
	f := newPaymentFixture(t, "sess_1")
	_ = f.orders.MarkPaid(context.Background(), f.order.ID, f.order.CreatedAt)

	if _, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"}); !errors.Is(err, domain.ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}
}

func TestPaymentService_ListByEmail(t *testing.T) {
	f := newPaymentFixture(t, "sess_1")
	if _, err := f.svc.Confirm(context.Background(), ports.ConfirmInput{SessionID: "sess_1"}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	found, err := f.svc.ListByEmail(context.Background(), " Alice@Example.COM ")
	if err != nil {
		t.Fatalf("ListByEmail returned error: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(found))
	}
}
