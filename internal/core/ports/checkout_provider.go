package ports

// CheckoutSessionInput is the payload sent to the hosted payment provider
// when opening a checkout session.
type CheckoutSessionInput struct {
	// ReferenceID is our order id, echoed back by the provider.
	ReferenceID   string
	CustomerEmail string
	AmountCents   int64
	Currency      string
	Description   string
}

// CheckoutSession is the provider's handle for a hosted payment page.
type CheckoutSession struct {
	ID  string
	URL string
}
