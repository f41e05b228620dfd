package domain

import "time"

// OrderStatus is the payment lifecycle of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// Order records a purchase request for a single book. AmountCents snapshots
// the book price at creation time; later catalog edits do not change it.
// UserEmail ties the order to its owner; deleting the user does not clean
// these up.
type Order struct {
	ID               string      `json:"id" bson:"_id,omitempty"`
	UserEmail        string      `json:"userEmail" bson:"userEmail"`
	BookID           string      `json:"bookId" bson:"bookId"`
	BookTitle        string      `json:"bookTitle" bson:"bookTitle"`
	Quantity         int         `json:"quantity" bson:"quantity"`
	AmountCents      int64       `json:"amountCents" bson:"amountCents"`
	Currency         string      `json:"currency" bson:"currency"`
	Status           OrderStatus `json:"status" bson:"status"`
	PaymentSessionID string      `json:"paymentSessionId,omitempty" bson:"paymentSessionId,omitempty"`
	CreatedAt        time.Time   `json:"createdAt" bson:"createdAt"`
	PaidAt           *time.Time  `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}
