package domain

import "time"

// Payment is the record written when a hosted checkout session completes.
// SessionID is the provider's session identifier and is the key for the
// duplicate-check read that guards replayed confirmations.
type Payment struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	SessionID   string    `json:"sessionId" bson:"sessionId"`
	OrderID     string    `json:"orderId" bson:"orderId"`
	UserEmail   string    `json:"userEmail" bson:"userEmail"`
	AmountCents int64     `json:"amountCents" bson:"amountCents"`
	Currency    string    `json:"currency" bson:"currency"`
	Provider    string    `json:"provider" bson:"provider"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
