package domain

import "time"

// Book is a catalog entry. Price is stored in minor units to avoid floating
// point drift on order snapshots.
type Book struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Author      string    `json:"author" bson:"author"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	PriceCents  int64     `json:"priceCents" bson:"priceCents"`
	Currency    string    `json:"currency" bson:"currency"`
	Quantity    int       `json:"quantity" bson:"quantity"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}
