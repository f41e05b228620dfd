package handler

import "github.com/bookhaven/library-system/internal/core/domain"

type bookRequest struct {
	Title       string `json:"title"       validate:"required,max=300"`
	Author      string `json:"author"      validate:"required,max=200"`
	Category    string `json:"category"    validate:"max=100"`
	PriceCents  int64  `json:"priceCents"  validate:"gte=0"`
	Currency    string `json:"currency"    validate:"omitempty,len=3"`
	Quantity    int    `json:"quantity"    validate:"gte=0"`
	ImageURL    string `json:"imageUrl"    validate:"omitempty,url"`
	Description string `json:"description" validate:"max=5000"`
}

type listBooksResponse struct {
	Items      []*domain.Book `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}
