package ports

import (
	"context"

	"github.com/bookhaven/library-system/internal/core/domain"
)

// BookInput carries the fields a librarian can set on a catalog entry.
type BookInput struct {
	Title       string
	Author      string
	Category    string
	PriceCents  int64
	Currency    string
	Quantity    int
	ImageURL    string
	Description string
}

// ListBooksInput carries the catalog listing parameters.
type ListBooksInput struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ListBooksResult is a page of catalog entries.
type ListBooksResult struct {
	Items      []*domain.Book
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CatalogService defines use-case operations for the book catalog.
type CatalogService interface {
	Create(ctx context.Context, in BookInput) (*domain.Book, error)
	Get(ctx context.Context, id string) (*domain.Book, error)
	Update(ctx context.Context, id string, in BookInput) (*domain.Book, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, in ListBooksInput) (*ListBooksResult, error)
}
