package ports

import (
	"context"

	"github.com/bookhaven/library-system/internal/core/domain"
)

// ListBooksFilter carries query parameters for the catalog listing.
type ListBooksFilter struct {
	Category string // optional: exact match
	Search   string // optional: partial match on title or author
	Page     int    // 1-based
	Limit    int    // rows per page, capped by the service
}

// BookRepository defines persistence operations for catalog entries.
type BookRepository interface {
	Insert(ctx context.Context, b *domain.Book) (*domain.Book, error)
	// FindByID returns domain.ErrBookNotFound when no entry exists.
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	// Update replaces the mutable fields of an entry by id.
	Update(ctx context.Context, b *domain.Book) error
	Delete(ctx context.Context, id string) error
	// List returns a page of entries matching filter and the total count.
	List(ctx context.Context, filter ListBooksFilter) ([]*domain.Book, int64, error)
}
