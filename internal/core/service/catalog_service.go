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

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// CatalogService implements book catalog use cases.
type CatalogService struct {
	repo ports.BookRepository
	log  zerolog.Logger
}

func NewCatalogService(repo ports.BookRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

func (s *CatalogService) Create(ctx context.Context, in ports.BookInput) (*domain.Book, error) {
	now := time.Now().UTC()
	book := &domain.Book{
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Category:    strings.TrimSpace(in.Category),
		PriceCents:  in.PriceCents,
		Currency:    normalizeCurrency(in.Currency),
		Quantity:    in.Quantity,
		ImageURL:    in.ImageURL,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Insert(ctx, book)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.log.Info().Str("book_id", created.ID).Str("title", created.Title).Msg("book created")
	return created, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CatalogService) Update(ctx context.Context, id string, in ports.BookInput) (*domain.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	book.Title = strings.TrimSpace(in.Title)
	book.Author = strings.TrimSpace(in.Author)
	book.Category = strings.TrimSpace(in.Category)
	book.PriceCents = in.PriceCents
	book.Currency = normalizeCurrency(in.Currency)
	book.Quantity = in.Quantity
	book.ImageURL = in.ImageURL
	book.Description = in.Description
	book.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	s.log.Info().Str("book_id", id).Msg("book deleted")
	return nil
}

func (s *CatalogService) List(ctx context.Context, in ports.ListBooksInput) (*ports.ListBooksResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListBooksFilter{
		Category: strings.TrimSpace(in.Category),
		Search:   strings.TrimSpace(in.Search),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListBooksResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return "USD"
	}
	return c
}
