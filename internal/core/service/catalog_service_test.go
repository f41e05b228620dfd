package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bookhaven/library-system/internal/core/domain"
	"github.com/bookhaven/library-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubBookRepo struct {
	byID   map[string]*domain.Book
	nextID int

	listErr error // if set, List returns this error
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{byID: make(map[string]*domain.Book)}
}

func cloneBook(b *domain.Book) *domain.Book {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

func (r *stubBookRepo) Insert(_ context.Context, b *domain.Book) (*domain.Book, error) {
	copy := cloneBook(b)
	r.nextID++
	copy.ID = fmt.Sprintf("b%d", r.nextID)
	r.byID[copy.ID] = cloneBook(copy)
	return cloneBook(copy), nil
}

func (r *stubBookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	return cloneBook(b), nil
}

func (r *stubBookRepo) Update(_ context.Context, b *domain.Book) error {
	if _, ok := r.byID[b.ID]; !ok {
		return domain.ErrBookNotFound
	}
	r.byID[b.ID] = cloneBook(b)
	return nil
}

func (r *stubBookRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.byID, id)
	return nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubBookRepo) List(_ context.Context, f ports.ListBooksFilter) ([]*domain.Book, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}

	var matched []*domain.Book
	for _, b := range r.byID {
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		if f.Search != "" {
			titleMatch := strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Search))
			authorMatch := strings.Contains(strings.ToLower(b.Author), strings.ToLower(f.Search))
			if !titleMatch && !authorMatch {
				continue
			}
		}
		matched = append(matched, cloneBook(b))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))

	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		return []*domain.Book{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func newCatalogSvc(repo *stubBookRepo) *CatalogService {
	return NewCatalogService(repo, zerolog.Nop())
}

func seedBooks(repo *stubBookRepo, n int, category string) {
	for i := 0; i < n; i++ {
		_, _ = repo.Insert(context.Background(), &domain.Book{
			Title:      fmt.Sprintf("Book %02d", i),
			Author:     "Author",
			Category:   category,
			PriceCents: 1500,
			Currency:   "USD",
			Quantity:   3,
		})
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCatalogService_Create_Defaults(t *testing.T) {
	repo := newStubBookRepo()
	svc := newCatalogSvc(repo)

	book, err := svc.Create(context.Background(), ports.BookInput{
		Title:      "  The Go Programming Language ",
		Author:     "Donovan",
		PriceCents: 3999,
		Currency:   "usd",
		Quantity:   5,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if book.Title != "The Go Programming Language" {
		t.Errorf("expected trimmed title, got %q", book.Title)
	}
	if book.Currency != "USD" {
		t.Errorf("expected uppercased currency, got %q", book.Currency)
	}
	if book.CreatedAt.IsZero() || book.UpdatedAt.IsZero() {
		t.Errorf("expected timestamps set")
	}
}

func TestCatalogService_Create_EmptyCurrencyDefaultsUSD(t *testing.T) {
	repo := newStubBookRepo()
	svc := newCatalogSvc(repo)

	book, err := svc.Create(context.Background(), ports.BookInput{Title: "X", Author: "Y", PriceCents: 100})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if book.Currency != "USD" {
		t.Errorf("expected USD default, got %q", book.Currency)
	}
}

func TestCatalogService_Update_NotFound(t *testing.T) {
	repo := newStubBookRepo()
	svc := newCatalogSvc(repo)

	if _, err := svc.Update(context.Background(), "missing", ports.BookInput{Title: "X"}); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestCatalogService_Update_ReplacesFields(t *testing.T) {
	repo := newStubBookRepo()
	svc := newCatalogSvc(repo)

	created, _ := svc.Create(context.Background(), ports.BookInput{Title: "Old", Author: "A", PriceCents: 100, Quantity: 1})

	updated, err := svc.Update(context.Background(), created.ID, ports.BookInput{Title: "New", Author: "B", PriceCents: 200, Quantity: 2})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != "New" || updated.PriceCents != 200 {
		t.Errorf("unexpected updated book: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && updated.UpdatedAt != created.UpdatedAt {
		t.Errorf("expected UpdatedAt refreshed")
	}

	stored, _ := svc.Get(context.Background(), created.ID)
	if stored.Title != "New" {
		t.Errorf("update not persisted, got %q", stored.Title)
	}
}

func TestCatalogService_List_Pagination(t *testing.T) {
	repo := newStubBookRepo()
	svc := newCatalogSvc(repo)
	seedBooks(repo, 25, "fiction")

	res, err := svc.List(context.Background(), ports.ListBooksInput{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if res.Total != 25 {
		t.Errorf("expected total 25, got %d", res.Total)
	}
	if len(res.Items) != 10 {
		t.Errorf("expected 10 items on page 2, got %d", len(res.Items))
	}
	if res.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", res.TotalPages)
	}
}

func TestCatalogService_List_ClampsLimits(t *testing.T) {
	repo := newStubBookRepo()
	svc := newCatalogSvc(repo)
	seedBooks(repo, 5, "tech")

	res, err := svc.List(context.Background(), ports.ListBooksInput{Page: -3, Limit: 100000})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if res.Page != 1 {
		t.Errorf("expected page clamped to 1, got %d", res.Page)
	}
	if res.Limit != maxPageLimit {
		t.Errorf("expected limit clamped to %d, got %d", maxPageLimit, res.Limit)
	}
}

func TestCatalogService_List_CategoryFilter(t *testing.T) {
	repo := newStubBookRepo()
	svc := newCatalogSvc(repo)
	seedBooks(repo, 3, "fiction")
	seedBooks(repo, 2, "tech")

	res, err := svc.List(context.Background(), ports.ListBooksInput{Category: "tech"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("expected 2 tech books, got %d", res.Total)
	}
}

func TestCatalogService_Delete_NotFound(t *testing.T) {
	repo := newStubBookRepo()
	svc := newCatalogSvc(repo)

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}
