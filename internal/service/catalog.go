package service

import (
	"context"
	"log/slog"

	"github.com/bookrecapp/bookrec-server/internal/search"
)

// CatalogService answers book search queries against the search index.
type CatalogService struct {
	index  *search.Index
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(index *search.Index, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		index:  index,
		logger: logger,
	}
}

// SearchTitle returns catalog books whose title contains the query,
// case-insensitively.
func (s *CatalogService) SearchTitle(ctx context.Context, query string) ([]search.BookHit, error) {
	return s.index.SearchTitle(ctx, query)
}

// SearchAuthor returns catalog books with an author containing the query,
// case-insensitively.
func (s *CatalogService) SearchAuthor(ctx context.Context, author string) ([]search.BookHit, error) {
	return s.index.SearchAuthor(ctx, author)
}

// SearchAuthorYear narrows an author search to a publication year.
func (s *CatalogService) SearchAuthorYear(ctx context.Context, author string, year int) ([]search.BookHit, error) {
	return s.index.SearchAuthorYear(ctx, author, year)
}
