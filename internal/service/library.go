package service

import (
	"context"
	"log/slog"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/store"
)

// LibraryService manages per-user book libraries.
type LibraryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(s store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:  s,
		logger: logger,
	}
}

// List returns all libraries belonging to a user, ordered by name.
func (s *LibraryService) List(ctx context.Context, userID string) ([]*domain.Library, error) {
	if userID == "" {
		return nil, store.ErrInvalidInput.WithMessage("userid is required")
	}
	return s.store.ListLibraries(ctx, userID)
}

// Save replaces the contents of a named library with the given book set.
// Duplicate and non-positive ids are dropped, and ids not present in the
// catalog are silently discarded. The library is created on first save.
func (s *LibraryService) Save(ctx context.Context, userID, name string, bookIDs []int64) error {
	if userID == "" || name == "" {
		return store.ErrInvalidInput.WithMessage("userid and library name are required")
	}

	ids := domain.DedupeBookIDs(bookIDs)
	existing, err := s.store.FilterExistingBookIDs(ctx, ids)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to filter book ids", "error", err, "userid", userID)
		return err
	}
	if dropped := len(ids) - len(existing); dropped > 0 {
		s.logger.DebugContext(ctx, "dropped unknown book ids from library save",
			"userid", userID, "library", name, "dropped", dropped)
	}

	if err := s.store.SaveLibrary(ctx, userID, name, existing); err != nil {
		s.logger.ErrorContext(ctx, "failed to save library", "error", err, "userid", userID, "library", name)
		return err
	}

	s.logger.InfoContext(ctx, "library saved", "userid", userID, "library", name, "books", len(existing))
	return nil
}
