package service

import (
	"context"
	"log/slog"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/store"
)

// SuggestionService handles suggestion submission and suggestion counts.
type SuggestionService struct {
	store  store.Store
	logger *slog.Logger
}

// NewSuggestionService creates a new suggestion service.
func NewSuggestionService(s store.Store, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{
		store:  s,
		logger: logger,
	}
}

// Add records up to three suggested books for a source book. The suggested
// ids are deduplicated and cleaned before submission; ids the user does not
// own are silently dropped. It returns false with a nil error when nothing
// was accepted.
func (s *SuggestionService) Add(ctx context.Context, userID string, bookID int64, suggestedIDs []int64) (bool, error) {
	if userID == "" || bookID <= 0 {
		return false, nil
	}

	ids := domain.NormalizeSuggestedIDs(bookID, suggestedIDs)
	if len(ids) == 0 {
		return false, nil
	}

	ok, err := s.store.InsertSuggestions(ctx, userID, bookID, ids)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to insert suggestions", "error", err, "userid", userID, "book_id", bookID)
		return false, err
	}
	if !ok {
		s.logger.DebugContext(ctx, "suggestions rejected", "userid", userID, "book_id", bookID)
	}
	return ok, nil
}

// Stats returns, for each book suggested alongside the given one, how many
// distinct users suggested it.
func (s *SuggestionService) Stats(ctx context.Context, bookID int64) ([]store.SuggestionCount, error) {
	if bookID <= 0 {
		return nil, store.ErrInvalidInput.WithMessage("book id must be positive")
	}
	return s.store.SuggestionStats(ctx, bookID)
}
