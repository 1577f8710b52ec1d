package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/store"
)

// ReviewService handles review submission and aggregate review statistics.
type ReviewService struct {
	store  store.Store
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(s store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:  s,
		logger: logger,
	}
}

// AddReviewRequest carries a single review submission. Each score must be
// between 1 and 5, and the comment is limited to 256 characters.
type AddReviewRequest struct {
	UserID       string `json:"userid" validate:"required"`
	BookID       int64  `json:"book_id" validate:"required,gt=0"`
	Style        int    `json:"style" validate:"min=1,max=5"`
	Content      int    `json:"content" validate:"min=1,max=5"`
	Pleasantness int    `json:"pleasantness" validate:"min=1,max=5"`
	Originality  int    `json:"originality" validate:"min=1,max=5"`
	Edition      int    `json:"edition" validate:"min=1,max=5"`
	Comment      string `json:"comment" validate:"max=256"`
}

// Add records a review after checking that the book is in one of the
// user's libraries and that the user has not already reviewed it. The
// final score is derived from the five category scores. It returns false
// with a nil error when the submission is rejected.
func (s *ReviewService) Add(ctx context.Context, req AddReviewRequest) (bool, error) {
	if err := validate.Struct(req); err != nil {
		s.logger.DebugContext(ctx, "review rejected by validation", "error", err, "userid", req.UserID)
		return false, nil
	}

	review := &domain.Review{
		UserID:       req.UserID,
		BookID:       req.BookID,
		Style:        req.Style,
		Content:      req.Content,
		Pleasantness: req.Pleasantness,
		Originality:  req.Originality,
		Edition:      req.Edition,
		Comment:      req.Comment,
		CreatedAt:    time.Now(),
	}
	review.FinalScore = review.ComputeFinalScore()

	ok, err := s.store.InsertReview(ctx, review)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to insert review", "error", err, "userid", req.UserID, "book_id", req.BookID)
		return false, err
	}
	if !ok {
		s.logger.DebugContext(ctx, "review rejected", "userid", req.UserID, "book_id", req.BookID)
	}
	return ok, nil
}

// Stats returns the aggregate review statistics for a book.
func (s *ReviewService) Stats(ctx context.Context, bookID int64) (*store.ReviewStats, error) {
	if bookID <= 0 {
		return nil, store.ErrInvalidInput.WithMessage("book id must be positive")
	}
	return s.store.ReviewStats(ctx, bookID)
}
