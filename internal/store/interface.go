// Package store defines the persistence interface for the book recommender
// server. Implementations must make every method atomic with respect to
// concurrent callers: each call is a single transaction, and no isolation is
// promised across calls.
package store

import (
	"context"

	"github.com/bookrecapp/bookrec-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Users. Users are insert-only; they are never updated or deleted.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, userid string) (*domain.User, error)
	UserExists(ctx context.Context, userid string) (bool, error)

	// Catalog books. Written only by the catalog importer; the protocol
	// engine treats the catalog as read-only.
	UpsertBook(ctx context.Context, book *domain.Book) error
	// FilterExistingBookIDs returns the subset of ids present in the
	// catalog, preserving the input order.
	FilterExistingBookIDs(ctx context.Context, ids []int64) ([]int64, error)
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)

	// Libraries.
	// ListLibraries returns the user's libraries in name order, each with
	// its full book-id set in ascending id order.
	ListLibraries(ctx context.Context, userid string) ([]*domain.Library, error)
	// SaveLibrary replaces the persisted book-id set of (userid, name)
	// with exactly bookIDs, creating the library if needed. The delete
	// and insert happen in one transaction.
	SaveLibrary(ctx context.Context, userid, name string, bookIDs []int64) error
	// OwnedBookIDs returns the distinct book ids appearing in any of the
	// user's libraries.
	OwnedBookIDs(ctx context.Context, userid string) (map[int64]struct{}, error)

	// Reviews.
	// InsertReview checks, in one transaction, that the book belongs to
	// one of the reviewer's libraries and that no review by the same
	// (userid, book) pair exists, then inserts. It returns false with a
	// nil error when either check fails; the two causes are deliberately
	// indistinguishable.
	InsertReview(ctx context.Context, review *domain.Review) (bool, error)
	ReviewStats(ctx context.Context, bookID int64) (*ReviewStats, error)

	// Suggestions.
	// InsertSuggestions runs the ownership checks and idempotent inserts
	// of a suggestion submission in one transaction: the source book
	// must be owned, suggested ids not owned are silently dropped, and
	// already-present triples are ignored. Returns true iff at least one
	// suggested id survived the ownership filter.
	InsertSuggestions(ctx context.Context, userid string, bookID int64, suggestedIDs []int64) (bool, error)
	SuggestionStats(ctx context.Context, bookID int64) ([]SuggestionCount, error)
}
