package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/store"
	"github.com/bookrecapp/bookrec-server/internal/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestUser(t *testing.T, s store.Store, userID string) {
	t.Helper()
	err := s.CreateUser(context.Background(), &domain.User{
		UserID:       userID,
		PasswordHash: "hash-" + userID,
		FirstName:    "Test",
		LastName:     "User",
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
}

func createTestBook(t *testing.T, s store.Store, id int64, title string) {
	t.Helper()
	err := s.UpsertBook(context.Background(), &domain.Book{
		ID:      id,
		Title:   title,
		Authors: []string{"Author " + title},
		Year:    2000,
	})
	require.NoError(t, err)
}

// createOwnedBooks puts the given books in the catalog and in a library
// owned by the user.
func createOwnedBooks(t *testing.T, s store.Store, userID string, bookIDs ...int64) {
	t.Helper()
	for _, id := range bookIDs {
		createTestBook(t, s, id, "Book")
	}
	require.NoError(t, s.SaveLibrary(context.Background(), userID, "shelf", bookIDs))
}
