package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookrecapp/bookrec-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, userid string) {
	t.Helper()
	user := &domain.User{
		UserID:       userid,
		PasswordHash: "cafebabe",
		FirstName:    "Test",
		LastName:     "User",
		Email:        userid + "@example.com",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
}

func createTestBook(t *testing.T, s *Store, id int64, title string) {
	t.Helper()
	book := &domain.Book{
		ID:      id,
		Title:   title,
		Authors: []string{"Author " + title},
		Year:    2000,
	}
	require.NoError(t, s.UpsertBook(context.Background(), book))
}

// createOwnedBooks registers the books in the catalog and puts them in a
// library of the given user.
func createOwnedBooks(t *testing.T, s *Store, userid, libName string, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		createTestBook(t, s, id, "Book")
	}
	require.NoError(t, s.SaveLibrary(context.Background(), userid, libName, ids))
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify tables exist.
	tables := []string{"users", "books", "libraries", "library_books", "reviews", "suggestions"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	// library_books must reference both its parents: libraries by
	// surrogate id, books by catalog id.
	rows, err := s.db.Query("PRAGMA foreign_key_list(library_books)")
	if err != nil {
		t.Fatalf("query foreign_key_list: %v", err)
	}
	defer rows.Close()

	referenced := map[string]bool{}
	for rows.Next() {
		var (
			id, seq                            int
			table, from, to, onUpd, onDel, mtc string
		)
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpd, &onDel, &mtc); err != nil {
			t.Fatalf("scan foreign_key_list: %v", err)
		}
		referenced[table] = true
	}
	for _, table := range []string{"libraries", "books"} {
		if !referenced[table] {
			t.Errorf("library_books has no foreign key on %s", table)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	defer s2.Close()
}
