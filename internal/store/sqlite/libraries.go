package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/id"
	"github.com/bookrecapp/bookrec-server/internal/store"
)

// ListLibraries returns all libraries of a user in name order, each with
// its full book-id set in ascending id order.
func (s *Store) ListLibraries(ctx context.Context, userid string) ([]*domain.Library, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, userid, name, created_at, updated_at
		FROM libraries
		WHERE userid = ?
		ORDER BY name ASC`, userid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var libs []*domain.Library
	byID := make(map[string]*domain.Library)

	for rows.Next() {
		var lib domain.Library
		var createdAt, updatedAt string
		if err := rows.Scan(&lib.ID, &lib.UserID, &lib.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if lib.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if lib.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		lib.BookIDs = []int64{}
		libs = append(libs, &lib)
		byID[lib.ID] = &lib
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(libs) == 0 {
		return []*domain.Library{}, nil
	}

	bookRows, err := s.db.QueryContext(ctx, `
		SELECT lb.library_id, lb.book_id
		FROM library_books lb
		JOIN libraries l ON l.id = lb.library_id
		WHERE l.userid = ?
		ORDER BY lb.library_id, lb.book_id ASC`, userid)
	if err != nil {
		return nil, err
	}
	defer bookRows.Close()

	for bookRows.Next() {
		var libID string
		var bookID int64
		if err := bookRows.Scan(&libID, &bookID); err != nil {
			return nil, err
		}
		if lib, ok := byID[libID]; ok {
			lib.BookIDs = append(lib.BookIDs, bookID)
		}
	}
	return libs, bookRows.Err()
}

// SaveLibrary creates or updates the library identified by (userid, name),
// setting its persisted book-id set to exactly bookIDs. The old set is
// deleted and the new one inserted inside a single transaction, so readers
// never observe a partial replace. Concurrent saves of the same library are
// last-writer-wins.
func (s *Store) SaveLibrary(ctx context.Context, userid, name string, bookIDs []int64) error {
	if userid == "" || name == "" {
		return store.ErrInvalidInput.WithMessage("userid and name must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	libID, err := findOrCreateLibrary(ctx, tx, userid, name)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM library_books WHERE library_id = ?`, libID); err != nil {
		return fmt.Errorf("clear library books: %w", err)
	}

	for _, bookID := range bookIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO library_books (library_id, book_id) VALUES (?, ?)`,
			libID, bookID); err != nil {
			return fmt.Errorf("insert library book %d: %w", bookID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE libraries SET updated_at = ? WHERE id = ?`,
		formatTime(time.Now()), libID); err != nil {
		return fmt.Errorf("touch library: %w", err)
	}

	return tx.Commit()
}

// findOrCreateLibrary resolves the surrogate id of (userid, name),
// creating the library row if it does not exist yet.
func findOrCreateLibrary(ctx context.Context, tx *sql.Tx, userid, name string) (string, error) {
	var libID string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM libraries WHERE userid = ? AND name = ?`, userid, name).Scan(&libID)
	if err == nil {
		return libID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	libID, err = id.Generate("lib")
	if err != nil {
		return "", err
	}
	now := formatTime(time.Now())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO libraries (id, userid, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		libID, userid, name, now, now); err != nil {
		return "", fmt.Errorf("create library: %w", err)
	}
	return libID, nil
}

// OwnedBookIDs returns the distinct book ids present in any of the user's
// libraries.
func (s *Store) OwnedBookIDs(ctx context.Context, userid string) (map[int64]struct{}, error) {
	return ownedBookIDs(ctx, s.db, userid)
}

// querier is the querying subset shared by *sql.DB and *sql.Tx, so the
// owned-set load can run standalone or inside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func ownedBookIDs(ctx context.Context, q querier, userid string) (map[int64]struct{}, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT DISTINCT lb.book_id
		FROM library_books lb
		JOIN libraries l ON l.id = lb.library_id
		WHERE l.userid = ?`, userid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owned := make(map[int64]struct{})
	for rows.Next() {
		var bookID int64
		if err := rows.Scan(&bookID); err != nil {
			return nil, err
		}
		owned[bookID] = struct{}{}
	}
	return owned, rows.Err()
}
