package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"
	"strings"

	"github.com/bookrecapp/bookrec-server/internal/domain"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, authors, year, publisher, category`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book
	var (
		authorsJSON string
		year        sql.NullInt64
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&authorsJSON,
		&year,
		&b.Publisher,
		&b.Category,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &b.Authors); err != nil {
		return nil, fmt.Errorf("parse authors for book %d: %w", b.ID, err)
	}

	if year.Valid {
		b.Year = int(year.Int64)
	}

	return &b, nil
}

// UpsertBook inserts or replaces a catalog book. Only the seed importer
// calls this; the protocol engine never mutates the catalog.
func (s *Store) UpsertBook(ctx context.Context, book *domain.Book) error {
	authorsJSON, err := json.Marshal(book.Authors)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, authors, year, publisher, category)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			year = excluded.year,
			publisher = excluded.publisher,
			category = excluded.category`,
		book.ID,
		book.Title,
		string(authorsJSON),
		nullInt(book.Year),
		book.Publisher,
		book.Category,
	)
	return err
}

// FilterExistingBookIDs returns the subset of ids present in the catalog,
// preserving the input order.
func (s *Store) FilterExistingBookIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM books WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]int64, 0, len(existing))
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// ListAllBooks returns the whole catalog in id order.
// Used to build the search index.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CountBooks returns the catalog size.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}
