package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/bookrecapp/bookrec-server/internal/store"
)

// InsertSuggestions records suggestions of related books for a source book,
// all inside one transaction:
//
//   - the source book must appear in at least one of the user's libraries,
//   - suggested ids the user does not own are silently dropped,
//   - triples that already exist are ignored (idempotent insert).
//
// Returns true iff at least one suggested id survived the ownership filter,
// even when every surviving triple was already present. The caller is
// expected to have normalized suggestedIDs (no duplicates, no source id,
// at most three entries) beforehand.
func (s *Store) InsertSuggestions(ctx context.Context, userid string, bookID int64, suggestedIDs []int64) (bool, error) {
	if len(suggestedIDs) == 0 {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	owned, err := ownedBookIDs(ctx, tx, userid)
	if err != nil {
		return false, err
	}

	if _, ok := owned[bookID]; !ok {
		return false, nil // source book not owned
	}

	valid := make([]int64, 0, len(suggestedIDs))
	for _, id := range suggestedIDs {
		if _, ok := owned[id]; ok {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return false, nil
	}

	now := formatTime(time.Now())
	for _, id := range valid {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO suggestions (userid, book_id, suggested_id, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (userid, book_id, suggested_id) DO NOTHING`,
			userid, bookID, id, now); err != nil {
			return false, fmt.Errorf("insert suggestion %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// SuggestionStats returns, for a source book, how many distinct users
// suggested each related book, ordered by descending count with ties
// broken by ascending suggested id.
func (s *Store) SuggestionStats(ctx context.Context, bookID int64) ([]store.SuggestionCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT suggested_id, COUNT(DISTINCT userid) AS users
		FROM suggestions
		WHERE book_id = ?
		GROUP BY suggested_id
		ORDER BY users DESC, suggested_id ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []store.SuggestionCount{}
	for rows.Next() {
		var sc store.SuggestionCount
		if err := rows.Scan(&sc.SuggestedID, &sc.Users); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
