package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/store"
)

// InsertReview inserts a review after confirming, within one transaction,
// that the book belongs to at least one of the reviewer's libraries and
// that the (userid, book) pair has not been reviewed before. Returns false
// with a nil error when either check fails; the primary key on
// (userid, book_id) is the backstop for concurrent duplicate inserts.
func (s *Store) InsertReview(ctx context.Context, review *domain.Review) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `
		SELECT 1
		FROM library_books lb
		JOIN libraries l ON l.id = lb.library_id
		WHERE l.userid = ? AND lb.book_id = ?
		LIMIT 1`, review.UserID, review.BookID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil // book not owned
	}
	if err != nil {
		return false, err
	}

	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM reviews WHERE userid = ? AND book_id = ?`,
		review.UserID, review.BookID).Scan(&one)
	if err == nil {
		return false, nil // already reviewed
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	createdAt := review.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews
			(userid, book_id, style, content, pleasantness, originality, edition, final_score, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		review.UserID,
		review.BookID,
		review.Style,
		review.Content,
		review.Pleasantness,
		review.Originality,
		review.Edition,
		review.FinalScore,
		review.Comment,
		formatTime(createdAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// ReviewStats aggregates all reviews of a book: count, per-criterion
// averages and the final-score distribution in ascending score order.
// A book with no reviews yields Count 0 and an empty distribution.
func (s *Store) ReviewStats(ctx context.Context, bookID int64) (*store.ReviewStats, error) {
	stats := &store.ReviewStats{Distribution: []store.ScoreCount{}}

	var count int
	var avgStyle, avgContent, avgPleasantness sql.NullFloat64
	var avgOriginality, avgEdition, avgFinal sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       AVG(style), AVG(content), AVG(pleasantness),
		       AVG(originality), AVG(edition), AVG(final_score)
		FROM reviews
		WHERE book_id = ?`, bookID).Scan(
		&count, &avgStyle, &avgContent, &avgPleasantness,
		&avgOriginality, &avgEdition, &avgFinal)
	if err != nil {
		return nil, err
	}

	stats.Count = count
	if count == 0 {
		return stats, nil
	}

	stats.AvgStyle = avgStyle.Float64
	stats.AvgContent = avgContent.Float64
	stats.AvgPleasantness = avgPleasantness.Float64
	stats.AvgOriginality = avgOriginality.Float64
	stats.AvgEdition = avgEdition.Float64
	stats.AvgFinal = avgFinal.Float64

	rows, err := s.db.QueryContext(ctx, `
		SELECT final_score, COUNT(*)
		FROM reviews
		WHERE book_id = ?
		GROUP BY final_score
		ORDER BY final_score ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sc store.ScoreCount
		if err := rows.Scan(&sc.Score, &sc.Count); err != nil {
			return nil, err
		}
		stats.Distribution = append(stats.Distribution, sc)
	}
	return stats, rows.Err()
}
