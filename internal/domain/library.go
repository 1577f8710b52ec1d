package domain

import (
	"slices"
	"time"
)

// Library is a named set of catalog book ids owned by a single user.
// The (UserID, Name) pair is the natural key; ID is a storage surrogate.
type Library struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userid"`
	Name      string    `json:"name"`
	BookIDs   []int64   `json:"book_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether the library holds the given book id.
func (l *Library) Contains(bookID int64) bool {
	return slices.Contains(l.BookIDs, bookID)
}

// DedupeBookIDs removes duplicate and non-positive ids from ids,
// preserving first-seen order. Used when parsing caller-submitted id lists.
func DedupeBookIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
