package domain

import "time"

// MaxSuggestionsPerBook is the maximum number of suggested ids retained
// from a single submission.
const MaxSuggestionsPerBook = 3

// Suggestion records that a user suggested one book as related to another.
// The (UserID, BookID, SuggestedID) triple is unique; resubmitting an
// existing one is a no-op.
type Suggestion struct {
	UserID      string    `json:"userid"`
	BookID      int64     `json:"book_id"`      // source book
	SuggestedID int64     `json:"suggested_id"` // suggested related book
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeSuggestedIDs cleans a caller-submitted suggestion list:
// duplicates are removed keeping first-seen order, non-positive ids and the
// source id itself are dropped, and the result is truncated to
// MaxSuggestionsPerBook entries. Ownership filtering happens later, against
// the store.
func NormalizeSuggestedIDs(sourceID int64, ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, MaxSuggestionsPerBook)
	for _, id := range ids {
		if id <= 0 || id == sourceID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == MaxSuggestionsPerBook {
			break
		}
	}
	return out
}
