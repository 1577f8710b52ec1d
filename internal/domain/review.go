package domain

import (
	"math"
	"time"
)

// Score bounds for every review criterion and for the final score.
const (
	MinScore = 1
	MaxScore = 5
)

// MaxCommentLength is the maximum length of a review comment in characters.
const MaxCommentLength = 256

// Review is a single user's rating of a book across five criteria.
// At most one review exists per (UserID, BookID) pair.
type Review struct {
	UserID       string    `json:"userid"`
	BookID       int64     `json:"book_id"`
	Style        int       `json:"style"`
	Content      int       `json:"content"`
	Pleasantness int       `json:"pleasantness"`
	Originality  int       `json:"originality"`
	Edition      int       `json:"edition"`
	FinalScore   int       `json:"final_score"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ComputeFinalScore derives the final score as the rounded arithmetic mean
// of the five criterion scores. For in-range inputs the result is always
// within [MinScore, MaxScore].
func (r *Review) ComputeFinalScore() int {
	sum := r.Style + r.Content + r.Pleasantness + r.Originality + r.Edition
	return int(math.Round(float64(sum) / 5.0))
}

// ScoresInRange reports whether all five criterion scores are within
// [MinScore, MaxScore].
func (r *Review) ScoresInRange() bool {
	for _, s := range []int{r.Style, r.Content, r.Pleasantness, r.Originality, r.Edition} {
		if s < MinScore || s > MaxScore {
			return false
		}
	}
	return true
}
