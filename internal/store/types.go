package store

// ReviewStats aggregates all reviews of one book.
type ReviewStats struct {
	Count           int
	AvgStyle        float64
	AvgContent      float64
	AvgPleasantness float64
	AvgOriginality  float64
	AvgEdition      float64
	AvgFinal        float64
	// Distribution maps each occurring final score to its count,
	// in ascending score order.
	Distribution []ScoreCount
}

// ScoreCount is one histogram bucket of the final-score distribution.
type ScoreCount struct {
	Score int
	Count int
}

// SuggestionCount reports how many distinct users suggested one book
// for a given source book.
type SuggestionCount struct {
	SuggestedID int64
	Users       int
}
