// Package domain contains the core entities of the book recommender:
// users, catalog books, libraries, reviews and suggestions.
package domain

import "strings"

// Book is a catalog entry. The catalog is loaded once by the seed command
// and is read-only as far as the protocol engine is concerned.
type Book struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Year      int      `json:"year,omitempty"` // 0 = unknown
	Publisher string   `json:"publisher,omitempty"`
	Category  string   `json:"category,omitempty"`
}

// AuthorsJoined returns the author list as a single comma-joined string,
// the form used on the wire and in the search index.
func (b *Book) AuthorsJoined() string {
	return strings.Join(b.Authors, ", ")
}
