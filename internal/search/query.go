package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// MaxResults caps the number of hits returned per search.
const MaxResults = 100

// BookHit is one search result with the fields needed for a result line.
type BookHit struct {
	ID      int64
	Title   string
	Authors string // comma-joined author list
	Year    int    // 0 = unknown
}

// SearchTitle returns catalog books whose title contains the given
// substring, case-insensitively, in ascending id order.
func (i *Index) SearchTitle(ctx context.Context, substr string) ([]BookHit, error) {
	return i.run(ctx, substringQuery("title_exact", substr))
}

// SearchAuthor returns catalog books with at least one author containing
// the given substring, case-insensitively, in ascending id order.
func (i *Index) SearchAuthor(ctx context.Context, substr string) ([]BookHit, error) {
	return i.run(ctx, substringQuery("authors_exact", substr))
}

// SearchAuthorYear restricts an author search to an exact publication year.
func (i *Index) SearchAuthorYear(ctx context.Context, author string, year int) ([]BookHit, error) {
	y := float64(year)
	inclusive := true
	yearQuery := bleve.NewNumericRangeInclusiveQuery(&y, &y, &inclusive, &inclusive)
	yearQuery.SetField("year")

	return i.run(ctx, bleve.NewConjunctionQuery(substringQuery("authors_exact", author), yearQuery))
}

// wildcardEscaper neutralizes wildcard metacharacters in user input so a
// query string is always matched as a literal substring.
var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// substringQuery matches fields whose lowercased whole value contains
// substr, taken literally. The field must use the keyword_lower analyzer.
func substringQuery(field, substr string) query.Query {
	q := bleve.NewWildcardQuery("*" + wildcardEscaper.Replace(strings.ToLower(substr)) + "*")
	q.SetField(field)
	return q
}

func (i *Index) run(ctx context.Context, q query.Query) ([]BookHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(q, MaxResults, 0, false)
	req.Fields = []string{"title", "authors", "year"}

	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]BookHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed doc id %q: %w", hit.ID, err)
		}

		h := BookHit{ID: id}
		if title, ok := hit.Fields["title"].(string); ok {
			h.Title = title
		}
		if authors, ok := hit.Fields["authors"].(string); ok {
			h.Authors = authors
		}
		if year, ok := hit.Fields["year"].(float64); ok {
			h.Year = int(year)
		}
		hits = append(hits, h)
	}

	// Results go out in ascending id order, independent of bleve scoring.
	sort.Slice(hits, func(a, b int) bool { return hits[a].ID < hits[b].ID })
	return hits, nil
}
