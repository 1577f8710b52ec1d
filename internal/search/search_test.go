package search

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookrecapp/bookrec-server/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(Options{
		DataPath: t.TempDir(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func testCatalog() []*domain.Book {
	return []*domain.Book{
		{ID: 1, Title: "Il Nome della Rosa", Authors: []string{"Umberto Eco"}, Year: 1980},
		{ID: 2, Title: "Foucault's Pendulum", Authors: []string{"Umberto Eco"}, Year: 1988},
		{ID: 3, Title: "The Name of the Wind", Authors: []string{"Patrick Rothfuss"}, Year: 2007},
		{ID: 4, Title: "La Divina Commedia", Authors: []string{"Dante Alighieri"}},
	}
}

func TestRebuildAndDocCount(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Rebuild(testCatalog()))

	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)
}

func TestSearchTitle_SubstringCaseInsensitive(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Rebuild(testCatalog()))
	ctx := context.Background()

	hits, err := idx.SearchTitle(ctx, "name")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(1), hits[0].ID) // ascending id order
	assert.Equal(t, int64(3), hits[1].ID)

	hits, err = idx.SearchTitle(ctx, "NAME")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = idx.SearchTitle(ctx, "pendulum")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Foucault's Pendulum", hits[0].Title)
	assert.Equal(t, "Umberto Eco", hits[0].Authors)
	assert.Equal(t, 1988, hits[0].Year)
}

func TestSearchTitle_WildcardCharactersAreLiteral(t *testing.T) {
	idx := newTestIndex(t)
	catalog := append(testCatalog(),
		&domain.Book{ID: 5, Title: "What? A History of Questions", Authors: []string{"Ann Author"}, Year: 2001})
	require.NoError(t, idx.Rebuild(catalog))
	ctx := context.Background()

	// '?' matches itself, not an arbitrary character
	hits, err := idx.SearchTitle(ctx, "what?")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(5), hits[0].ID)

	// no title contains a literal "n?me"
	hits, err = idx.SearchTitle(ctx, "n?me")
	require.NoError(t, err)
	assert.Empty(t, hits)

	// '*' does not act as a glob either
	hits, err = idx.SearchTitle(ctx, "name*wind")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchTitle_NoMatch(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Rebuild(testCatalog()))

	hits, err := idx.SearchTitle(context.Background(), "zzzzz")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchAuthor(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Rebuild(testCatalog()))

	hits, err := idx.SearchAuthor(context.Background(), "eco")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(1), hits[0].ID)
	assert.Equal(t, int64(2), hits[1].ID)
}

func TestSearchAuthorYear(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Rebuild(testCatalog()))
	ctx := context.Background()

	hits, err := idx.SearchAuthorYear(ctx, "eco", 1980)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(1), hits[0].ID)

	hits, err = idx.SearchAuthorYear(ctx, "eco", 1999)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexBook_Update(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Rebuild(testCatalog()))

	require.NoError(t, idx.IndexBook(&domain.Book{
		ID: 1, Title: "Renamed Rose", Authors: []string{"Umberto Eco"}, Year: 1980,
	}))

	hits, err := idx.SearchTitle(context.Background(), "renamed")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(1), hits[0].ID)

	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n, "reindexing an existing id must not grow the index")
}

func TestNew_ReopenExisting(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	idx, err := New(Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	require.NoError(t, idx.Rebuild(testCatalog()))
	require.NoError(t, idx.Close())

	idx2, err := New(Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	defer idx2.Close()

	n, err := idx2.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)
}
