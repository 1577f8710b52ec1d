package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookrecapp/bookrec-server/internal/store"
)

func countSuggestions(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM suggestions`).Scan(&n))
	return n
}

func TestInsertSuggestions_Success(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "alice")
	createOwnedBooks(t, s, "alice", "favs", 7, 9, 12)

	ok, err := s.InsertSuggestions(ctx, "alice", 7, []int64{9, 12})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, countSuggestions(t, s))
}

func TestInsertSuggestions_EmptyList(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.InsertSuggestions(context.Background(), "alice", 7, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInsertSuggestions_SourceNotOwned(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "alice")
	createOwnedBooks(t, s, "alice", "favs", 9)

	ok, err := s.InsertSuggestions(ctx, "alice", 7, []int64{9})
	require.NoError(t, err)
	assert.False(t, ok, "source book outside the user's libraries must abort")
	assert.Zero(t, countSuggestions(t, s))
}

func TestInsertSuggestions_UnownedIDsSilentlyDropped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "alice")
	createOwnedBooks(t, s, "alice", "favs", 7, 9)
	createTestBook(t, s, 3, "Unowned")

	// 3 exists in the catalog but not in alice's libraries: dropped, 9 kept.
	ok, err := s.InsertSuggestions(ctx, "alice", 7, []int64{9, 3})
	require.NoError(t, err)
	assert.True(t, ok, "partial acceptance: success when at least one id survives")
	assert.Equal(t, 1, countSuggestions(t, s))

	stats, err := s.SuggestionStats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []store.SuggestionCount{{SuggestedID: 9, Users: 1}}, stats)
}

func TestInsertSuggestions_AllUnowned(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "alice")
	createOwnedBooks(t, s, "alice", "favs", 7)

	ok, err := s.InsertSuggestions(ctx, "alice", 7, []int64{3, 4})
	require.NoError(t, err)
	assert.False(t, ok, "no id surviving the ownership filter must abort")
	assert.Zero(t, countSuggestions(t, s))
}

func TestInsertSuggestions_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "alice")
	createOwnedBooks(t, s, "alice", "favs", 7, 9)

	ok, err := s.InsertSuggestions(ctx, "alice", 7, []int64{9})
	require.NoError(t, err)
	require.True(t, ok)

	// Resubmitting an existing triple reports success without writing.
	ok, err = s.InsertSuggestions(ctx, "alice", 7, []int64{9})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, countSuggestions(t, s))
}

func TestSuggestionStats_Ordering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Three users all own books 7, 9, 12, 15.
	createTestBook(t, s, 7, "Source")
	createTestBook(t, s, 9, "Nine")
	createTestBook(t, s, 12, "Twelve")
	createTestBook(t, s, 15, "Fifteen")
	for _, u := range []string{"u1", "u2", "u3"} {
		createTestUser(t, s, u)
		require.NoError(t, s.SaveLibrary(ctx, u, "lib", []int64{7, 9, 12, 15}))
	}

	mustSuggest := func(userid string, ids ...int64) {
		ok, err := s.InsertSuggestions(ctx, userid, 7, ids)
		require.NoError(t, err)
		require.True(t, ok)
	}

	mustSuggest("u1", 9, 12)
	mustSuggest("u2", 12, 15)
	mustSuggest("u3", 12)

	stats, err := s.SuggestionStats(ctx, 7)
	require.NoError(t, err)
	// 12 suggested by three users; 9 and 15 by one each, tie broken by id.
	assert.Equal(t, []store.SuggestionCount{
		{SuggestedID: 12, Users: 3},
		{SuggestedID: 9, Users: 1},
		{SuggestedID: 15, Users: 1},
	}, stats)
}

func TestSuggestionStats_Empty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.SuggestionStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, stats)
}
