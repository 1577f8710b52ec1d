package server

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/protocol"
	"github.com/bookrecapp/bookrec-server/internal/search"
	"github.com/bookrecapp/bookrec-server/internal/service"
	"github.com/bookrecapp/bookrec-server/internal/store/sqlite"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	s, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	idx, err := search.New(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	ctx := context.Background()
	books := []*domain.Book{
		{ID: 3, Title: "Il Barone Rampante", Authors: []string{"Italo Calvino"}, Year: 1957},
		{ID: 7, Title: "Il Nome della Rosa", Authors: []string{"Umberto Eco"}, Year: 1980},
		{ID: 9, Title: "Il Pendolo di Foucault", Authors: []string{"Umberto Eco"}, Year: 1988},
	}
	for _, b := range books {
		require.NoError(t, s.UpsertBook(ctx, b))
	}
	require.NoError(t, idx.Rebuild(books))

	handler := protocol.NewHandler(
		service.NewAuthService(s, logger),
		service.NewLibraryService(s, logger),
		service.NewReviewService(s, logger),
		service.NewSuggestionService(s, logger),
		service.NewCatalogService(idx, logger),
		logger,
	)

	srv := New(Options{
		Addr:    "127.0.0.1:0",
		Banner:  "Benvenuto nel BookRecommenderServer",
		Handler: handler,
		Logger:  logger,
	})
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	return srv
}

type testClient struct {
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, srv *Server) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))
	return &testClient{conn: conn, reader: bufio.NewReader(conn)}
}

func (c *testClient) readLine(t *testing.T) string {
	t.Helper()
	line, err := c.reader.ReadString('\n')
	require.NoError(t, err)
	return line[:len(line)-1]
}

func (c *testClient) send(t *testing.T, line string) {
	t.Helper()
	_, err := c.conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
}

func (c *testClient) roundTrip(t *testing.T, line string, wantLines int) []string {
	t.Helper()
	c.send(t, line)
	out := make([]string, 0, wantLines)
	for range wantLines {
		out = append(out, c.readLine(t))
	}
	return out
}

func TestServerGreetingAndPing(t *testing.T) {
	srv := newTestServer(t)
	c := dial(t, srv)

	assert.Equal(t, "OK Benvenuto nel BookRecommenderServer", c.readLine(t))
	assert.Equal(t, []string{"PONG"}, c.roundTrip(t, "PING", 1))
	assert.Equal(t, []string{"ERR Comando non riconosciuto."}, c.roundTrip(t, "BOGUS", 1))
	// blank lines produce no response and the connection keeps reading
	c.send(t, "")
	// the connection also survives an unrecognized command
	assert.Equal(t, []string{"PONG"}, c.roundTrip(t, "ping", 1))
}

func TestServerQuitClosesConnection(t *testing.T) {
	srv := newTestServer(t)
	c := dial(t, srv)
	c.readLine(t)

	assert.Equal(t, []string{"BYE"}, c.roundTrip(t, "QUIT", 1))

	_, err := c.reader.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)
}

// A registered user builds a library, reviews a book and reads the stats
// back, all over one connection.
func TestServerReviewScenario(t *testing.T) {
	srv := newTestServer(t)
	c := dial(t, srv)
	c.readLine(t)

	assert.Equal(t, []string{"OK REGISTER"},
		c.roundTrip(t, "REGISTER:alice;h4sh;Alice;Verdi;;alice@example.com", 1))
	assert.Equal(t, []string{"OK LOGIN"}, c.roundTrip(t, "LOGIN:alice;h4sh", 1))
	assert.Equal(t, []string{"OK SAVE_LIBRARY"}, c.roundTrip(t, "SAVE_LIBRARY:alice;favs;7", 1))

	assert.Equal(t, []string{"OK ADD_REVIEW"},
		c.roundTrip(t, "ADD_REVIEW:alice;7;5;4;4;5;3;4;Notevole", 1))
	assert.Equal(t, []string{"ERR ADD_REVIEW"},
		c.roundTrip(t, "ADD_REVIEW:alice;7;2;2;2;2;2;2;", 1))

	assert.Equal(t, []string{
		"OK REVIEW_STATS 1;5.0000;4.0000;4.0000;5.0000;3.0000;4.0000",
		"DIST;4:1",
		"END",
	}, c.roundTrip(t, "GET_REVIEW_STATS:7", 3))
}

// Suggesting [9,9,7,3] for book 7 keeps only the owned, distinct,
// non-self id 9.
func TestServerSuggestionScenario(t *testing.T) {
	srv := newTestServer(t)
	c := dial(t, srv)
	c.readLine(t)

	assert.Equal(t, []string{"OK REGISTER"},
		c.roundTrip(t, "REGISTER:alice;h4sh;Alice;Verdi;;", 1))
	assert.Equal(t, []string{"OK SAVE_LIBRARY"}, c.roundTrip(t, "SAVE_LIBRARY:alice;favs;7,9", 1))

	assert.Equal(t, []string{"OK ADD_SUGGESTION"},
		c.roundTrip(t, "ADD_SUGGESTION:alice;7;9,9,7,3", 1))
	assert.Equal(t, []string{"OK SUGGESTIONS 1", "SUG;9;1", "END"},
		c.roundTrip(t, "GET_SUGGESTIONS_STATS:7", 3))
}

func TestServerSearch(t *testing.T) {
	srv := newTestServer(t)
	c := dial(t, srv)
	c.readLine(t)

	assert.Equal(t, []string{
		"OK SEARCH_RESULTS 1",
		"BOOK;3;Il Barone Rampante;Italo Calvino;1957",
		"END",
	}, c.roundTrip(t, "SEARCH_TITLE:barone", 3))
}

func TestServerConcurrentClients(t *testing.T) {
	srv := newTestServer(t)

	c1 := dial(t, srv)
	c2 := dial(t, srv)
	c1.readLine(t)
	c2.readLine(t)

	assert.Equal(t, []string{"OK REGISTER"},
		c1.roundTrip(t, "REGISTER:alice;h;Alice;Verdi;;", 1))
	assert.Equal(t, []string{"OK REGISTER"},
		c2.roundTrip(t, "REGISTER:bob;h;Bob;Bianchi;;", 1))

	// a client dropping mid-session does not affect the other
	require.NoError(t, c1.conn.Close())
	assert.Equal(t, []string{"PONG"}, c2.roundTrip(t, "PING", 1))
}

func TestServerShutdownUnblocksClients(t *testing.T) {
	srv := newTestServer(t)
	c := dial(t, srv)
	c.readLine(t)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(shutdownCtx))

	_, err := c.reader.ReadString('\n')
	assert.Error(t, err)
}
