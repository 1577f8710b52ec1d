// Package server runs the TCP front end: it accepts connections and
// drives one protocol handler loop per client.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/bookrecapp/bookrec-server/internal/id"
	"github.com/bookrecapp/bookrec-server/internal/protocol"
)

// Server is a line-protocol TCP server. Each accepted connection gets its
// own goroutine; commands on a connection run strictly sequentially.
type Server struct {
	addr    string
	banner  string
	handler *protocol.Handler
	logger  *slog.Logger

	listener net.Listener
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// Options configures a Server.
type Options struct {
	Addr    string // listen address, host:port
	Banner  string // greeting text sent on connect, after "OK "
	Handler *protocol.Handler
	Logger  *slog.Logger
}

// New creates a Server. It does not start listening.
func New(opts Options) *Server {
	return &Server{
		addr:    opts.Addr,
		banner:  opts.Banner,
		handler: opts.Handler,
		logger:  opts.Logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Start begins listening and accepting connections. It returns once the
// listener is bound; accepting happens in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.logger.Info("server listening", "addr", ln.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting, closes all client connections and waits for
// their handlers to finish or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}
		s.track(conn)
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// handleConn greets the client, then reads one command line at a time
// and writes the handler's response burst. An I/O error ends only this
// connection.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	clientID := id.MustGenerate("conn")
	logger := s.logger.With("client_id", clientID, "remote", conn.RemoteAddr().String())
	logger.Info("client connected")
	defer logger.Info("client disconnected")

	writer := bufio.NewWriter(conn)
	if err := writeLines(writer, []string{"OK " + s.banner}); err != nil {
		logger.Debug("failed to send greeting", "error", err)
		return
	}

	ctx := context.Background()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	for scanner.Scan() {
		lines, closeConn := s.handler.Handle(ctx, scanner.Text())
		if err := writeLines(writer, lines); err != nil {
			logger.Debug("write failed", "error", err)
			return
		}
		if closeConn {
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		logger.Debug("read failed", "error", err)
	}
}

func writeLines(w *bufio.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
