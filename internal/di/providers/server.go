package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/bookrecapp/bookrec-server/internal/config"
	"github.com/bookrecapp/bookrec-server/internal/logger"
	"github.com/bookrecapp/bookrec-server/internal/protocol"
	"github.com/bookrecapp/bookrec-server/internal/server"
	"github.com/bookrecapp/bookrec-server/internal/service"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

// ProvideHandler provides the protocol handler.
func ProvideHandler(i do.Injector) (*protocol.Handler, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return protocol.NewHandler(
		do.MustInvoke[*service.AuthService](i),
		do.MustInvoke[*service.LibraryService](i),
		do.MustInvoke[*service.ReviewService](i),
		do.MustInvoke[*service.SuggestionService](i),
		do.MustInvoke[*service.CatalogService](i),
		log.Logger,
	), nil
}

// TCPServerHandle wraps the TCP server with Shutdownable.
type TCPServerHandle struct {
	*server.Server
}

// Shutdown implements do.Shutdownable.
func (h *TCPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideTCPServer provides the listening TCP server.
func ProvideTCPServer(i do.Injector) (*TCPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*protocol.Handler](i)

	srv := server.New(server.Options{
		Addr:    cfg.Addr(),
		Banner:  cfg.Server.Banner,
		Handler: handler,
		Logger:  log.Logger,
	})
	if err := srv.Start(); err != nil {
		return nil, err
	}
	return &TCPServerHandle{Server: srv}, nil
}
