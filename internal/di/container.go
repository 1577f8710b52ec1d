// Package di provides dependency injection configuration for the
// book recommender server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookrecapp/bookrec-server/internal/config"
	"github.com/bookrecapp/bookrec-server/internal/di/providers"
	"github.com/bookrecapp/bookrec-server/internal/logger"
	"github.com/bookrecapp/bookrec-server/internal/protocol"
	"github.com/bookrecapp/bookrec-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideSuggestionService)
	do.Provide(injector, providers.ProvideCatalogService)

	// Protocol front end
	do.Provide(injector, providers.ProvideHandler)
	do.Provide(injector, providers.ProvideTCPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is
// listening. This triggers lazy initialization of the full graph.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}

	for _, invoke := range []func() error{
		func() error { _, err := do.Invoke[*service.AuthService](injector); return err },
		func() error { _, err := do.Invoke[*service.LibraryService](injector); return err },
		func() error { _, err := do.Invoke[*service.ReviewService](injector); return err },
		func() error { _, err := do.Invoke[*service.SuggestionService](injector); return err },
		func() error { _, err := do.Invoke[*service.CatalogService](injector); return err },
		func() error { _, err := do.Invoke[*protocol.Handler](injector); return err },
	} {
		if err := invoke(); err != nil {
			return err
		}
	}

	// Index any catalog books the search index does not know yet, then
	// bring up the listener.
	providers.TriggerSearchReindexIfNeeded(injector)

	if _, err := do.Invoke[*providers.TCPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
