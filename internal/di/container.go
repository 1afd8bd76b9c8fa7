// Package di provides dependency injection configuration for the Footprints server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/footprintsforfreedom/footprints-server/internal/config"
	"github.com/footprintsforfreedom/footprints-server/internal/di/providers"
	"github.com/footprintsforfreedom/footprints-server/internal/logger"
	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideEngine)
	do.Provide(injector, providers.ProvideReader)
	do.Provide(injector, providers.ProvideSyncer)

	// Business services
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideContentService)
	do.Provide(injector, providers.ProvideModerationService)
	do.Provide(injector, providers.ProvideLanguageService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.EngineHandle](injector)
	_ = do.MustInvoke[*search.Reader](injector)
	_ = do.MustInvoke[*service.Syncer](injector)

	// Business services
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.ContentService](injector)
	_ = do.MustInvoke[*service.ModerationService](injector)
	_ = do.MustInvoke[*service.LanguageService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the index when configured to, or when it is unexpectedly empty.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
