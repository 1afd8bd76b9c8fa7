package providers

import (
	"github.com/samber/do/v2"

	"github.com/footprintsforfreedom/footprints-server/internal/logger"
	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/service"
)

// ProvideSearchService provides the read-side service over the search index.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	engineHandle := do.MustInvoke[*EngineHandle](i)
	reader := do.MustInvoke[*search.Reader](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, engineHandle.Engine, reader, log.Logger), nil
}

// ProvideContentService provides the submission service.
func ProvideContentService(i do.Injector) (*service.ContentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewContentService(storeHandle.Store, log.Logger), nil
}

// ProvideModerationService provides the verification and deletion service.
func ProvideModerationService(i do.Injector) (*service.ModerationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	syncer := do.MustInvoke[*service.Syncer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewModerationService(storeHandle.Store, syncer, log.Logger), nil
}

// ProvideLanguageService provides the language administration service.
func ProvideLanguageService(i do.Injector) (*service.LanguageService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	syncer := do.MustInvoke[*service.Syncer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLanguageService(storeHandle.Store, syncer, log.Logger), nil
}
