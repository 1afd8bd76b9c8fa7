package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/footprintsforfreedom/footprints-server/internal/config"
	"github.com/footprintsforfreedom/footprints-server/internal/logger"
	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/service"
)

// EngineHandle wraps the search engine with shutdown capability.
type EngineHandle struct {
	*search.Engine
}

// Shutdown implements do.Shutdownable.
func (h *EngineHandle) Shutdown() error {
	return h.Close()
}

// ProvideEngine provides the Bleve search engine.
func ProvideEngine(i do.Injector) (*EngineHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	engine, err := search.NewEngine(cfg.Storage.IndexPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Search engine initialized",
		"path", cfg.Storage.IndexPath,
		"indexes", len(engine.IndexNames()),
	)

	return &EngineHandle{Engine: engine}, nil
}

// ProvideReader provides the collapsed-read query layer.
func ProvideReader(i do.Injector) (*search.Reader, error) {
	engineHandle := do.MustInvoke[*EngineHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return search.NewReader(engineHandle.Engine, log.Logger), nil
}

// ProvideSyncer provides the store-to-index synchronizer and makes sure
// every active language has its per-family indexes.
func ProvideSyncer(i do.Injector) (*service.Syncer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	engineHandle := do.MustInvoke[*EngineHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	syncer := service.NewSyncer(storeHandle.Store, engineHandle.Engine, log.Logger)

	if err := syncer.EnsureIndexes(context.Background()); err != nil {
		return nil, err
	}

	return syncer, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when
// configured to, or when the index is empty while the store has active
// languages (fresh index directory, restored database).
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	cfg := do.MustInvoke[*config.Config](i)
	syncer := do.MustInvoke[*service.Syncer](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	engineHandle := do.MustInvoke[*EngineHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.ReindexOnStart {
		var total uint64
		for _, dt := range []search.DocType{
			search.DocTypeWaypoint,
			search.DocTypeTag,
			search.DocTypeMedia,
			search.DocTypePage,
		} {
			count, err := engineHandle.DocCount(dt)
			if err != nil {
				log.Warn("Skipping reindex check, doc count failed", "error", err)
				return
			}
			total += count
		}
		if total > 0 {
			return
		}

		languages, err := storeHandle.ListActiveLanguages(context.Background())
		if err != nil || len(languages) == 0 {
			return
		}

		log.Info("Search index is empty but active languages exist, triggering reindex")
	} else {
		log.Info("Full reindex requested by configuration")
	}

	go func() {
		if err := syncer.ReindexAll(context.Background()); err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		log.Info("Search reindex completed")
	}()
}
