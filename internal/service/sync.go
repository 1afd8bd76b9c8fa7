// Package service wires the store, the search engine and the HTTP
// layer together: document synchronization, moderated content
// mutations, language administration and the read paths.
package service

import (
	"context"
	"log/slog"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/errors"
	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

// SyncTarget adapts one entity family to the synchronization engine:
// it resolves detail revisions to their owning entity and projects the
// entity's canonical state into index documents.
type SyncTarget interface {
	DocType() search.DocType
	// ResolveDetail maps a detail revision id to its owning entity and
	// language. Returns ErrSyncNoOp when the revision vanished.
	ResolveDetail(ctx context.Context, detailID string) (entityID, languageID string, err error)
	// Project builds the canonical document for an entity in one
	// language. Returns ErrSyncNoOp when the entity vanished or has no
	// canonical content in that language.
	Project(ctx context.Context, entityID string, lang *domain.Language) (search.Document, error)
	// EntityIDs lists every live entity of the family, for full
	// rebuilds.
	EntityIDs(ctx context.Context) ([]string, error)
}

// Syncer keeps the search index eventually consistent with the store.
// Every operation loads current canonical state, projects it and
// submits one atomic batch per physical index. Load failures caused by
// entities vanishing mid-flight are no-ops; engine failures surface as
// sync errors but are never rolled back into the store.
type Syncer struct {
	store   store.Store
	engine  *search.Engine
	log     *slog.Logger
	targets map[search.DocType]SyncTarget
}

// NewSyncer creates a syncer over all four entity families.
func NewSyncer(st store.Store, engine *search.Engine, log *slog.Logger) *Syncer {
	s := &Syncer{
		store:   st,
		engine:  engine,
		log:     log.With(slog.String("component", "syncer")),
		targets: make(map[search.DocType]SyncTarget),
	}
	for _, t := range []SyncTarget{
		&waypointTarget{store: st},
		&tagTarget{store: st},
		&mediaTarget{store: st},
		&pageTarget{store: st},
	} {
		s.targets[t.DocType()] = t
	}
	return s
}

func (s *Syncer) target(dt search.DocType) (SyncTarget, error) {
	t, ok := s.targets[dt]
	if !ok {
		return nil, errors.Internalf("no sync target for document type %s", dt)
	}
	return t, nil
}

// activeLanguages loads the active language set once per operation.
func (s *Syncer) activeLanguages(ctx context.Context) ([]*domain.Language, []string, error) {
	langs, err := s.store.ListActiveLanguages(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "list active languages")
	}
	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		codes = append(codes, l.Code)
	}
	return langs, codes, nil
}

// EnsureIndexes creates any missing index for the active languages.
// Called at startup and after language activation.
func (s *Syncer) EnsureIndexes(ctx context.Context) error {
	langs, codes, err := s.activeLanguages(ctx)
	if err != nil {
		return err
	}
	for dt := range s.targets {
		for _, l := range langs {
			if err := s.engine.EnsureIndex(dt, l.Code, codes); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpsertDetail re-projects the single document owned by a detail
// revision. The revision vanishing, its language being inactive, or the
// entity having no canonical content left are all quiet no-ops.
func (s *Syncer) UpsertDetail(ctx context.Context, dt search.DocType, detailID string) error {
	t, err := s.target(dt)
	if err != nil {
		return err
	}

	entityID, languageID, err := t.ResolveDetail(ctx, detailID)
	if errors.Is(err, errors.ErrSyncNoOp) {
		s.log.Debug("detail vanished before sync",
			slog.String("type", string(dt)), slog.String("detail_id", detailID))
		return nil
	}
	if err != nil {
		return err
	}

	lang, err := s.store.GetLanguageByID(ctx, languageID)
	if err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "load language %s", languageID)
	}
	if !lang.IsActive() {
		return nil
	}

	_, codes, err := s.activeLanguages(ctx)
	if err != nil {
		return err
	}
	if err := s.engine.EnsureIndex(dt, lang.Code, codes); err != nil {
		return err
	}

	doc, err := t.Project(ctx, entityID, lang)
	key := search.Key(search.StrategyFor(dt), entityID, lang.ID)
	if errors.Is(err, errors.ErrSyncNoOp) {
		// No canonical content left in this language: retract the
		// document if one is indexed.
		return s.engine.Bulk(dt, lang.Code, []search.BulkOp{{Key: key}})
	}
	if err != nil {
		return err
	}
	return s.engine.Bulk(dt, lang.Code, []search.BulkOp{{Key: key, Doc: doc.ToMap()}})
}

// UpsertEntity re-derives every canonical document of an entity, one
// per active language, and upserts them in one batch per index.
// Languages without canonical content get a delete so stale documents
// cannot linger.
func (s *Syncer) UpsertEntity(ctx context.Context, dt search.DocType, entityID string) error {
	return s.UpsertEntities(ctx, dt, []string{entityID})
}

// UpsertEntities is the bulk variant of UpsertEntity: all documents of
// all given entities, grouped into one batch per physical index.
func (s *Syncer) UpsertEntities(ctx context.Context, dt search.DocType, entityIDs []string) error {
	if len(entityIDs) == 0 {
		return nil
	}
	t, err := s.target(dt)
	if err != nil {
		return err
	}
	langs, codes, err := s.activeLanguages(ctx)
	if err != nil {
		return err
	}

	opsByCode := make(map[string][]search.BulkOp)
	for _, entityID := range entityIDs {
		for _, lang := range langs {
			key := search.Key(search.StrategyFor(dt), entityID, lang.ID)
			doc, err := t.Project(ctx, entityID, lang)
			if errors.Is(err, errors.ErrSyncNoOp) {
				opsByCode[lang.Code] = append(opsByCode[lang.Code], search.BulkOp{Key: key})
				continue
			}
			if err != nil {
				return err
			}
			opsByCode[lang.Code] = append(opsByCode[lang.Code], search.BulkOp{Key: key, Doc: doc.ToMap()})
		}
	}

	for code, ops := range opsByCode {
		if err := s.engine.EnsureIndex(dt, code, codes); err != nil {
			return err
		}
		if err := s.engine.Bulk(dt, code, ops); err != nil {
			return err
		}
	}
	return nil
}

// DeleteEntity retracts every document of an entity across all active
// languages. Deleting documents that never existed is fine.
func (s *Syncer) DeleteEntity(ctx context.Context, dt search.DocType, entityID string) error {
	langs, _, err := s.activeLanguages(ctx)
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if !s.engine.HasIndex(dt, lang.Code) {
			continue
		}
		key := search.Key(search.StrategyFor(dt), entityID, lang.ID)
		if err := s.engine.Bulk(dt, lang.Code, []search.BulkOp{{Key: key}}); err != nil {
			return err
		}
	}
	return nil
}

// DeactivateLanguage retracts every projection of a language from every
// family. Store content is untouched.
func (s *Syncer) DeactivateLanguage(ctx context.Context, lang *domain.Language) error {
	for dt := range s.targets {
		if err := s.engine.DropLanguage(dt, lang.Code, lang.ID); err != nil {
			return err
		}
	}
	return nil
}

// ActivateLanguage rebuilds every document that should exist for a
// freshly activated language, the mirror image of DeactivateLanguage.
func (s *Syncer) ActivateLanguage(ctx context.Context, lang *domain.Language) error {
	return s.RebuildLanguage(ctx, lang)
}

// RebuildLanguage re-projects every entity of every family into one
// language. Used after activation and after language metadata changes,
// which are denormalized into every document.
func (s *Syncer) RebuildLanguage(ctx context.Context, lang *domain.Language) error {
	if !lang.IsActive() {
		return nil
	}
	_, codes, err := s.activeLanguages(ctx)
	if err != nil {
		return err
	}

	for dt, t := range s.targets {
		if err := s.engine.EnsureIndex(dt, lang.Code, codes); err != nil {
			return err
		}
		entityIDs, err := t.EntityIDs(ctx)
		if err != nil {
			return err
		}

		ops := make([]search.BulkOp, 0, len(entityIDs))
		for _, entityID := range entityIDs {
			key := search.Key(search.StrategyFor(dt), entityID, lang.ID)
			doc, err := t.Project(ctx, entityID, lang)
			if errors.Is(err, errors.ErrSyncNoOp) {
				ops = append(ops, search.BulkOp{Key: key})
				continue
			}
			if err != nil {
				return err
			}
			ops = append(ops, search.BulkOp{Key: key, Doc: doc.ToMap()})
		}
		if err := s.engine.Bulk(dt, lang.Code, ops); err != nil {
			return err
		}
		s.log.Info("rebuilt language projection",
			slog.String("type", string(dt)),
			slog.String("language", lang.Code),
			slog.Int("entities", len(entityIDs)))
	}
	return nil
}

// UpdateLanguages re-projects every document whose language is in the
// set, keeping denormalized language fields current after metadata or
// priority changes.
func (s *Syncer) UpdateLanguages(ctx context.Context, languageIDs []string) error {
	for _, id := range languageIDs {
		lang, err := s.store.GetLanguageByID(ctx, id)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.RebuildLanguage(ctx, lang); err != nil {
			return err
		}
	}
	return nil
}

// ReindexAll rebuilds every index from the store. Used at startup when
// the index directory is missing or after corruption.
func (s *Syncer) ReindexAll(ctx context.Context) error {
	langs, _, err := s.activeLanguages(ctx)
	if err != nil {
		return err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		return err
	}
	for _, lang := range langs {
		if err := s.RebuildLanguage(ctx, lang); err != nil {
			return err
		}
	}
	return nil
}
