// Package search manages the bleve index families that mirror the
// relational store. Every entity family (waypoints, tags, media, pages)
// owns a set of physical indexes; the engine handles their lifecycle,
// write batching and cross-language read aliases. All writes go through
// per-family locks so that concurrent syncs cannot interleave batches.
package search

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/footprintsforfreedom/footprints-server/internal/errors"
)

const indexSuffix = ".bleve"

// batchDeleteSize bounds how many documents a language drop removes per
// bleve batch.
const batchDeleteSize = 500

// Engine owns the physical bleve indexes. An empty directory means
// in-memory indexes, used by tests.
type Engine struct {
	log *slog.Logger
	dir string

	mu      sync.RWMutex
	indexes map[string]bleve.Index
	aliases map[DocType]bleve.IndexAlias

	locks *typeLocks
}

// NewEngine opens an engine over dir, reopening any index directories a
// previous run left behind. dir == "" keeps everything in memory.
func NewEngine(dir string, log *slog.Logger) (*Engine, error) {
	e := &Engine{
		log:     log.With(slog.String("component", "search-engine")),
		dir:     dir,
		indexes: make(map[string]bleve.Index),
		aliases: make(map[DocType]bleve.IndexAlias),
		locks:   newTypeLocks(),
	}
	for _, dt := range []DocType{DocTypeWaypoint, DocTypeTag, DocTypeMedia, DocTypePage} {
		e.aliases[dt] = bleve.NewIndexAlias()
	}
	if dir == "" {
		return e, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeEngineUnavailable, "create index directory")
	}
	if err := e.reopenAll(); err != nil {
		return nil, err
	}
	return e, nil
}

// reopenAll scans the index directory and reopens every index created
// by a previous run.
func (e *Engine) reopenAll() error {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return errors.Wrap(err, errors.CodeEngineUnavailable, "scan index directory")
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), indexSuffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), indexSuffix)
		dt, ok := familyOf(name)
		if !ok {
			e.log.Warn("skipping unrecognized index directory", slog.String("name", entry.Name()))
			continue
		}
		idx, err := bleve.Open(filepath.Join(e.dir, entry.Name()))
		if err != nil {
			return errors.Wrapf(err, errors.CodeEngineUnavailable, "open index %s", name)
		}
		e.indexes[name] = idx
		e.aliases[dt].Add(idx)
		e.log.Info("reopened index", slog.String("index", name))
	}
	return nil
}

// familyOf resolves which document family a physical index name belongs
// to.
func familyOf(name string) (DocType, bool) {
	for _, dt := range []DocType{DocTypeWaypoint, DocTypeTag, DocTypeMedia, DocTypePage} {
		base := BaseName(dt)
		if StrategyFor(dt) == SharedIndex {
			if name == base {
				return dt, true
			}
			continue
		}
		if strings.HasPrefix(name, base+"_") {
			return dt, true
		}
	}
	return "", false
}

// HasIndex reports whether the physical index for a family/language
// pair is open.
func (e *Engine) HasIndex(dt DocType, langCode string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.indexes[IndexName(dt, langCode)]
	return ok
}

// EnsureIndex creates the index for a family/language pair if it does
// not exist yet. Creating an index that already exists is a no-op.
// activeCodes is the full set of active language codes; shared families
// bake one document mapping per code into the index at creation time.
func (e *Engine) EnsureIndex(dt DocType, langCode string, activeCodes []string) error {
	name := IndexName(dt, langCode)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.indexes[name]; ok {
		return nil
	}

	var (
		m   mapping.IndexMapping
		err error
	)
	if StrategyFor(dt) == SharedIndex {
		m, err = NewSharedMapping(dt, activeCodes)
	} else {
		m, err = NewPerLanguageMapping(dt, langCode)
	}
	if err != nil {
		return err
	}
	return e.createLocked(dt, name, m)
}

// createLocked builds the physical index. Caller holds e.mu.
func (e *Engine) createLocked(dt DocType, name string, m mapping.IndexMapping) error {
	var (
		idx bleve.Index
		err error
	)
	if e.dir == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		idx, err = bleve.New(filepath.Join(e.dir, name+indexSuffix), m)
	}
	if err != nil {
		return errors.Wrapf(err, errors.CodeEngineUnavailable, "create index %s", name)
	}
	e.indexes[name] = idx
	e.aliases[dt].Add(idx)
	e.log.Info("created index", slog.String("index", name))
	return nil
}

// DeleteIndex drops the physical index for a per-language family. For
// shared families use DropLanguage instead. Deleting a missing index is
// a no-op.
func (e *Engine) DeleteIndex(dt DocType, langCode string) error {
	if StrategyFor(dt) == SharedIndex {
		return errors.Internalf("delete index on shared family %s", dt)
	}
	name := IndexName(dt, langCode)

	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.indexes[name]
	if !ok {
		return nil
	}
	e.aliases[dt].Remove(idx)
	delete(e.indexes, name)
	if err := idx.Close(); err != nil {
		return errors.Wrapf(err, errors.CodeEngineUnavailable, "close index %s", name)
	}
	if e.dir != "" {
		if err := os.RemoveAll(filepath.Join(e.dir, name+indexSuffix)); err != nil {
			return errors.Wrapf(err, errors.CodeEngineUnavailable, "remove index %s", name)
		}
	}
	e.log.Info("deleted index", slog.String("index", name))
	return nil
}

// BulkOp is one entry of a write batch. A nil Doc deletes the key;
// deleting a key that is not indexed is a no-op.
type BulkOp struct {
	Key string
	Doc map[string]any
}

// Bulk applies a batch of upserts and deletes to one physical index
// atomically. The batch either commits as a whole or not at all.
func (e *Engine) Bulk(dt DocType, langCode string, ops []BulkOp) error {
	if len(ops) == 0 {
		return nil
	}
	unlock := e.locks.Lock(dt)
	defer unlock()

	name := IndexName(dt, langCode)
	e.mu.RLock()
	idx, ok := e.indexes[name]
	e.mu.RUnlock()
	if !ok {
		return errors.NotFoundf("index %s does not exist", name)
	}

	batch := idx.NewBatch()
	for _, op := range ops {
		if op.Doc == nil {
			batch.Delete(op.Key)
			continue
		}
		if err := batch.Index(op.Key, op.Doc); err != nil {
			return errors.Wrapf(err, errors.CodeSyncFailure, "stage document %s", op.Key)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return errors.Wrapf(err, errors.CodeSyncFailure, "apply batch of %d ops to %s", len(ops), name)
	}
	e.log.Debug("applied batch",
		slog.String("index", name),
		slog.Int("ops", len(ops)))
	return nil
}

// DropLanguage removes every document of one language from a shared
// family's index. Per-language families drop the whole index instead.
func (e *Engine) DropLanguage(dt DocType, langCode, languageID string) error {
	if StrategyFor(dt) == PerLanguageIndex {
		return e.DeleteIndex(dt, langCode)
	}

	unlock := e.locks.Lock(dt)
	defer unlock()

	name := IndexName(dt, langCode)
	e.mu.RLock()
	idx, ok := e.indexes[name]
	e.mu.RUnlock()
	if !ok {
		return nil
	}

	for {
		q := query.NewTermQuery(languageID)
		q.SetField(FieldLanguageID)
		req := bleve.NewSearchRequestOptions(q, batchDeleteSize, 0, false)
		res, err := idx.Search(req)
		if err != nil {
			return errors.Wrapf(err, errors.CodeEngineUnavailable, "find %s documents for language %s", dt, languageID)
		}
		if len(res.Hits) == 0 {
			return nil
		}
		batch := idx.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := idx.Batch(batch); err != nil {
			return errors.Wrapf(err, errors.CodeSyncFailure, "drop language %s from %s", languageID, name)
		}
		e.log.Info("dropped language documents",
			slog.String("index", name),
			slog.String("language_id", languageID),
			slog.Int("count", len(res.Hits)))
	}
}

// Alias returns the cross-language read alias of a family. The alias is
// a bleve.Index that fans searches out over every open index of the
// family.
func (e *Engine) Alias(dt DocType) bleve.IndexAlias {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.aliases[dt]
}

// Index returns the physical index for one family/language pair.
func (e *Engine) Index(dt DocType, langCode string) (bleve.Index, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx, ok := e.indexes[IndexName(dt, langCode)]
	return idx, ok
}

// DocCount sums the document counts of every index in a family.
func (e *Engine) DocCount(dt DocType) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var total uint64
	for name, idx := range e.indexes {
		if fam, ok := familyOf(name); !ok || fam != dt {
			continue
		}
		n, err := idx.DocCount()
		if err != nil {
			return 0, errors.Wrapf(err, errors.CodeEngineUnavailable, "count documents in %s", name)
		}
		total += n
	}
	return total, nil
}

// FamilyIndexCount reports how many physical indexes a family currently
// has. Read paths use it to short-circuit before searching an empty
// alias.
func (e *Engine) FamilyIndexCount(dt DocType) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := 0
	for name := range e.indexes {
		if fam, ok := familyOf(name); ok && fam == dt {
			n++
		}
	}
	return n
}

// IndexNames lists the open physical indexes, sorted order not
// guaranteed.
func (e *Engine) IndexNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.indexes))
	for name := range e.indexes {
		names = append(names, name)
	}
	return names
}

// Close shuts every index down. The engine is unusable afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for name, idx := range e.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, errors.CodeEngineUnavailable, "close index %s", name)
		}
		delete(e.indexes, name)
	}
	return firstErr
}

// Shutdown implements the DI container's shutdown hook.
func (e *Engine) Shutdown() error {
	e.log.Info("shutting down search engine")
	return e.Close()
}
