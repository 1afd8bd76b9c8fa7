package service

import (
	"context"
	"log/slog"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/errors"
	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

// SearchService serves the read paths: lookups, listings and free-text
// search against the index, plus the consistency-critical bounding-box
// query which goes straight to the store.
type SearchService struct {
	store  store.Store
	engine *search.Engine
	reader *search.Reader
	log    *slog.Logger
}

// NewSearchService creates the read service.
func NewSearchService(st store.Store, engine *search.Engine, reader *search.Reader, log *slog.Logger) *SearchService {
	return &SearchService{
		store:  st,
		engine: engine,
		reader: reader,
		log:    log.With(slog.String("component", "search-service")),
	}
}

// IndexStats returns the document count per entity family.
func (s *SearchService) IndexStats() (map[string]uint64, error) {
	stats := make(map[string]uint64, 4)
	for _, dt := range []search.DocType{
		search.DocTypeWaypoint,
		search.DocTypeTag,
		search.DocTypeMedia,
		search.DocTypePage,
	} {
		count, err := s.engine.DocCount(dt)
		if err != nil {
			return nil, err
		}
		stats[string(dt)] = count
	}
	return stats, nil
}

// FindByID returns an entity's best-language document and the language
// codes it is available in.
func (s *SearchService) FindByID(ctx context.Context, dt search.DocType, id, preferredCode string) (*search.Hit, error) {
	return s.reader.FindByID(dt, id, preferredCode)
}

// FindBySlug returns the document matching a slug.
func (s *SearchService) FindBySlug(ctx context.Context, dt search.DocType, slug, preferredCode string) (*search.Hit, error) {
	return s.reader.FindBySlug(dt, slug, preferredCode)
}

// List returns a page of a family ordered by language rank then title,
// optionally restricted to one tag.
func (s *SearchService) List(ctx context.Context, dt search.DocType, preferredCode, tagID string, page, pageSize int) (*search.ResultPage, error) {
	return s.reader.List(dt, preferredCode, tagID, page, pageSize)
}

// Search runs free-text search over a family. Waypoint searches also
// match through tag names: tags whose title matches the text widen the
// result set.
func (s *SearchService) Search(ctx context.Context, dt search.DocType, text, preferredCode string, page, pageSize int) (*search.ResultPage, error) {
	var tagIDs []string
	if dt == search.DocTypeWaypoint {
		ids, err := s.reader.MatchingTagIDs(text)
		if err != nil {
			// Tag widening is an enrichment; a failure there must not
			// take down plain text search.
			s.log.Warn("tag match failed, searching text only", slog.Any("error", err))
		} else {
			tagIDs = ids
		}
	}
	return s.reader.Search(dt, text, tagIDs, preferredCode, page, pageSize)
}

// WaypointSummary is a bounding-box result: the canonical coordinates
// plus the best-language canonical detail.
type WaypointSummary struct {
	WaypointID   string            `json:"waypointId"`
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	LanguageCode string            `json:"languageCode"`
	Coordinate   domain.Coordinate `json:"coordinate"`
}

// FindInBoundingBox returns the waypoints whose canonical verified
// location falls inside the box. This reads the store, not the index:
// map rendering must not show stale or vanished pins.
func (s *SearchService) FindInBoundingBox(ctx context.Context, topLeft, bottomRight domain.Coordinate, preferredCode string) ([]*WaypointSummary, error) {
	locs, err := s.store.LocationsInBoundingBox(ctx, topLeft, bottomRight)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "bounding box query")
	}

	langs, err := s.store.ListActiveLanguages(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list active languages")
	}
	// Preferred language first, then priority order: the same ranking
	// the index-side lookups apply.
	ordered := make([]*domain.Language, 0, len(langs))
	for _, l := range langs {
		if l.Code == preferredCode {
			ordered = append([]*domain.Language{l}, ordered...)
		} else {
			ordered = append(ordered, l)
		}
	}

	summaries := make([]*WaypointSummary, 0, len(locs))
	for _, loc := range locs {
		summary, err := s.summarize(ctx, loc, ordered)
		if err != nil {
			return nil, err
		}
		if summary != nil {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

// summarize picks the best-language canonical detail for one located
// waypoint. Waypoints without any verified detail are skipped: they
// have nothing presentable yet.
func (s *SearchService) summarize(ctx context.Context, loc *domain.Location, ordered []*domain.Language) (*WaypointSummary, error) {
	for _, lang := range ordered {
		detail, err := s.store.CanonicalWaypointDetail(ctx, loc.WaypointID, lang.ID, includeUnverified)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &WaypointSummary{
			WaypointID:   loc.WaypointID,
			Title:        detail.Title,
			Slug:         detail.Slug,
			LanguageCode: lang.Code,
			Coordinate: domain.Coordinate{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
			},
		}, nil
	}
	return nil, nil
}
