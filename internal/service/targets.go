package service

import (
	"context"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/errors"
	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

// Only verified revisions are projected: the index is the public view.
const includeUnverified = false

// noOpOnNotFound converts a store miss into the quiet sync no-op
// marker. Entities legitimately vanish between event and sync.
func noOpOnNotFound(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return errors.SyncNoOpf(format, args...)
	}
	return err
}

type waypointTarget struct {
	store store.Store
}

func (t *waypointTarget) DocType() search.DocType { return search.DocTypeWaypoint }

func (t *waypointTarget) ResolveDetail(ctx context.Context, detailID string) (string, string, error) {
	d, err := t.store.GetWaypointDetailByID(ctx, detailID)
	if err != nil {
		return "", "", noOpOnNotFound(err, "waypoint detail %s vanished", detailID)
	}
	return d.WaypointID, d.LanguageID, nil
}

func (t *waypointTarget) Project(ctx context.Context, entityID string, lang *domain.Language) (search.Document, error) {
	wp, err := t.store.GetWaypointByID(ctx, entityID)
	if err != nil {
		return nil, noOpOnNotFound(err, "waypoint %s vanished", entityID)
	}
	detail, err := t.store.CanonicalWaypointDetail(ctx, entityID, lang.ID, includeUnverified)
	if err != nil {
		return nil, noOpOnNotFound(err, "waypoint %s has no canonical %s detail", entityID, lang.Code)
	}
	loc, err := t.store.CanonicalLocation(ctx, entityID)
	if err != nil {
		return nil, err
	}
	tagIDs, err := t.store.VerifiedTagIDs(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return search.ProjectWaypoint(wp, detail, loc, lang, tagIDs)
}

func (t *waypointTarget) EntityIDs(ctx context.Context) ([]string, error) {
	return t.store.ListWaypointIDs(ctx)
}

type tagTarget struct {
	store store.Store
}

func (t *tagTarget) DocType() search.DocType { return search.DocTypeTag }

func (t *tagTarget) ResolveDetail(ctx context.Context, detailID string) (string, string, error) {
	d, err := t.store.GetTagDetailByID(ctx, detailID)
	if err != nil {
		return "", "", noOpOnNotFound(err, "tag detail %s vanished", detailID)
	}
	return d.TagID, d.LanguageID, nil
}

func (t *tagTarget) Project(ctx context.Context, entityID string, lang *domain.Language) (search.Document, error) {
	tag, err := t.store.GetTagByID(ctx, entityID)
	if err != nil {
		return nil, noOpOnNotFound(err, "tag %s vanished", entityID)
	}
	detail, err := t.store.CanonicalTagDetail(ctx, entityID, lang.ID, includeUnverified)
	if err != nil {
		return nil, noOpOnNotFound(err, "tag %s has no canonical %s detail", entityID, lang.Code)
	}
	return search.ProjectTag(tag, detail, lang)
}

func (t *tagTarget) EntityIDs(ctx context.Context) ([]string, error) {
	return t.store.ListTagIDs(ctx)
}

type mediaTarget struct {
	store store.Store
}

func (t *mediaTarget) DocType() search.DocType { return search.DocTypeMedia }

func (t *mediaTarget) ResolveDetail(ctx context.Context, detailID string) (string, string, error) {
	d, err := t.store.GetMediaDetailByID(ctx, detailID)
	if err != nil {
		return "", "", noOpOnNotFound(err, "media detail %s vanished", detailID)
	}
	return d.MediaID, d.LanguageID, nil
}

func (t *mediaTarget) Project(ctx context.Context, entityID string, lang *domain.Language) (search.Document, error) {
	media, err := t.store.GetMediaByID(ctx, entityID)
	if err != nil {
		return nil, noOpOnNotFound(err, "media %s vanished", entityID)
	}
	detail, err := t.store.CanonicalMediaDetail(ctx, entityID, lang.ID, includeUnverified)
	if err != nil {
		return nil, noOpOnNotFound(err, "media %s has no canonical %s detail", entityID, lang.Code)
	}
	file, err := t.store.CanonicalMediaFile(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return search.ProjectMedia(media, detail, file, lang)
}

func (t *mediaTarget) EntityIDs(ctx context.Context) ([]string, error) {
	return t.store.ListMediaIDs(ctx)
}

type pageTarget struct {
	store store.Store
}

func (t *pageTarget) DocType() search.DocType { return search.DocTypePage }

func (t *pageTarget) ResolveDetail(ctx context.Context, detailID string) (string, string, error) {
	d, err := t.store.GetPageDetailByID(ctx, detailID)
	if err != nil {
		return "", "", noOpOnNotFound(err, "page detail %s vanished", detailID)
	}
	return d.PageID, d.LanguageID, nil
}

func (t *pageTarget) Project(ctx context.Context, entityID string, lang *domain.Language) (search.Document, error) {
	page, err := t.store.GetPageByID(ctx, entityID)
	if err != nil {
		return nil, noOpOnNotFound(err, "page %s vanished", entityID)
	}
	detail, err := t.store.CanonicalPageDetail(ctx, entityID, lang.ID, includeUnverified)
	if err != nil {
		return nil, noOpOnNotFound(err, "page %s has no canonical %s detail", entityID, lang.Code)
	}
	return search.ProjectPage(page, detail, lang)
}

func (t *pageTarget) EntityIDs(ctx context.Context) ([]string, error) {
	return t.store.ListPageIDs(ctx)
}
