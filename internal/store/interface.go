// Package store defines the persistence contract of the Footprints
// server. The search index is derived from this store; every canonical-
// revision rule the index depends on is implemented here, in one place.
package store

import (
	"context"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/errors"
)

// Sentinels shared by every implementation. Aliased to the coded
// application errors so errors.Is works across layers.
var (
	ErrNotFound      = errors.ErrNotFound
	ErrAlreadyExists = errors.ErrAlreadyExists
)

// LanguageStore manages the content languages. A language with a nil
// priority is deactivated: its content stays in the store but is
// retracted from search.
type LanguageStore interface {
	CreateLanguage(ctx context.Context, l *domain.Language) error
	GetLanguageByID(ctx context.Context, id string) (*domain.Language, error)
	GetLanguageByCode(ctx context.Context, code string) (*domain.Language, error)
	// ListLanguages returns every language; active ones first, ordered
	// by priority, then inactive ones by code.
	ListLanguages(ctx context.Context) ([]*domain.Language, error)
	// ListActiveLanguages returns only languages with a priority,
	// ordered by ascending priority.
	ListActiveLanguages(ctx context.Context) ([]*domain.Language, error)
	// UpdateLanguage updates code, name and RTL flag.
	UpdateLanguage(ctx context.Context, l *domain.Language) error
	// ActivateLanguage inserts a language into the active priority
	// order at the given position, keeping priorities dense. Returns
	// the ids of other languages whose priority moved.
	ActivateLanguage(ctx context.Context, id string, priority int) ([]string, error)
	// DeactivateLanguage clears the priority and closes the hole in
	// the remaining active priorities. Returns the ids of languages
	// whose priority moved.
	DeactivateLanguage(ctx context.Context, id string) ([]string, error)
	// SetLanguagePriorities reassigns dense priorities 0..n-1 in the
	// order given. Every id must name an active language.
	SetLanguagePriorities(ctx context.Context, orderedIDs []string) error
}

// WaypointStore manages waypoints, their per-language detail revisions,
// their moderated locations and their tag associations.
type WaypointStore interface {
	CreateWaypoint(ctx context.Context, w *domain.Waypoint) error
	GetWaypointByID(ctx context.Context, id string) (*domain.Waypoint, error)
	// DeleteWaypoint soft-deletes the waypoint; subsequent gets return
	// ErrNotFound.
	DeleteWaypoint(ctx context.Context, id string) error
	ListWaypointIDs(ctx context.Context) ([]string, error)

	CreateWaypointDetail(ctx context.Context, d *domain.WaypointDetail) error
	GetWaypointDetailByID(ctx context.Context, id string) (*domain.WaypointDetail, error)
	VerifyWaypointDetail(ctx context.Context, id string, at time.Time) error
	// CanonicalWaypointDetail returns the most recently updated verified
	// detail for the pair, or with includeUnverified the most recent
	// detail at all when no verified one exists.
	CanonicalWaypointDetail(ctx context.Context, waypointID, languageID string, includeUnverified bool) (*domain.WaypointDetail, error)

	CreateLocation(ctx context.Context, l *domain.Location) error
	VerifyLocation(ctx context.Context, id string, at time.Time) error
	// CanonicalLocation returns the newest verified location, or
	// (nil, nil) when the waypoint has none yet.
	CanonicalLocation(ctx context.Context, waypointID string) (*domain.Location, error)
	// LocationsInBoundingBox returns canonical verified locations whose
	// coordinates fall inside the box.
	LocationsInBoundingBox(ctx context.Context, topLeft, bottomRight domain.Coordinate) ([]*domain.Location, error)

	SetWaypointTag(ctx context.Context, waypointID, tagID string, status domain.TagStatus) error
	RemoveWaypointTag(ctx context.Context, waypointID, tagID string) error
	// VerifiedTagIDs returns ids of tags attached to the waypoint with
	// verified status, the only ones projected into search.
	VerifiedTagIDs(ctx context.Context, waypointID string) ([]string, error)
	// WaypointIDsWithTag returns waypoints whose association with the
	// tag has the given status.
	WaypointIDsWithTag(ctx context.Context, tagID string, status domain.TagStatus) ([]string, error)
}

// TagStore manages tags and their per-language name revisions.
type TagStore interface {
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTagByID(ctx context.Context, id string) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	ListTagIDs(ctx context.Context) ([]string, error)

	CreateTagDetail(ctx context.Context, d *domain.TagDetail) error
	GetTagDetailByID(ctx context.Context, id string) (*domain.TagDetail, error)
	VerifyTagDetail(ctx context.Context, id string, at time.Time) error
	CanonicalTagDetail(ctx context.Context, tagID, languageID string, includeUnverified bool) (*domain.TagDetail, error)
}

// MediaStore manages media items, their per-language detail revisions
// and their moderated file revisions.
type MediaStore interface {
	CreateMedia(ctx context.Context, m *domain.Media) error
	GetMediaByID(ctx context.Context, id string) (*domain.Media, error)
	DeleteMedia(ctx context.Context, id string) error
	ListMediaIDs(ctx context.Context) ([]string, error)

	CreateMediaDetail(ctx context.Context, d *domain.MediaDetail) error
	GetMediaDetailByID(ctx context.Context, id string) (*domain.MediaDetail, error)
	VerifyMediaDetail(ctx context.Context, id string, at time.Time) error
	CanonicalMediaDetail(ctx context.Context, mediaID, languageID string, includeUnverified bool) (*domain.MediaDetail, error)

	CreateMediaFile(ctx context.Context, f *domain.MediaFile) error
	VerifyMediaFile(ctx context.Context, id string, at time.Time) error
	// CanonicalMediaFile returns the newest verified file revision, or
	// (nil, nil) when none is verified yet.
	CanonicalMediaFile(ctx context.Context, mediaID string) (*domain.MediaFile, error)
}

// PageStore manages static pages and their per-language revisions.
type PageStore interface {
	CreatePage(ctx context.Context, p *domain.Page) error
	GetPageByID(ctx context.Context, id string) (*domain.Page, error)
	DeletePage(ctx context.Context, id string) error
	ListPageIDs(ctx context.Context) ([]string, error)

	CreatePageDetail(ctx context.Context, d *domain.PageDetail) error
	GetPageDetailByID(ctx context.Context, id string) (*domain.PageDetail, error)
	VerifyPageDetail(ctx context.Context, id string, at time.Time) error
	CanonicalPageDetail(ctx context.Context, pageID, languageID string, includeUnverified bool) (*domain.PageDetail, error)
}

// UserContentStore supports GDPR-style user deletion: ownership fields
// are nulled, not removed, and the affected entities are reported so the
// search projections can be refreshed.
type UserContentStore interface {
	// ClearWaypointDetailOwners nulls user_id on the user's waypoint
	// details and returns the affected waypoint ids.
	ClearWaypointDetailOwners(ctx context.Context, userID string) ([]string, error)
	// ClearLocationOwners nulls user_id on the user's locations and
	// returns the affected waypoint ids.
	ClearLocationOwners(ctx context.Context, userID string) ([]string, error)
	ClearTagDetailOwners(ctx context.Context, userID string) ([]string, error)
	ClearMediaDetailOwners(ctx context.Context, userID string) ([]string, error)
	// ClearMediaFileOwners nulls user_id on the user's file revisions
	// and returns the affected media ids.
	ClearMediaFileOwners(ctx context.Context, userID string) ([]string, error)
	ClearPageDetailOwners(ctx context.Context, userID string) ([]string, error)
}

// Store is the full persistence surface consumed by the sync and read
// services.
type Store interface {
	LanguageStore
	WaypointStore
	TagStore
	MediaStore
	PageStore
	UserContentStore

	Close() error
}
