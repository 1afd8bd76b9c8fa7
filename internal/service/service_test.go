package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/errors"
	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
	"github.com/footprintsforfreedom/footprints-server/internal/store/sqlite"
)

// env bundles a real sqlite store, an in-memory search engine and the
// full service stack, the way the server wires them.
type env struct {
	store      store.Store
	engine     *search.Engine
	syncer     *Syncer
	content    *ContentService
	moderation *ModerationService
	languages  *LanguageService
	reads      *SearchService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine, err := search.NewEngine("", log)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	syncer := NewSyncer(st, engine, log)
	return &env{
		store:      st,
		engine:     engine,
		syncer:     syncer,
		content:    NewContentService(st, log),
		moderation: NewModerationService(st, syncer, log),
		languages:  NewLanguageService(st, syncer, log),
		reads:      NewSearchService(st, engine, search.NewReader(engine, log), log),
	}
}

// activeLanguage creates and activates a language in one step.
func (e *env) activeLanguage(t *testing.T, code, name string, priority int) string {
	t.Helper()
	ctx := context.Background()
	l, err := e.languages.Create(ctx, LanguageInput{Code: code, Name: name})
	require.NoError(t, err)
	require.NoError(t, e.languages.Activate(ctx, l.ID, priority))
	return l.ID
}

// verifiedWaypoint submits and verifies a waypoint with a detail in one
// language.
func (e *env) verifiedWaypoint(t *testing.T, langID, title, text string) string {
	t.Helper()
	ctx := context.Background()
	w, d, err := e.content.CreateWaypoint(ctx, DetailInput{
		LanguageID: langID, Title: title, Text: text, UserID: "usr-1",
	})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyWaypointDetail(ctx, d.ID))
	return w.ID
}

func TestVerifiedDetailBecomesSearchable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)

	w, d, err := e.content.CreateWaypoint(ctx, DetailInput{
		LanguageID: en,
		Title:      "Memorial Fountain",
		Text:       "A fountain commemorating the flood of 1824.",
		UserID:     "usr-1",
	})
	require.NoError(t, err)

	// Pending revisions are invisible.
	_, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, w.ID, "en")
	require.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, e.moderation.VerifyWaypointDetail(ctx, d.ID))

	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, w.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, "Memorial Fountain", hit.Title)
	assert.Equal(t, d.ID, hit.DetailID)
	assert.Equal(t, "memorial-fountain", hit.Slug)
	assert.Equal(t, "en", hit.LanguageCode)
	assert.Equal(t, []string{"en"}, hit.AvailableLanguages)
	assert.False(t, hit.HasLocation)
}

func TestNewerVerifiedRevisionReplacesDocument(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)
	wID := e.verifiedWaypoint(t, en, "Old Mill", "The original mill.")

	d2, err := e.content.CreateWaypointDetail(ctx, wID, DetailInput{
		LanguageID: en, Title: "Old Mill Museum", Text: "Now a museum.", UserID: "usr-2",
	})
	require.NoError(t, err)

	// Until verified, the older revision stays canonical.
	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	assert.Equal(t, "Old Mill", hit.Title)

	require.NoError(t, e.moderation.VerifyWaypointDetail(ctx, d2.ID))

	hit, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	assert.Equal(t, "Old Mill Museum", hit.Title)
	assert.Equal(t, d2.ID, hit.DetailID)
}

func TestVerifiedLocationAppearsInDocument(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)
	wID := e.verifiedWaypoint(t, en, "Harbor Crane", "")

	loc, err := e.content.CreateLocation(ctx, wID, LocationInput{
		Latitude: 53.5436, Longitude: 9.9805, UserID: "usr-1",
	})
	require.NoError(t, err)

	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	assert.False(t, hit.HasLocation)

	require.NoError(t, e.moderation.VerifyLocation(ctx, loc.ID, wID))

	hit, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	assert.True(t, hit.HasLocation)
	assert.InDelta(t, 53.5436, hit.Latitude, 1e-6)
	assert.InDelta(t, 9.9805, hit.Longitude, 1e-6)
}

func TestPreferredLanguageFallback(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)
	de := e.activeLanguage(t, "de", "Deutsch", 1)

	wID := e.verifiedWaypoint(t, en, "City Gate", "")
	dDe, err := e.content.CreateWaypointDetail(ctx, wID, DetailInput{
		LanguageID: de, Title: "Stadttor", UserID: "usr-1",
	})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyWaypointDetail(ctx, dDe.ID))

	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "de")
	require.NoError(t, err)
	assert.Equal(t, "Stadttor", hit.Title)
	assert.ElementsMatch(t, []string{"en", "de"}, hit.AvailableLanguages)

	// Unknown preference falls back to the highest-priority language.
	hit, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "fr")
	require.NoError(t, err)
	assert.Equal(t, "City Gate", hit.Title)
}

func TestVerifiedTagFlowsIntoWaypointSearch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)

	tag, td, err := e.content.CreateTag(ctx, DetailInput{
		LanguageID: en, Title: "Industrial Heritage", UserID: "usr-1",
	})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyTagDetail(ctx, td.ID))

	wID := e.verifiedWaypoint(t, en, "Gasometer", "")
	require.NoError(t, e.content.SuggestWaypointTag(ctx, wID, tag.ID))

	// Pending associations are not projected.
	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	assert.Empty(t, hit.TagIDs)

	require.NoError(t, e.moderation.VerifyWaypointTag(ctx, wID, tag.ID))

	hit, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{tag.ID}, hit.TagIDs)

	// Free-text search through the tag name finds the waypoint.
	page, err := e.reads.Search(ctx, search.DocTypeWaypoint, "industrial", "en", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, wID, page.Items[0].EntityID)
}

func TestDeleteTagRefreshesTaggedWaypoints(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)

	tag, td, err := e.content.CreateTag(ctx, DetailInput{LanguageID: en, Title: "Bridges"})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyTagDetail(ctx, td.ID))

	wID := e.verifiedWaypoint(t, en, "Iron Bridge", "")
	require.NoError(t, e.content.SuggestWaypointTag(ctx, wID, tag.ID))
	require.NoError(t, e.moderation.VerifyWaypointTag(ctx, wID, tag.ID))

	require.NoError(t, e.moderation.DeleteTag(ctx, tag.ID))

	_, err = e.reads.FindByID(ctx, search.DocTypeTag, tag.ID, "en")
	require.ErrorIs(t, err, errors.ErrNotFound)

	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	assert.Empty(t, hit.TagIDs)
}

func TestDeleteWaypointRetractsAllLanguages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)
	de := e.activeLanguage(t, "de", "Deutsch", 1)

	wID := e.verifiedWaypoint(t, en, "Watchtower", "")
	dDe, err := e.content.CreateWaypointDetail(ctx, wID, DetailInput{LanguageID: de, Title: "Wachturm"})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyWaypointDetail(ctx, dDe.ID))

	require.NoError(t, e.moderation.DeleteWaypoint(ctx, wID))

	_, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.ErrorIs(t, err, errors.ErrNotFound)
	_, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "de")
	require.ErrorIs(t, err, errors.ErrNotFound)

	// Deleting again surfaces the store's not-found.
	err = e.moderation.DeleteWaypoint(ctx, wID)
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestVanishedDetailIsQuietNoOp(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)

	wID := e.verifiedWaypoint(t, en, "Quarry", "")
	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	detailID := hit.DetailID

	require.NoError(t, e.moderation.DeleteWaypoint(ctx, wID))

	// A sync request for a revision whose entity vanished mid-flight
	// swallows the miss instead of failing.
	require.NoError(t, e.syncer.UpsertDetail(ctx, search.DocTypeWaypoint, detailID))
	_, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLanguageDeactivateActivateRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)
	de := e.activeLanguage(t, "de", "Deutsch", 1)

	wID := e.verifiedWaypoint(t, en, "Salt Works", "")
	dDe, err := e.content.CreateWaypointDetail(ctx, wID, DetailInput{LanguageID: de, Title: "Saline"})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyWaypointDetail(ctx, dDe.ID))

	require.NoError(t, e.languages.Deactivate(ctx, de))

	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "de")
	require.NoError(t, err)
	assert.Equal(t, "Salt Works", hit.Title, "deactivated language must fall back")
	assert.Equal(t, []string{"en"}, hit.AvailableLanguages)

	// Deactivating twice is a conflict.
	err = e.languages.Deactivate(ctx, de)
	require.ErrorIs(t, err, errors.ErrConflict)

	// Re-activation restores the projection from the store.
	require.NoError(t, e.languages.Activate(ctx, de, 1))
	hit, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "de")
	require.NoError(t, err)
	assert.Equal(t, "Saline", hit.Title)
}

func TestUserDeletionAnonymizesDocuments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)

	w, d, err := e.content.CreateWaypoint(ctx, DetailInput{
		LanguageID: en, Title: "Shipyard", UserID: "usr-7",
	})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyWaypointDetail(ctx, d.ID))

	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, w.ID, "en")
	require.NoError(t, err)
	require.NotNil(t, hit.DetailUserID)
	assert.Equal(t, "usr-7", *hit.DetailUserID)

	require.NoError(t, e.moderation.DeleteUser(ctx, "usr-7"))

	// The document survives with ownership stripped; the canonical
	// revision does not change.
	hit, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, w.ID, "en")
	require.NoError(t, err)
	assert.Nil(t, hit.DetailUserID)
	assert.Equal(t, d.ID, hit.DetailID)
	assert.Equal(t, "Shipyard", hit.Title)
}

func TestMediaFileProjection(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)

	m, d, err := e.content.CreateMedia(ctx, DetailInput{
		LanguageID: en, Title: "Dock Workers 1923", UserID: "usr-1",
	})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyMediaDetail(ctx, d.ID))

	f, err := e.content.CreateMediaFile(ctx, m.ID, FileInput{
		FilePath: "media/dock-workers.jpg", FileType: "image/jpeg", UserID: "usr-1",
	})
	require.NoError(t, err)

	hit, err := e.reads.FindByID(ctx, search.DocTypeMedia, m.ID, "en")
	require.NoError(t, err)
	assert.Empty(t, hit.FileID, "unverified file must not be projected")

	require.NoError(t, e.moderation.VerifyMediaFile(ctx, f.ID, m.ID))

	hit, err = e.reads.FindByID(ctx, search.DocTypeMedia, m.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, f.ID, hit.FileID)
	assert.Equal(t, "media/dock-workers.jpg", hit.FilePath)
	assert.Equal(t, "image/jpeg", hit.FileType)
}

func TestPageLookupBySlug(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)

	p, d, err := e.content.CreatePage(ctx, DetailInput{
		LanguageID: en, Title: "About the Project", Text: "Who we are.",
	})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyPageDetail(ctx, d.ID))

	hit, err := e.reads.FindBySlug(ctx, search.DocTypePage, "about-the-project", "en")
	require.NoError(t, err)
	assert.Equal(t, p.ID, hit.EntityID)
	assert.Equal(t, "About the Project", hit.Title)
}

func TestFindInBoundingBox(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)

	inside := e.verifiedWaypoint(t, en, "Market Square", "")
	locIn, err := e.content.CreateLocation(ctx, inside, LocationInput{Latitude: 52.52, Longitude: 13.40})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyLocation(ctx, locIn.ID, inside))

	outside := e.verifiedWaypoint(t, en, "Lighthouse", "")
	locOut, err := e.content.CreateLocation(ctx, outside, LocationInput{Latitude: 54.18, Longitude: 7.89})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyLocation(ctx, locOut.ID, outside))

	summaries, err := e.reads.FindInBoundingBox(ctx,
		domain.Coordinate{Latitude: 53.0, Longitude: 13.0},
		domain.Coordinate{Latitude: 52.0, Longitude: 14.0},
		"en")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, inside, summaries[0].WaypointID)
	assert.Equal(t, "Market Square", summaries[0].Title)
	assert.Equal(t, "en", summaries[0].LanguageCode)
	assert.InDelta(t, 52.52, summaries[0].Coordinate.Latitude, 1e-6)
}

func TestReindexAllRebuildsFromStore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)
	wID := e.verifiedWaypoint(t, en, "Granary", "")

	// Fresh engine, as after losing the index directory.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := search.NewEngine("", log)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	syncer := NewSyncer(e.store, engine, log)
	require.NoError(t, syncer.ReindexAll(ctx))

	reader := search.NewReader(engine, log)
	hit, err := reader.FindByID(search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	assert.Equal(t, "Granary", hit.Title)
}

func TestUnverifiedTranslationStaysInvisible(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)
	de := e.activeLanguage(t, "de", "Deutsch", 1)

	wID := e.verifiedWaypoint(t, en, "Customs House", "")
	_, err := e.content.CreateWaypointDetail(ctx, wID, DetailInput{
		LanguageID: de, Title: "Zollhaus", UserID: "usr-1",
	})
	require.NoError(t, err)

	// The German revision is still pending: a German reader gets the
	// English document, and German is not advertised as available.
	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "de")
	require.NoError(t, err)
	assert.Equal(t, "Customs House", hit.Title)
	assert.Equal(t, "en", hit.LanguageCode)
	assert.Equal(t, []string{"en"}, hit.AvailableLanguages)
}

func TestReprioritizeRefreshesDocumentPriorities(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	en := e.activeLanguage(t, "en", "English", 0)
	de := e.activeLanguage(t, "de", "Deutsch", 1)

	wID := e.verifiedWaypoint(t, en, "Town Hall", "")
	dDe, err := e.content.CreateWaypointDetail(ctx, wID, DetailInput{LanguageID: de, Title: "Rathaus"})
	require.NoError(t, err)
	require.NoError(t, e.moderation.VerifyWaypointDetail(ctx, dDe.ID))

	require.NoError(t, e.languages.Reprioritize(ctx, []string{de, en}))

	// The priority baked into every document follows the new order
	// without any explicit reindex.
	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "de")
	require.NoError(t, err)
	assert.Equal(t, 0, hit.LanguagePriority)
	hit, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "en")
	require.NoError(t, err)
	assert.Equal(t, 1, hit.LanguagePriority)

	// Fallback resolution follows the stored priorities too.
	hit, err = e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "")
	require.NoError(t, err)
	assert.Equal(t, "Rathaus", hit.Title)
}

func TestActivateIntoOccupiedSlotKeepsRanksDense(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeLanguage(t, "en", "English", 0)
	de := e.activeLanguage(t, "de", "Deutsch", 1)

	wID := e.verifiedWaypoint(t, de, "Hafenspeicher", "")

	fr, err := e.languages.Create(ctx, LanguageInput{Code: "fr", Name: "Français"})
	require.NoError(t, err)
	require.NoError(t, e.languages.Activate(ctx, fr.ID, 1))

	// German moved down to keep priorities unique and dense.
	active, err := e.store.ListActiveLanguages(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	for i, l := range active {
		require.NotNil(t, l.Priority)
		assert.Equal(t, i, *l.Priority)
	}
	assert.Equal(t, "fr", active[1].Code)
	assert.Equal(t, "de", active[2].Code)

	// The displaced language's documents carry the new priority.
	hit, err := e.reads.FindByID(ctx, search.DocTypeWaypoint, wID, "de")
	require.NoError(t, err)
	assert.Equal(t, 2, hit.LanguagePriority)
}

func TestLanguageCodeNormalization(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	l, err := e.languages.Create(ctx, LanguageInput{Code: "deu", Name: "Deutsch"})
	require.NoError(t, err)
	assert.Equal(t, "de", l.Code)

	// Locale code collapses to its base language.
	l, err = e.languages.Create(ctx, LanguageInput{Code: "pt_BR", Name: "Português"})
	require.NoError(t, err)
	assert.Equal(t, "pt", l.Code)

	// An unrecognized 2-3 character code is kept verbatim.
	l, err = e.languages.Create(ctx, LanguageInput{Code: "qqx", Name: "Testing"})
	require.NoError(t, err)
	assert.Equal(t, "qqx", l.Code)

	_, err = e.languages.Create(ctx, LanguageInput{Code: "nonsense", Name: "Nope"})
	require.Error(t, err)
}
