package search

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine("", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func testLang(id, code string, priority int) *domain.Language {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Language{
		ID:        id,
		Code:      code,
		Name:      code,
		Priority:  &priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testTagDoc(t *testing.T, tagID, title string, lang *domain.Language) *TagDocument {
	t.Helper()
	doc, err := ProjectTag(
		&domain.Tag{ID: tagID, CreatedAt: testNow, UpdatedAt: testNow},
		&domain.TagDetail{
			ID:         "det_" + tagID + "_" + lang.Code,
			TagID:      tagID,
			LanguageID: lang.ID,
			Title:      title,
			UserID:     strPtr("user1"),
			VerifiedAt: timePtr(testNow),
			CreatedAt:  testNow,
			UpdatedAt:  testNow,
		},
		lang,
	)
	require.NoError(t, err)
	return doc
}

func testPageDoc(t *testing.T, pageID, title string, lang *domain.Language) *PageDocument {
	t.Helper()
	doc, err := ProjectPage(
		&domain.Page{ID: pageID, CreatedAt: testNow, UpdatedAt: testNow},
		&domain.PageDetail{
			ID:         "det_" + pageID + "_" + lang.Code,
			PageID:     pageID,
			LanguageID: lang.ID,
			Title:      title,
			UserID:     strPtr("user1"),
			VerifiedAt: timePtr(testNow),
			CreatedAt:  testNow,
			UpdatedAt:  testNow,
		},
		lang,
	)
	require.NoError(t, err)
	return doc
}

func testWaypointDoc(t *testing.T, wpID, title, text string, lang *domain.Language, tagIDs []string) *WaypointDocument {
	t.Helper()
	doc, err := ProjectWaypoint(
		&domain.Waypoint{ID: wpID, CreatedAt: testNow, UpdatedAt: testNow},
		&domain.WaypointDetail{
			ID:         "det_" + wpID + "_" + lang.Code,
			WaypointID: wpID,
			LanguageID: lang.ID,
			Title:      title,
			Text:       text,
			UserID:     strPtr("user1"),
			VerifiedAt: timePtr(testNow),
			CreatedAt:  testNow,
			UpdatedAt:  testNow,
		},
		&domain.Location{
			ID:         "loc_" + wpID,
			WaypointID: wpID,
			Latitude:   52.52,
			Longitude:  13.405,
			VerifiedAt: timePtr(testNow),
			CreatedAt:  testNow,
			UpdatedAt:  testNow,
		},
		lang,
		tagIDs,
	)
	require.NoError(t, err)
	return doc
}

// indexDocs ensures the right indexes exist and writes the documents
// through the engine's batch path.
func indexDocs(t *testing.T, e *Engine, dt DocType, activeCodes []string, docs ...Document) {
	t.Helper()
	byLang := make(map[string][]BulkOp)
	for _, doc := range docs {
		meta := doc.LanguageMeta()
		require.NoError(t, e.EnsureIndex(dt, meta.Code, activeCodes))
		byLang[meta.Code] = append(byLang[meta.Code], BulkOp{
			Key: Key(StrategyFor(dt), doc.EntityID(), meta.ID),
			Doc: doc.ToMap(),
		})
	}
	for code, ops := range byLang {
		require.NoError(t, e.Bulk(dt, code, ops))
	}
}
