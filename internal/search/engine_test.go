package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footprintsforfreedom/footprints-server/internal/errors"
)

func TestEnsureIndexIsIdempotent(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.EnsureIndex(DocTypeTag, "en", []string{"en"}))
	require.NoError(t, e.EnsureIndex(DocTypeTag, "en", []string{"en"}))

	assert.True(t, e.HasIndex(DocTypeTag, "en"))
	assert.Equal(t, 1, e.FamilyIndexCount(DocTypeTag))
}

func TestBulkUpsertAndDelete(t *testing.T) {
	e := newTestEngine(t)
	en := testLang("lng_en", "en", 0)

	indexDocs(t, e, DocTypeTag, []string{"en"},
		testTagDoc(t, "tag_1", "Resistance", en),
		testTagDoc(t, "tag_2", "Memorial", en),
	)

	count, err := e.DocCount(DocTypeTag)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	// Deleting one existing and one never-indexed key must both succeed.
	require.NoError(t, e.Bulk(DocTypeTag, "en", []BulkOp{
		{Key: "tag_1"},
		{Key: "tag_never_existed"},
	}))

	count, err = e.DocCount(DocTypeTag)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestBulkUpsertReplacesDocument(t *testing.T) {
	e := newTestEngine(t)
	en := testLang("lng_en", "en", 0)

	indexDocs(t, e, DocTypeTag, []string{"en"}, testTagDoc(t, "tag_1", "Old Title", en))
	indexDocs(t, e, DocTypeTag, []string{"en"}, testTagDoc(t, "tag_1", "New Title", en))

	count, err := e.DocCount(DocTypeTag)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	r := NewReader(e, testLogger())
	hit, err := r.FindByID(DocTypeTag, "tag_1", "en")
	require.NoError(t, err)
	assert.Equal(t, "New Title", hit.Title)
}

func TestBulkOnMissingIndex(t *testing.T) {
	e := newTestEngine(t)

	err := e.Bulk(DocTypeTag, "fr", []BulkOp{{Key: "tag_1", Doc: map[string]any{}}})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDeleteIndexRemovesPerLanguageIndex(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.EnsureIndex(DocTypeTag, "en", []string{"en"}))
	require.NoError(t, e.DeleteIndex(DocTypeTag, "en"))
	assert.False(t, e.HasIndex(DocTypeTag, "en"))

	// Already gone: still fine.
	require.NoError(t, e.DeleteIndex(DocTypeTag, "en"))
}

func TestDropLanguageOnSharedIndex(t *testing.T) {
	e := newTestEngine(t)
	en := testLang("lng_en", "en", 0)
	de := testLang("lng_de", "de", 1)

	indexDocs(t, e, DocTypeWaypoint, []string{"en", "de"},
		testWaypointDoc(t, "way_1", "Old Town", "", en, nil),
		testWaypointDoc(t, "way_1", "Altstadt", "", de, nil),
		testWaypointDoc(t, "way_2", "Harbor", "", en, nil),
	)

	require.NoError(t, e.DropLanguage(DocTypeWaypoint, "de", "lng_de"))

	count, err := e.DocCount(DocTypeWaypoint)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	// The shared index itself survives.
	assert.True(t, e.HasIndex(DocTypeWaypoint, "de"))
}

func TestDropLanguageOnPerLanguageFamilyDropsIndex(t *testing.T) {
	e := newTestEngine(t)
	de := testLang("lng_de", "de", 1)

	indexDocs(t, e, DocTypeTag, []string{"de"}, testTagDoc(t, "tag_1", "Denkmal", de))

	require.NoError(t, e.DropLanguage(DocTypeTag, "de", "lng_de"))
	assert.False(t, e.HasIndex(DocTypeTag, "de"))
}

func TestReopenPersistedIndexes(t *testing.T) {
	dir := t.TempDir()
	en := testLang("lng_en", "en", 0)

	e, err := NewEngine(dir, testLogger())
	require.NoError(t, err)
	indexDocs(t, e, DocTypeTag, []string{"en"}, testTagDoc(t, "tag_1", "Resistance", en))
	indexDocs(t, e, DocTypeWaypoint, []string{"en"}, testWaypointDoc(t, "way_1", "Old Town", "", en, nil))
	require.NoError(t, e.Close())

	reopened, err := NewEngine(dir, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	assert.True(t, reopened.HasIndex(DocTypeTag, "en"))
	assert.True(t, reopened.HasIndex(DocTypeWaypoint, "en"))

	count, err := reopened.DocCount(DocTypeTag)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
