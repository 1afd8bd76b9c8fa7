package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type waypointCreatedPayload struct {
	Waypoint struct {
		ID string `json:"id"`
	} `json:"waypoint"`
	Detail struct {
		ID         string `json:"id"`
		WaypointID string `json:"waypoint_id"`
		Title      string `json:"title"`
		Slug       string `json:"slug"`
	} `json:"detail"`
}

type documentPayload struct {
	ID                 string   `json:"id"`
	Language           string   `json:"language"`
	Title              string   `json:"title"`
	Text               string   `json:"text"`
	Slug               string   `json:"slug"`
	TagIDs             []string `json:"tag_ids"`
	AvailableLanguages []string `json:"available_languages"`
	Location           *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

type pagePayload struct {
	Items    []documentPayload `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func (ts *testServer) createWaypoint(t *testing.T, langID, title, text string) waypointCreatedPayload {
	t.Helper()

	resp := ts.api.Post("/api/v1/waypoints", map[string]any{
		"language_id": langID,
		"title":       title,
		"text":        text,
	})
	require.Equal(t, http.StatusOK, resp.Code, "create waypoint failed: %s", resp.Body.String())

	var envelope testEnvelope[waypointCreatedPayload]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NotEmpty(t, envelope.Data.Waypoint.ID)
	require.NotEmpty(t, envelope.Data.Detail.ID)
	return envelope.Data
}

func (ts *testServer) verifyWaypointDetail(t *testing.T, detailID string) {
	t.Helper()
	resp := ts.api.Post("/api/v1/waypoint-details/" + detailID + "/verify")
	require.Equal(t, http.StatusNoContent, resp.Code, "verify failed: %s", resp.Body.String())
}

func TestCreateWaypoint_UnknownLanguageRejected(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/waypoints", map[string]any{
		"language_id": "lang_missing",
		"title":       "Somewhere",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
}

func TestCreateWaypoint_MissingTitleRejected(t *testing.T) {
	ts := setupTestServer(t)
	langID := ts.createActiveLanguage(t, "en", "English", 0)

	resp := ts.api.Post("/api/v1/waypoints", map[string]any{
		"language_id": langID,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
}

func TestWaypointLifecycle_SubmitVerifySearch(t *testing.T) {
	ts := setupTestServer(t)
	langID := ts.createActiveLanguage(t, "en", "English", 0)

	created := ts.createWaypoint(t, langID, "Harbor Memorial", "A memorial at the old harbor.")

	// Pending content is not searchable.
	resp := ts.api.Get("/api/v1/waypoints/search?q=harbor")
	require.Equal(t, http.StatusOK, resp.Code)
	var page testEnvelope[pagePayload]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Data.Total)

	ts.verifyWaypointDetail(t, created.Detail.ID)

	resp = ts.api.Get("/api/v1/waypoints/search?q=harbor")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Equal(t, 1, page.Data.Total)
	assert.Equal(t, created.Waypoint.ID, page.Data.Items[0].ID)
	assert.Equal(t, "Harbor Memorial", page.Data.Items[0].Title)
	assert.Equal(t, "harbor-memorial", page.Data.Items[0].Slug)

	// ID and slug lookups resolve the same document.
	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	var doc testEnvelope[documentPayload]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Equal(t, "Harbor Memorial", doc.Data.Title)
	assert.Equal(t, []string{"en"}, doc.Data.AvailableLanguages)

	resp = ts.api.Get("/api/v1/waypoints/slug/harbor-memorial")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Equal(t, created.Waypoint.ID, doc.Data.ID)
}

func TestWaypointLookup_UnknownIDReturns404(t *testing.T) {
	ts := setupTestServer(t)
	ts.createActiveLanguage(t, "en", "English", 0)

	resp := ts.api.Get("/api/v1/waypoints/wp_missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Equal(t, EnvelopeVersion, envelope.Version)
}

func TestLocationFlow_VerifiedLocationInDocument(t *testing.T) {
	ts := setupTestServer(t)
	langID := ts.createActiveLanguage(t, "en", "English", 0)
	created := ts.createWaypoint(t, langID, "Old Lighthouse", "")
	ts.verifyWaypointDetail(t, created.Detail.ID)

	resp := ts.api.Post("/api/v1/waypoints/"+created.Waypoint.ID+"/locations", map[string]any{
		"latitude":  53.5436,
		"longitude": 9.9805,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var loc testEnvelope[struct {
		ID string `json:"id"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &loc))
	require.NotEmpty(t, loc.Data.ID)

	// Unverified locations are not projected.
	var doc testEnvelope[documentPayload]
	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Nil(t, doc.Data.Location)

	resp = ts.api.Post("/api/v1/waypoints/" + created.Waypoint.ID + "/locations/" + loc.Data.ID + "/verify")
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	require.NotNil(t, doc.Data.Location)
	assert.InDelta(t, 53.5436, doc.Data.Location.Latitude, 0.0001)
	assert.InDelta(t, 9.9805, doc.Data.Location.Longitude, 0.0001)

	// The verified location shows up on the map endpoint.
	resp = ts.api.Get("/api/v1/waypoints/map?tl_lat=54&tl_lon=9&br_lat=53&br_lon=11")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var pins testEnvelope[struct {
		Waypoints []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"waypoints"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &pins))
	require.Len(t, pins.Data.Waypoints, 1)
	assert.Equal(t, created.Waypoint.ID, pins.Data.Waypoints[0].ID)
	assert.Equal(t, "Old Lighthouse", pins.Data.Waypoints[0].Title)
}

func TestTagFlow_SuggestVerifyRemove(t *testing.T) {
	ts := setupTestServer(t)
	langID := ts.createActiveLanguage(t, "en", "English", 0)

	created := ts.createWaypoint(t, langID, "Salt Works", "Industrial history site.")
	ts.verifyWaypointDetail(t, created.Detail.ID)

	// Create and verify a tag.
	resp := ts.api.Post("/api/v1/tags", map[string]any{
		"language_id": langID,
		"title":       "Industry",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var tag testEnvelope[struct {
		Tag struct {
			ID string `json:"id"`
		} `json:"tag"`
		Detail struct {
			ID string `json:"id"`
		} `json:"detail"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tag))

	resp = ts.api.Post("/api/v1/tag-details/" + tag.Data.Detail.ID + "/verify")
	require.Equal(t, http.StatusNoContent, resp.Code)

	// Suggest the tag; still invisible until verified.
	resp = ts.api.Post("/api/v1/waypoints/" + created.Waypoint.ID + "/tags/" + tag.Data.Tag.ID)
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	var doc testEnvelope[documentPayload]
	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Empty(t, doc.Data.TagIDs)

	resp = ts.api.Post("/api/v1/waypoints/" + created.Waypoint.ID + "/tags/" + tag.Data.Tag.ID + "/verify")
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Equal(t, []string{tag.Data.Tag.ID}, doc.Data.TagIDs)

	// Removal keeps the tag visible until a moderator confirms.
	resp = ts.api.Delete("/api/v1/waypoints/" + created.Waypoint.ID + "/tags/" + tag.Data.Tag.ID)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Equal(t, []string{tag.Data.Tag.ID}, doc.Data.TagIDs)

	resp = ts.api.Post("/api/v1/waypoints/" + created.Waypoint.ID + "/tags/" + tag.Data.Tag.ID + "/confirm-removal")
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Empty(t, doc.Data.TagIDs)
}

func TestDeleteWaypoint_RemovedFromSearch(t *testing.T) {
	ts := setupTestServer(t)
	langID := ts.createActiveLanguage(t, "en", "English", 0)
	created := ts.createWaypoint(t, langID, "Vanishing Point", "")
	ts.verifyWaypointDetail(t, created.Detail.ID)

	resp := ts.api.Delete("/api/v1/waypoints/" + created.Waypoint.ID)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Deleting again reports not found.
	resp = ts.api.Delete("/api/v1/waypoints/" + created.Waypoint.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPageFlow_CreateVerifyList(t *testing.T) {
	ts := setupTestServer(t)
	langID := ts.createActiveLanguage(t, "en", "English", 0)

	resp := ts.api.Post("/api/v1/pages", map[string]any{
		"language_id": langID,
		"title":       "About",
		"text":        "About this project.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var page testEnvelope[struct {
		Page struct {
			ID string `json:"id"`
		} `json:"page"`
		Detail struct {
			ID string `json:"id"`
		} `json:"detail"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))

	resp = ts.api.Post("/api/v1/page-details/" + page.Data.Detail.ID + "/verify")
	require.Equal(t, http.StatusNoContent, resp.Code)

	var list testEnvelope[pagePayload]
	resp = ts.api.Get("/api/v1/pages")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Equal(t, 1, list.Data.Total)
	assert.Equal(t, "About", list.Data.Items[0].Title)

	resp = ts.api.Get("/api/v1/pages/slug/about")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestMediaFlow_FileProjection(t *testing.T) {
	ts := setupTestServer(t)
	langID := ts.createActiveLanguage(t, "en", "English", 0)

	resp := ts.api.Post("/api/v1/media", map[string]any{
		"language_id": langID,
		"title":       "Harbor Photo",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var media testEnvelope[struct {
		Media struct {
			ID string `json:"id"`
		} `json:"media"`
		Detail struct {
			ID string `json:"id"`
		} `json:"detail"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &media))

	resp = ts.api.Post("/api/v1/media-details/" + media.Data.Detail.ID + "/verify")
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Post("/api/v1/media/"+media.Data.Media.ID+"/files", map[string]any{
		"file_path": "photos/harbor.jpg",
		"file_type": "image/jpeg",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var file testEnvelope[struct {
		ID string `json:"id"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &file))

	resp = ts.api.Post("/api/v1/media/" + media.Data.Media.ID + "/files/" + file.Data.ID + "/verify")
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	var doc testEnvelope[struct {
		File *struct {
			Path     string `json:"path"`
			MimeType string `json:"mime_type"`
		} `json:"file"`
	}]
	resp = ts.api.Get("/api/v1/media/" + media.Data.Media.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	require.NotNil(t, doc.Data.File)
	assert.Equal(t, "photos/harbor.jpg", doc.Data.File.Path)
	assert.Equal(t, "image/jpeg", doc.Data.File.MimeType)
}

func TestDeleteUser_ContentStaysPublished(t *testing.T) {
	ts := setupTestServer(t)
	langID := ts.createActiveLanguage(t, "en", "English", 0)

	resp := ts.api.Post("/api/v1/waypoints", map[string]any{
		"language_id": langID,
		"title":       "Contributed Site",
		"user_id":     "user_42",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var created testEnvelope[waypointCreatedPayload]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	ts.verifyWaypointDetail(t, created.Data.Detail.ID)

	resp = ts.api.Delete("/api/v1/users/user_42")
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	var doc testEnvelope[documentPayload]
	resp = ts.api.Get("/api/v1/waypoints/" + created.Data.Waypoint.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Equal(t, "Contributed Site", doc.Data.Title)
}

func TestLanguageEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	enID := ts.createActiveLanguage(t, "en", "English", 0)
	deID := ts.createActiveLanguage(t, "de", "Deutsch", 1)

	var list testEnvelope[struct {
		Languages []languagePayload `json:"languages"`
	}]
	resp := ts.api.Get("/api/v1/languages")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Data.Languages, 2)
	assert.Equal(t, "en", list.Data.Languages[0].Code)
	assert.Equal(t, "de", list.Data.Languages[1].Code)

	// Swap priorities.
	resp = ts.api.Put("/api/v1/languages/priorities", map[string]any{
		"ordered_ids": []string{deID, enID},
	})
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/languages")
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Equal(t, "de", list.Data.Languages[0].Code)

	// Rename.
	resp = ts.api.Patch("/api/v1/languages/"+deID, map[string]any{
		"code": "de",
		"name": "German",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var lang testEnvelope[languagePayload]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &lang))
	assert.Equal(t, "German", lang.Data.Name)

	// Deactivating twice conflicts.
	resp = ts.api.Post("/api/v1/languages/" + deID + "/deactivate")
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Post("/api/v1/languages/" + deID + "/deactivate")
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "CONFLICT", envelope.Code)
}

func TestPreferredLanguageQuery(t *testing.T) {
	ts := setupTestServer(t)
	enID := ts.createActiveLanguage(t, "en", "English", 0)
	deID := ts.createActiveLanguage(t, "de", "Deutsch", 1)

	created := ts.createWaypoint(t, enID, "Town Hall", "")
	ts.verifyWaypointDetail(t, created.Detail.ID)

	resp := ts.api.Post("/api/v1/waypoints/"+created.Waypoint.ID+"/details", map[string]any{
		"language_id": deID,
		"title":       "Rathaus",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var detail testEnvelope[struct {
		ID string `json:"id"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	ts.verifyWaypointDetail(t, detail.Data.ID)

	var doc testEnvelope[documentPayload]

	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID + "?lang=de")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Equal(t, "Rathaus", doc.Data.Title)
	assert.ElementsMatch(t, []string{"en", "de"}, doc.Data.AvailableLanguages)

	// Unknown preference falls back to priority order.
	resp = ts.api.Get("/api/v1/waypoints/" + created.Waypoint.ID + "?lang=fr")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Equal(t, "Town Hall", doc.Data.Title)
}
