package api

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/service"
	"github.com/footprintsforfreedom/footprints-server/internal/store/sqlite"
)

// testEnvelope mirrors APIEnvelope with a typed data payload for
// decoding test responses.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	engine, err := search.NewEngine("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	syncer := service.NewSyncer(st, engine, logger)
	services := &Services{
		Search:     service.NewSearchService(st, engine, search.NewReader(engine, logger), logger),
		Content:    service.NewContentService(st, logger),
		Moderation: service.NewModerationService(st, syncer, logger),
		Language:   service.NewLanguageService(st, syncer, logger),
	}

	s := NewServer(st, services, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

// createActiveLanguage creates and activates a language through the API,
// returning its ID.
func (ts *testServer) createActiveLanguage(t *testing.T, code, name string, priority int) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/languages", map[string]any{
		"code": code,
		"name": name,
	})
	require.Equal(t, http.StatusOK, resp.Code, "create language failed: %s", resp.Body.String())

	var envelope testEnvelope[languagePayload]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NotEmpty(t, envelope.Data.ID)

	resp = ts.api.Post("/api/v1/languages/"+envelope.Data.ID+"/activate", map[string]any{
		"priority": priority,
	})
	require.Equal(t, http.StatusNoContent, resp.Code, "activate language failed: %s", resp.Body.String())

	return envelope.Data.ID
}

type languagePayload struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsRTL    bool   `json:"is_rtl"`
	Priority *int   `json:"priority"`
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// The plain health route uses the response package envelope, which
	// carries no version field; decode only the shared fields.
	var plain struct {
		Success bool `json:"success"`
		Data    struct {
			Status  string            `json:"status"`
			Indexes map[string]uint64 `json:"indexes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plain))
	assert.True(t, plain.Success)
	assert.Equal(t, "healthy", plain.Data.Status)
	assert.Contains(t, plain.Data.Indexes, "waypoint")
	assert.Contains(t, plain.Data.Indexes, "tag")
	assert.Contains(t, plain.Data.Indexes, "media")
	assert.Contains(t, plain.Data.Indexes, "page")
}

func TestOpenAPISpecAvailable(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Footprints API")
}

func TestCORSHeadersPresent(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://maps.example.org")
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
