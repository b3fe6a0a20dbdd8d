package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/mediabot/internal/media"
	"github.com/memohai/mediabot/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStore(t *testing.T, rec *metrics.Recorder, captions ...string) *media.Store {
	t.Helper()
	store := media.NewStore(nil, filepath.Join(t.TempDir(), "media_db.json"), rec)
	require.NoError(t, store.Load())
	for i, caption := range captions {
		record, err := media.NewRecord("file-"+caption, media.MediaTypePhoto, caption, "alice")
		require.NoError(t, err, "record %d", i)
		require.NoError(t, store.Append(context.Background(), record))
	}
	return store
}

func newEcho(handlers ...interface{ Register(*echo.Echo) }) *echo.Echo {
	e := echo.New()
	for _, h := range handlers {
		h.Register(e)
	}
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestPingRoutes(t *testing.T) {
	t.Parallel()
	e := newEcho(NewPingHandler(discardLogger()))

	rec := serve(e, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, LivenessMessage, body["message"])

	rec = serve(e, http.MethodGet, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(e, http.MethodHead, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMediaListReturnsAllRecords(t *testing.T) {
	t.Parallel()
	store := seededStore(t, nil, "Sunset", "beach day")
	e := newEcho(NewMediaHandler(discardLogger(), store, nil))

	rec := serve(e, http.MethodGet, "/media")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []media.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, store.All(), got)
}

func TestMediaListEmptyStoreIsEmptyArray(t *testing.T) {
	t.Parallel()
	store := seededStore(t, nil)
	e := newEcho(NewMediaHandler(discardLogger(), store, nil))

	rec := serve(e, http.MethodGet, "/media")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestMediaSearch(t *testing.T) {
	t.Parallel()
	store := seededStore(t, nil, "Sunset at the beach", "City lights", "beach volleyball")
	e := newEcho(NewMediaHandler(discardLogger(), store, nil))

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "case insensitive", query: "BEACH", want: []string{"Sunset at the beach", "beach volleyball"}},
		{name: "no match", query: "mountain", want: []string{}},
		{name: "empty matches all", query: "", want: []string{"Sunset at the beach", "City lights", "beach volleyball"}},
		{name: "encoded space", query: "city%20lights", want: []string{"City lights"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, "/search?q="+tc.query)
			require.Equal(t, http.StatusOK, rec.Code)
			var got []media.Record
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			captions := make([]string, 0, len(got))
			for _, r := range got {
				captions = append(captions, r.Description)
			}
			assert.Equal(t, tc.want, captions)
		})
	}
}

func TestMediaSearchRequiresQuery(t *testing.T) {
	t.Parallel()
	store := seededStore(t, nil, "anything")
	e := newEcho(NewMediaHandler(discardLogger(), store, nil))

	rec := serve(e, http.MethodGet, "/search")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "query parameter q is required", body.Message)
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg)
	store := seededStore(t, recorder, "hello")
	e := newEcho(NewMediaHandler(discardLogger(), store, recorder), NewMetricsHandler(reg))

	require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/search?q=hel").Code)

	rec := serve(e, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `mediabot_search_total{source="http"} 1`)
	assert.Contains(t, body, "mediabot_store_records 1")
}
