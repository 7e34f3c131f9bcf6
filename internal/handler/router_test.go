package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallikerijaved/CareGpt/internal/handler"
	"github.com/hallikerijaved/CareGpt/internal/model/intent"
	"github.com/hallikerijaved/CareGpt/internal/service/pipeline"
	sessionService "github.com/hallikerijaved/CareGpt/internal/service/session"
)

type cannedResolver struct{}

func (cannedResolver) Resolve(_ context.Context, raw string) (pipeline.Resolution, error) {
	return pipeline.Resolution{Query: raw, Tag: "greeting", Matched: true, Text: "Hi!"}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := intent.NewMemoryStore(intent.Seed())
	require.NoError(t, err)
	return handler.NewRouter(handler.Deps{
		Sessions: sessionService.NewService(cannedResolver{}, sessionService.Options{}),
		Intents:  store,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestRouterHealthz(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["speech"])
}

func TestRouterMountsAPI(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/"+created.ID+"/messages", strings.NewReader(`{"message":"hello"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	for path, want := range map[string]int{
		"/api/intents":       http.StatusOK,
		"/api/resources":     http.StatusOK,
		"/api/speech/health": http.StatusServiceUnavailable,
		"/api/nope":          http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/session", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
