package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangabot/manga/internal/config"
)

type fakeDiscord struct {
	connected bool
	guilds    int
}

func (f *fakeDiscord) Connected() (bool, int) { return f.connected, f.guilds }

func newTestServer() *Server {
	cfg := &config.WebConfig{Port: 7860}
	return NewServer(cfg, nil, &fakeDiscord{connected: true, guilds: 2})
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"guilds":2`)
}

func TestIndexEndpoint(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Manga is running.")
}

func TestTelegramWebhookWithoutBridge(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/telegram", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
