package route

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Coubiac/signstamp/internal/app"
	"github.com/Coubiac/signstamp/internal/bridge"
	"github.com/Coubiac/signstamp/internal/config"
	"github.com/Coubiac/signstamp/internal/document"
	"github.com/Coubiac/signstamp/internal/events"
	"github.com/Coubiac/signstamp/internal/paths"
	"github.com/Coubiac/signstamp/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApp(t *testing.T, origins string) *app.App {
	t.Helper()
	resolver := paths.NewResolver(paths.Options{DataDir: t.TempDir(), DownloadsDir: t.TempDir()})
	signatures, err := repository.NewSignatureRepository(resolver)
	require.NoError(t, err)
	snippets, err := repository.NewSnippetRepository(resolver)
	require.NoError(t, err)
	docs, err := document.NewService(resolver)
	require.NoError(t, err)
	hub := events.NewHub(0)
	br, err := bridge.New(hub)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{CORSAllowedOrigins: origins},
		Bridge: config.BridgeConfig{ReadyTimeout: time.Second, HandoverTimeout: time.Second},
	}
	a, err := app.New(cfg, signatures, snippets, docs, hub, br)
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)
	return a
}

func TestSetupRoutes_RegistersCommandSurface(t *testing.T) {
	r := gin.New()
	SetupRoutes(r, newTestApp(t, "*"))

	registered := map[string]bool{}
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /api/signatures",
		"PUT /api/signatures",
		"GET /api/snippets",
		"PUT /api/snippets",
		"POST /api/export",
		"POST /api/documents/save",
		"POST /api/documents/load",
		"POST " + bridge.OpenPath,
		"GET /api/events",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestSetupRoutes_CORSFromConfig(t *testing.T) {
	r := gin.New()
	SetupRoutes(r, newTestApp(t, "tauri://localhost"))

	req := httptest.NewRequest(http.MethodOptions, "/api/signatures", nil)
	req.Header.Set("Origin", "tauri://localhost")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tauri://localhost", w.Header().Get("Access-Control-Allow-Origin"))
}
