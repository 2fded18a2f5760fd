package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/events"
	"github.com/phrazzld/launchpad/internal/platform/logger"
	"github.com/phrazzld/launchpad/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a configuration using a directory store under
// t.TempDir and hostURL as the host API.
func testConfig(t *testing.T, hostURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: 17891, LogLevel: "debug"},
		Host:   config.HostConfig{APIURL: hostURL},
		Auth:   config.AuthConfig{TokenLifetimeMinutes: 60},
		Store:  config.StoreConfig{ConfigDir: t.TempDir()},
		Cache: config.CacheConfig{
			GameConfigTTL: time.Second,
			ExecutableTTL: time.Second,
			GamesTTL:      time.Second,
			PresetsTTL:    time.Second,
		},
		Classifier: config.ClassifierConfig{
			EnglishMarkers: config.DefaultEnglishMarkers,
			NativeMarkers:  config.DefaultNativeMarkers,
		},
	}
}

func newHostServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/games" {
			_, _ = w.Write([]byte(`[{"id":"hk4e","name":"Genshin"}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fakeSource struct {
	mu       sync.Mutex
	channels []string
}

func (f *fakeSource) Subscribe(channel string, _ events.EventHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channel)
	return nil
}

// stubDialEvents replaces dialEvents for the duration of the test.
func stubDialEvents(t *testing.T, fn func(context.Context, config.HostConfig, *slog.Logger) (events.EventSource, func(), error)) {
	t.Helper()
	orig := dialEvents
	dialEvents = fn
	t.Cleanup(func() { dialEvents = orig })
}

func TestNewApplication_DirectoryStore(t *testing.T) {
	host := newHostServer(t)
	app, err := newApplication(context.Background(), testConfig(t, host.URL), discardLogger())
	require.NoError(t, err)
	t.Cleanup(app.cleanup)

	assert.Nil(t, app.db)
	assert.Nil(t, app.jwtService, "auth stays off without a secret")

	router := app.router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"idle"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Genshin")
}

func TestNewApplication_AuthGuardsAPI(t *testing.T) {
	host := newHostServer(t)
	cfg := testConfig(t, host.URL)
	cfg.Auth.JWTSecret = strings.Repeat("s", 32)

	app, err := newApplication(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	require.NotNil(t, app.jwtService)

	router := app.router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := app.jwtService.GenerateToken(context.Background(), "test-client")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health stays open")
}

func TestNewApplication_EventBridge(t *testing.T) {
	host := newHostServer(t)
	cfg := testConfig(t, host.URL)
	cfg.Host.EventsURL = "ws://127.0.0.1:1/socket.io/"

	source := &fakeSource{}
	closed := 0
	stubDialEvents(t, func(_ context.Context, got config.HostConfig, _ *slog.Logger) (events.EventSource, func(), error) {
		assert.Equal(t, cfg.Host.EventsURL, got.EventsURL)
		return source, func() { closed++ }, nil
	})

	app, err := newApplication(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	app.cleanup()
	app.cleanup()
	assert.Equal(t, 1, closed, "bridge is closed exactly once")
}

func TestNewApplication_Failures(t *testing.T) {
	t.Run("bad host url", func(t *testing.T) {
		cfg := testConfig(t, "ftp://host")
		_, err := newApplication(context.Background(), cfg, discardLogger())
		assert.Error(t, err)
	})

	t.Run("event bridge unreachable", func(t *testing.T) {
		host := newHostServer(t)
		cfg := testConfig(t, host.URL)
		cfg.Host.EventsURL = "ws://127.0.0.1:1/socket.io/"
		stubDialEvents(t, func(context.Context, config.HostConfig, *slog.Logger) (events.EventSource, func(), error) {
			return nil, nil, assert.AnError
		})

		_, err := newApplication(context.Background(), cfg, discardLogger())
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	host := newHostServer(t)
	app, err := newApplication(context.Background(), testConfig(t, host.URL), discardLogger())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestNotificationLogger(t *testing.T) {
	l, buf := logger.NewTestLogger(t)
	handler := notificationLogger(l)

	runID := uuid.New()
	event, err := events.NewEvent(events.ChannelNotification, task.Notification{
		Level:   task.LevelError,
		Kind:    task.KindVerify,
		RunID:   runID,
		GameID:  "hk4e",
		Title:   "Verification failed",
		Message: "host unreachable",
	})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), event))

	logger.AssertLogContains(t, buf, "Verification failed")
	logger.AssertLogField(t, buf, "game_id", "hk4e")
	logger.AssertLogField(t, buf, "component", "notifications")

	bad := &events.Event{Channel: events.ChannelNotification, Payload: []byte("{")}
	assert.Error(t, handler(context.Background(), bad))
}
