package hostapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/launchpad/internal/classify"
	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(config.HostConfig{APIURL: srv.URL + "/v1/", RequestTimeout: timeout},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New(config.HostConfig{APIURL: "ftp://host"}, nil)
	assert.Error(t, err)

	_, err = New(config.HostConfig{APIURL: "://"}, nil)
	assert.Error(t, err)
}

func TestClient_StartDownload(t *testing.T) {
	var got task.DownloadRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/tasks/download", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}, 0)

	req := task.DownloadRequest{
		Endpoint:  "https://launcher.example/api",
		Folder:    "/games/hk4e",
		Languages: []string{"en-us"},
		Region:    "os_euro",
	}
	require.NoError(t, c.StartDownload(context.Background(), req))
	assert.Equal(t, req, got)
}

func TestClient_Verify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks/verify", r.URL.Path)
		writeJSON(t, w, http.StatusOK, domain.VerifyResult{Total: 3, OK: 2, Failed: []string{"a.pak"}})
	}, 0)

	result, err := c.Verify(context.Background(), task.VerifyRequest{Endpoint: "e", Folder: "f"})

	require.NoError(t, err)
	assert.Equal(t, domain.VerifyResult{Total: 3, OK: 2, Failed: []string{"a.pak"}}, result)
}

func TestClient_RepairAndInstaller(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/tasks/repair":
			var req task.RepairRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeJSON(t, w, http.StatusOK, domain.RepairResult{Requested: len(req.Files), Repaired: len(req.Files)})
		case "/v1/tasks/installer":
			var req task.InstallerRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.True(t, req.Update)
			writeJSON(t, w, http.StatusOK, domain.InstallerResult{Path: "/i/setup.exe", Version: "5.1"})
		default:
			http.NotFound(w, r)
		}
	}, 0)

	repair, err := c.Repair(context.Background(), task.RepairRequest{Files: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, repair.Repaired)

	inst, err := c.FetchInstaller(context.Background(), task.InstallerRequest{Update: true})
	require.NoError(t, err)
	assert.Equal(t, "5.1", inst.Version)
}

func TestClient_Cancel(t *testing.T) {
	var folder string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks/cancel", r.URL.Path)
		var body struct {
			Folder string `json:"folder"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		folder = body.Folder
		w.WriteHeader(http.StatusAccepted)
	}, 0)

	require.NoError(t, c.Cancel(context.Background(), "/games/hk4e"))
	assert.Equal(t, "/games/hk4e", folder)
}

func TestClient_CancelledOperation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, hostErrorBody{Code: CodeCancelled, Message: "download aborted"})
	}, 0)

	err := c.StartUpdate(context.Background(), task.DownloadRequest{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.True(t, classify.Default().IsCancellation(err))

	var hostErr *Error
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "update", hostErr.Operation)
	assert.Equal(t, http.StatusConflict, hostErr.Status)
	assert.Equal(t, "download aborted", hostErr.Message)
}

func TestClient_HostFailure(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "json error body",
			status:      http.StatusInternalServerError,
			body:        `{"code":"disk_full","message":"no space left on device"}`,
			wantCode:    "disk_full",
			wantMessage: "no space left on device",
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        "upstream unavailable\n",
			wantMessage: "upstream unavailable",
		},
		{
			name:        "empty body",
			status:      http.StatusServiceUnavailable,
			wantMessage: "Service Unavailable",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, 0)

			_, err := c.Verify(context.Background(), task.VerifyRequest{})

			var hostErr *Error
			require.ErrorAs(t, err, &hostErr)
			assert.Equal(t, tc.status, hostErr.Status)
			assert.Equal(t, tc.wantCode, hostErr.Code)
			assert.Equal(t, tc.wantMessage, hostErr.Message)
			assert.False(t, errors.Is(err, domain.ErrCancelled))
			assert.False(t, classify.Default().IsCancellation(err))
		})
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "{not json")
	}, 0)

	_, err := c.Verify(context.Background(), task.VerifyRequest{})

	var hostErr *Error
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "malformed response", hostErr.Message)
}

func TestClient_Queries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/v1/games":
			writeJSON(t, w, http.StatusOK, []domain.GameSummary{{GameID: "hk4e", DisplayName: "Genshin Impact"}})
		case "/v1/games/hk4e/presets":
			writeJSON(t, w, http.StatusOK, []domain.Preset{{ID: "global", Name: "Global"}})
		case "/v1/games/hk4e%2Fcn/executable":
			assert.Equal(t, "/games/hk4e", r.URL.Query().Get("folder"))
			assert.Equal(t, "cn", r.URL.Query().Get("endpoint"))
			writeJSON(t, w, http.StatusOK, map[string]string{"path": "/games/hk4e/YuanShen.exe"})
		default:
			http.NotFound(w, r)
		}
	}, time.Second)

	games, err := c.ListGames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.GameSummary{{GameID: "hk4e", DisplayName: "Genshin Impact"}}, games)

	presets, err := c.ListPresets(context.Background(), "hk4e")
	require.NoError(t, err)
	assert.Equal(t, []domain.Preset{{ID: "global", Name: "Global"}}, presets)

	exe, err := c.ResolveDefaultExecutable(context.Background(), "hk4e/cn", "/games/hk4e", "cn")
	require.NoError(t, err)
	assert.Equal(t, "/games/hk4e/YuanShen.exe", exe)
}

func TestClient_QueryTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 20*time.Millisecond)

	_, err := c.ListGames(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_TaskCallsHonourCallerContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := c.StartDownload(ctx, task.DownloadRequest{})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "task calls are not bounded by the query timeout")
}
