package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habit-board/internal/config"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/services"
	"github.com/comitanigiacomo/kanso-habit-board/internal/logger"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Env:            "development",
		Port:           "0",
		StorageBackend: config.BackendFile,
		StorageKey:     domain.DefaultStorageKey,
		DataDir:        dir,
		ResetInterval:  time.Minute,
	}
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func getPath(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_BoardLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	ctx := context.Background()
	log := logger.Discard()

	app, err := bootstrap(ctx, testConfig(dir), log, services.WithClock(clock))
	require.NoError(t, err)

	var habitID int64

	t.Run("1. Add Habit", func(t *testing.T) {
		w := postForm(app.router, "/habits", url.Values{"name": {"Morning Run"}, "frequency": {"daily"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)

		list := app.store.List()
		require.Len(t, list, 1)
		habitID = list[0].ID
		assert.Equal(t, now.UnixMilli(), habitID)
	})

	t.Run("2. Complete Habit", func(t *testing.T) {
		w := postForm(app.router, "/actions", url.Values{
			"action":   {"complete"},
			"habit_id": {strconv.FormatInt(habitID, 10)},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)

		body := getPath(app.router, "/").Body.String()
		assert.Contains(t, body, "1 day streak")
		assert.Contains(t, body, `<dd id="longest-streak">1 days</dd>`)
	})

	t.Run("3. Restart keeps state", func(t *testing.T) {
		require.NoError(t, app.backend.Close())

		app, err = bootstrap(ctx, testConfig(dir), log, services.WithClock(clock))
		require.NoError(t, err)

		h, err := app.store.Get(habitID)
		require.NoError(t, err)
		assert.Equal(t, "Morning Run", h.Name)
		assert.Equal(t, 1, h.Streak)
		assert.True(t, h.CompletedToday)
	})

	t.Run("4. Next day reset", func(t *testing.T) {
		now = now.Add(24 * time.Hour)

		assert.True(t, app.worker.RunOnce(ctx))
		assert.False(t, app.worker.RunOnce(ctx))

		w := getPath(app.router, "/api/v1/habits")
		var habits []domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habits))
		require.Len(t, habits, 1)
		assert.False(t, habits[0].CompletedToday)
		assert.Equal(t, 1, habits[0].Streak)
	})

	t.Run("5. Delete with confirmation", func(t *testing.T) {
		id := strconv.FormatInt(habitID, 10)

		w := postForm(app.router, "/actions", url.Values{"action": {"delete"}, "habit_id": {id}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This action cannot be undone.")

		w = postForm(app.router, "/actions", url.Values{"action": {"delete"}, "habit_id": {id}, "confirm": {"yes"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Empty(t, app.store.List())
	})

	t.Run("6. Health", func(t *testing.T) {
		w := getPath(app.router, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"backend":"file"`)
	})

	require.NoError(t, app.backend.Close())
}

func TestServer_ShutdownEndsOpenEventStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t.TempDir())
	cfg.StorageBackend = config.BackendMemory

	app, err := bootstrap(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer app.backend.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := newServer(ln.Addr().String(), app)
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	reqCtx, cancelReq := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelReq()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, "http://"+ln.Addr().String()+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return app.events.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, srv.Shutdown(shutdownCtx))
	assert.True(t, errors.Is(<-served, http.ErrServerClosed))

	_, err = io.ReadAll(resp.Body)
	assert.NoError(t, err)
}
