package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/carrot-trail/api"
	"github.com/wricardo/carrot-trail/game/engine"
	"github.com/wricardo/carrot-trail/transport/mcp"
)

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Carrot Trail", AppName)
}

func writeLevel(t *testing.T, dir, name string, level *engine.LevelConfig) {
	t.Helper()
	data, err := json.Marshal(level)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestInitializeServices(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeLevel(t, dir, "default.json", engine.DefaultLevelConfig())

		rt, err := initializeServices(dir)
		require.NoError(t, err)
		require.NotNil(t, rt.service)

		info, err := rt.service.CreateSession(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "default", info.LevelID)
		assert.Equal(t, 1, rt.sessions.Count())
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := initializeServices(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}

func TestLoadPlayLevel(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	level, err := loadPlayLevel(missing, "")
	require.NoError(t, err)
	assert.Equal(t, "First Steps", level.Name)

	_, err = loadPlayLevel(missing, "first")
	assert.Error(t, err)

	dir := t.TempDir()
	custom := engine.DefaultLevelConfig()
	custom.Name = "Custom"
	writeLevel(t, dir, "custom.json", custom)

	level, err = loadPlayLevel(dir, "custom")
	require.NoError(t, err)
	assert.Equal(t, "Custom", level.Name)
}

func TestNewCommand(t *testing.T) {
	cmd := newCommand()
	names := make([]string, 0, len(cmd.Commands))
	for _, c := range cmd.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"server", "stdio-mcp", "play"}, names)
	assert.NotNil(t, cmd.Action)
}

func TestMCPHandler(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "default.json", engine.DefaultLevelConfig())
	rt, err := initializeServices(dir)
	require.NoError(t, err)

	backend := httptest.NewServer(api.NewServer(rt.service, nil))
	defer backend.Close()

	router := newRouter(api.NewServer(rt.service, nil), mcp.NewClient(backend.URL))

	t.Run("rejects GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("lists tools", func(t *testing.T) {
		body := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
		req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "create_session")
		assert.Contains(t, rec.Body.String(), "bulk_move")
	})

	t.Run("api mounted at root", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestExternalAPIAvailable(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "default.json", engine.DefaultLevelConfig())
	rt, err := initializeServices(dir)
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewServer(rt.service, nil))
	assert.True(t, externalAPIAvailable(context.Background(), srv.URL))
	srv.Close()
	assert.False(t, externalAPIAvailable(context.Background(), srv.URL))
}

func TestStartInternalAPI(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "default.json", engine.DefaultLevelConfig())
	rt, err := initializeServices(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	baseURL, err := startInternalAPI(ctx, rt)
	require.NoError(t, err)
	assert.True(t, externalAPIAvailable(ctx, baseURL))
}
