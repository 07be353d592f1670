package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgossip/pgossip/pkg/server"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	srv, err := server.New(server.Config{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		ReportsDir: dir,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, dir
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListReports(t *testing.T) {
	ts, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lg.example-ix.net.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lg.example-ix.net.txt"), []byte("x"), 0o644))

	resp, err := http.Get(ts.URL + "/reports")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"lg.example-ix.net"}, body["reports"])
}

func TestGetReport(t *testing.T) {
	ts, dir := newTestServer(t)
	doc := `{"endpoint": "https://lg.example-ix.net", "rows": []}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lg.example-ix.net.json"), []byte(doc), 0o644))

	t.Run("found", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/reports/lg.example-ix.net")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, doc, string(raw))
	})

	t.Run("missing", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/reports/unknown-ix")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/reports/..%2fconfig")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.NotEqual(t, http.StatusOK, resp.StatusCode)
	})
}
