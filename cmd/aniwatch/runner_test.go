package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniwatch/aniwatch-server/catalog"
	"github.com/aniwatch/aniwatch-server/client"
	"github.com/aniwatch/aniwatch-server/session"
)

func newTestRunner(t *testing.T, backend http.HandlerFunc) (*Runner, *bytes.Buffer) {
	t.Helper()

	var api *client.Client
	if backend != nil {
		server := httptest.NewServer(backend)
		t.Cleanup(server.Close)
		api = client.New(server.URL, server.Client())
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:   defaultConfig(),
		API:      api,
		Catalog:  catalog.New(nil),
		Sessions: session.NewStore(filepath.Join(t.TempDir(), "session.toml")),
		Logger:   log.New(output),
		Output:   output,
		Input:    strings.NewReader(""),
	})
	return runner, output
}

func TestNewRunnerDefaults(t *testing.T) {
	runner := NewRunner(RunnerOpts{})
	assert.NotNil(t, runner.config)
	assert.NotNil(t, runner.output)
	assert.NotNil(t, runner.input)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		runner, _ := newTestRunner(t, nil)
		runner.input = strings.NewReader(tt.input)
		assert.Equal(t, tt.want, runner.confirm("Really?"), "input %q", tt.input)
	}
}

func TestRequireSession(t *testing.T) {
	runner, _ := newTestRunner(t, nil)

	_, err := runner.requireSession()
	assert.ErrorIs(t, err, errNotLoggedIn)

	require.NoError(t, runner.saveSession(7, "a@x.com"))
	sess, err := runner.requireSession()
	require.NoError(t, err)
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, int64(7), sess.UserID)
	assert.Equal(t, "a@x.com", sess.Email)
}

func TestPrintEntries(t *testing.T) {
	runner, output := newTestRunner(t, nil)

	runner.printEntries(nil)
	assert.Contains(t, output.String(), "No anime in your watchlist yet.")

	output.Reset()
	runner.printEntries([]client.Entry{
		{ID: 1, Title: "Naruto", Status: "Watching", Rating: 8},
	})
	assert.Contains(t, output.String(), "Naruto")
	assert.Contains(t, output.String(), "Watching")
}

func TestPrintRecords(t *testing.T) {
	runner, output := newTestRunner(t, nil)

	runner.printRecords(nil)
	assert.Contains(t, output.String(), "No results.")

	output.Reset()
	runner.printRecords([]catalog.Anime{
		{ID: 20, Title: "Naruto", Score: 8.0},
		{ID: 999, Title: "Unscored Show"},
	})
	assert.Contains(t, output.String(), "Naruto")
	assert.Contains(t, output.String(), "8.00")
	assert.Contains(t, output.String(), "N/A")
}

func TestLoginCommand(t *testing.T) {
	runner, output := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": 7, "email": "a@x.com"},
		})
	})

	app := loginCommand(runner)
	err := app.Run(context.Background(), []string{"login", "--email", "a@x.com", "--password", "secret"})
	require.NoError(t, err)
	assert.Contains(t, output.String(), "Logged in as a@x.com.")

	sess, err := runner.sessions.Load()
	require.NoError(t, err)
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, int64(7), sess.UserID)
}

func TestLogoutCommand(t *testing.T) {
	runner, output := newTestRunner(t, nil)
	require.NoError(t, runner.saveSession(7, "a@x.com"))

	app := logoutCommand(runner)
	err := app.Run(context.Background(), []string{"logout", "--yes"})
	require.NoError(t, err)
	assert.Contains(t, output.String(), "Logged out.")

	sess, err := runner.sessions.Load()
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn)
}

func TestLogoutCommandDeclined(t *testing.T) {
	runner, output := newTestRunner(t, nil)
	require.NoError(t, runner.saveSession(7, "a@x.com"))
	runner.input = strings.NewReader("n\n")

	app := logoutCommand(runner)
	err := app.Run(context.Background(), []string{"logout"})
	require.NoError(t, err)
	assert.Contains(t, output.String(), "Aborted.")

	sess, err := runner.sessions.Load()
	require.NoError(t, err)
	assert.True(t, sess.LoggedIn, "declined logout keeps the session")
}

func TestListCommandRequiresLogin(t *testing.T) {
	runner, _ := newTestRunner(t, nil)

	app := listCommand(runner)
	err := app.Run(context.Background(), []string{"list"})
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRmCommandInvalidID(t *testing.T) {
	runner, _ := newTestRunner(t, nil)

	app := rmCommand(runner)
	err := app.Run(context.Background(), []string{"rm", "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid entry id")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aniwatch.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
url = "http://example.com:9999"

[browse]
max_pages = 5
`), 0o600))

	config, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:9999", config.Server.URL)
	assert.Equal(t, 5, config.Browse.MaxPages)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
