package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/certifai/internal/config"
	"github.com/example/certifai/internal/logger"
	"github.com/example/certifai/internal/topics"
	"github.com/example/certifai/pkg/models"
)

func offlineEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	topicsFile := filepath.Join(dir, "topics.csv")
	require.NoError(t, os.WriteFile(topicsFile, []byte("modulo,prova\nredes virtuais,AZ-104\narmazenamento,\nidentidade,SC-900\n"), 0644))

	t.Setenv("OFFLINE_MODE", "true")
	t.Setenv("CERTIFAI_API_URL", "")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "certifai.db"))
	t.Setenv("STORAGE_DRIVER", "database")
	t.Setenv("TOPICS_SOURCE", topicsFile)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_MODE", "prod")
}

// onlineEnv points the app at a fake backend that counts its requests.
func onlineEnv(t *testing.T, token string) *atomic.Int32 {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"modulo":"redes virtuais","prova":"az-104"}]`)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("OFFLINE_MODE", "")
	t.Setenv("CERTIFAI_API_URL", srv.URL)
	t.Setenv("CERTIFAI_API_KEY", "anon-key")
	t.Setenv("CERTIFAI_ACCESS_TOKEN", token)
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "certifai.db"))
	t.Setenv("STORAGE_DRIVER", "database")
	t.Setenv("TOPICS_SOURCE", "remote")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_MODE", "prod")
	return &hits
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	a, err := newApp(cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestCLI_Offline(t *testing.T) {
	offlineEnv(t)

	assert.Equal(t, "az-104\nsc-900\n", run(t, "topics"))
	assert.Equal(t, "Redes virtuais\nArmazenamento\n", run(t, "topics", " az-104 "))
	assert.Equal(t, "no topics for dp-900\n", run(t, "topics", "dp-900"))

	run(t, "profile", "Ana Souza", "50")
	out := run(t, "award", "10")
	assert.Contains(t, out, "10 pts")
	assert.Contains(t, out, "streak: 1")

	out = run(t, "case", "az-104", "correct", "partial", "error")
	assert.Contains(t, out, "case result: 1/3 Corretas")
	assert.Contains(t, out, "today (")
	assert.Contains(t, out, "session ")

	home := run(t, "home")
	assert.Contains(t, home, "Hello, Ana")
	assert.Contains(t, home, "Today: 25/50 pts (50%)")
	assert.Contains(t, home, "Streak: 1")

	history := run(t, "history")
	assert.Contains(t, history, "Case")
	assert.Contains(t, history, "AZ-104")
	assert.Contains(t, history, "Case Prático (3q)")
	assert.Contains(t, history, "1/3 Corretas")
}

func TestApp_TopicsStayUnloadedWithoutUser(t *testing.T) {
	hits := onlineEnv(t, "")
	a := newTestApp(t)

	require.NoError(t, a.loadTopics(context.Background()))
	assert.Equal(t, topics.StateUninitialized, a.topics.State())
	assert.Empty(t, a.topics.Exams())
	assert.Zero(t, hits.Load())

	assert.Equal(t, "", run(t, "topics"))
	assert.Zero(t, hits.Load())
}

func TestApp_TopicsLoadForAuthenticatedUser(t *testing.T) {
	hits := onlineEnv(t, "user-token")
	a := newTestApp(t)

	require.NoError(t, a.loadTopics(context.Background()))
	assert.Equal(t, topics.StateReady, a.topics.State())
	assert.Equal(t, []string{"Redes virtuais"}, a.topics.TopicsForExam("AZ-104"))
	assert.Equal(t, int32(1), hits.Load())
}

func TestCLI_OfflineNeedsSpreadsheet(t *testing.T) {
	offlineEnv(t)
	t.Setenv("TOPICS_SOURCE", "remote")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"home"})
	assert.Error(t, root.Execute())
}

func TestSessionType(t *testing.T) {
	kind, err := sessionType("case")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCase, kind)

	kind, err = sessionType("INTERATIVA")
	require.NoError(t, err)
	assert.Equal(t, models.SessionInteractive, kind)

	_, err = sessionType("quiz")
	assert.Error(t, err)
}

func TestIsSpreadsheet(t *testing.T) {
	assert.True(t, isSpreadsheet("data/topics.xlsx"))
	assert.True(t, isSpreadsheet("topics.CSV"))
	assert.False(t, isSpreadsheet("remote"))
}
