package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/beacon/internal/database"
	"github.com/aristath/beacon/internal/scheduler"
)

type recordedJob struct {
	name string
	ran  chan struct{}
}

func (j *recordedJob) Run() error {
	close(j.ran)
	return nil
}

func (j *recordedJob) Name() string { return j.name }

func setupDatabases(t *testing.T) (map[string]*database.DB, string) {
	dir := t.TempDir()

	configDB, err := database.New(database.Config{
		Path: filepath.Join(dir, "config.db"),
		Name: "config",
	})
	require.NoError(t, err)
	t.Cleanup(func() { configDB.Close() })

	historyDB, err := database.New(database.Config{
		Path: filepath.Join(dir, "history.db"),
		Name: "history",
	})
	require.NoError(t, err)
	t.Cleanup(func() { historyDB.Close() })

	_, err = configDB.Exec("CREATE TABLE watchlist (ticker TEXT PRIMARY KEY, added_at INTEGER)")
	require.NoError(t, err)
	_, err = configDB.Exec("INSERT INTO watchlist (ticker, added_at) VALUES ('AAPL', 1), ('MSFT', 2)")
	require.NoError(t, err)

	return map[string]*database.DB{"config": configDB, "history": historyDB}, dir
}

func TestHandleSystemStatus(t *testing.T) {
	databases, dir := setupDatabases(t)
	h := NewSystemHandlers(zerolog.Nop(), dir, databases, scheduler.New(zerolog.Nop()), nil)

	rec := httptest.NewRecorder()
	h.HandleSystemStatus(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 2, resp.WatchlistCount)
}

func TestHandleDatabaseStats(t *testing.T) {
	databases, dir := setupDatabases(t)
	h := NewSystemHandlers(zerolog.Nop(), dir, databases, scheduler.New(zerolog.Nop()), nil)

	rec := httptest.NewRecorder()
	h.HandleDatabaseStats(rec, httptest.NewRequest(http.MethodGet, "/api/system/database/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp DatabaseStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Databases, 2)
	assert.Equal(t, "config", resp.Databases[0].Name)
	assert.Equal(t, "history", resp.Databases[1].Name)
	assert.Greater(t, resp.TotalSizeMB, 0.0)
}

func TestHandleTriggerJob(t *testing.T) {
	databases, dir := setupDatabases(t)
	job := &recordedJob{name: "watchlist_refresh", ran: make(chan struct{})}
	h := NewSystemHandlers(zerolog.Nop(), dir, databases, scheduler.New(zerolog.Nop()), []scheduler.Job{job})

	r := chi.NewRouter()
	r.Post("/api/system/jobs/{name}", h.HandleTriggerJob)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/system/jobs/watchlist_refresh", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
}

func TestHandleTriggerJob_Unknown(t *testing.T) {
	databases, dir := setupDatabases(t)
	h := NewSystemHandlers(zerolog.Nop(), dir, databases, scheduler.New(zerolog.Nop()), nil)

	r := chi.NewRouter()
	r.Post("/api/system/jobs/{name}", h.HandleTriggerJob)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/system/jobs/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	databases, dir := setupDatabases(t)
	srv := New(Config{
		Log:       zerolog.Nop(),
		Port:      0,
		DataDir:   dir,
		Databases: databases,
		Scheduler: scheduler.New(zerolog.Nop()),
	})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "beacon", resp["service"])
}
