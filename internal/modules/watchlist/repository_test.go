package watchlist

import (
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/beacon/internal/domain"
)

const configSchema = `
CREATE TABLE watchlist (
	ticker TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	added_at INTEGER NOT NULL
);
`

func setupRepo(t *testing.T) *Repository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(configSchema)
	require.NoError(t, err)

	return NewRepository(db, zerolog.Nop())
}

func TestAddAndList(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Add(Entry{Ticker: "msft", DisplayName: "Microsoft"}))
	require.NoError(t, repo.Add(Entry{Ticker: "AAPL", DisplayName: "Apple", Notes: "core holding"}))

	entries, err := repo.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Ordered by ticker, normalized to upper case.
	assert.Equal(t, "AAPL", entries[0].Ticker)
	assert.Equal(t, "core holding", entries[0].Notes)
	assert.Equal(t, "MSFT", entries[1].Ticker)
	assert.False(t, entries[0].AddedAt.IsZero())
}

func TestAdd_EmptyTicker(t *testing.T) {
	repo := setupRepo(t)
	assert.Error(t, repo.Add(Entry{Ticker: "  "}))
}

func TestAdd_UpdatesExisting(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Add(Entry{Ticker: "AAPL", DisplayName: "Apple"}))
	require.NoError(t, repo.Add(Entry{Ticker: "AAPL", DisplayName: "Apple Inc.", Notes: "updated"}))

	entries, err := repo.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Apple Inc.", entries[0].DisplayName)
	assert.Equal(t, "updated", entries[0].Notes)
}

func TestRemove(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Add(Entry{Ticker: "AAPL"}))
	require.NoError(t, repo.Remove("aapl"))

	has, err := repo.Has("AAPL")
	require.NoError(t, err)
	assert.False(t, has)

	assert.Error(t, repo.Remove("AAPL"), "removing an absent ticker reports an error")
}

func TestTickers(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Add(Entry{Ticker: "MSFT"}))
	require.NoError(t, repo.Add(Entry{Ticker: "AAPL"}))

	tickers, err := repo.Tickers()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
}

type refreshRecorder struct {
	statements []string
	snapshots  []string
	history    []string
	failFor    string
}

func (r *refreshRecorder) FetchStatements(ticker string) (domain.Statements, error) {
	if ticker == r.failFor {
		return domain.Statements{}, fmt.Errorf("no data")
	}
	r.statements = append(r.statements, ticker)
	return domain.Statements{}, nil
}

func (r *refreshRecorder) FetchSnapshot(ticker string) (domain.MarketSnapshot, error) {
	r.snapshots = append(r.snapshots, ticker)
	return domain.MarketSnapshot{}, nil
}

func (r *refreshRecorder) RefreshHistory(ticker string) error {
	r.history = append(r.history, ticker)
	return nil
}

func TestRefreshJob_Run(t *testing.T) {
	repo := setupRepo(t)
	require.NoError(t, repo.Add(Entry{Ticker: "AAPL"}))
	require.NoError(t, repo.Add(Entry{Ticker: "MSFT"}))

	rec := &refreshRecorder{}
	job := NewRefreshJob(repo, rec, rec, zerolog.Nop())
	assert.Equal(t, "watchlist_refresh", job.Name())

	require.NoError(t, job.Run())
	assert.Equal(t, []string{"AAPL", "MSFT"}, rec.statements)
	assert.Equal(t, []string{"AAPL", "MSFT"}, rec.snapshots)
	assert.Equal(t, []string{"AAPL", "MSFT"}, rec.history)
}

func TestRefreshJob_FailureIsolation(t *testing.T) {
	repo := setupRepo(t)
	require.NoError(t, repo.Add(Entry{Ticker: "AAPL"}))
	require.NoError(t, repo.Add(Entry{Ticker: "BAD"}))
	require.NoError(t, repo.Add(Entry{Ticker: "MSFT"}))

	rec := &refreshRecorder{failFor: "BAD"}
	job := NewRefreshJob(repo, rec, nil, zerolog.Nop())

	require.NoError(t, job.Run(), "per-ticker failures do not fail the job")
	assert.Equal(t, []string{"AAPL", "MSFT"}, rec.statements)
	assert.Equal(t, []string{"AAPL", "MSFT"}, rec.snapshots)
	assert.Empty(t, rec.history)
}
