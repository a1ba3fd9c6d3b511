package watchlist

import (
	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/domain"
)

// Refresher warms provider data for a ticker: statements, snapshot, and
// price history.
type Refresher interface {
	FetchStatements(ticker string) (domain.Statements, error)
	FetchSnapshot(ticker string) (domain.MarketSnapshot, error)
}

// HistoryRefresher merges the latest daily bars into local history.
type HistoryRefresher interface {
	RefreshHistory(ticker string) error
}

// RefreshJob re-fetches provider data for every watchlist ticker so the
// cache stays warm and analyses stay fast. Scheduled before market open.
type RefreshJob struct {
	repo    *Repository
	source  Refresher
	history HistoryRefresher
	log     zerolog.Logger
}

// NewRefreshJob creates a new watchlist refresh job.
// history is optional - if nil, price history is not refreshed.
func NewRefreshJob(repo *Repository, source Refresher, history HistoryRefresher, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		repo:    repo,
		source:  source,
		history: history,
		log:     log.With().Str("job", "watchlist_refresh").Logger(),
	}
}

// Run refreshes every watchlist ticker. One ticker's failure never stops
// the rest; failures are logged and counted.
func (j *RefreshJob) Run() error {
	tickers, err := j.repo.Tickers()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to load watchlist")
		return err
	}

	if len(tickers) == 0 {
		j.log.Debug().Msg("Watchlist empty, nothing to refresh")
		return nil
	}

	failed := 0
	for _, ticker := range tickers {
		if _, err := j.source.FetchStatements(ticker); err != nil {
			j.log.Warn().Err(err).Str("ticker", ticker).Msg("Statement refresh failed")
			failed++
			continue
		}
		if _, err := j.source.FetchSnapshot(ticker); err != nil {
			j.log.Warn().Err(err).Str("ticker", ticker).Msg("Snapshot refresh failed")
			failed++
			continue
		}
		if j.history != nil {
			if err := j.history.RefreshHistory(ticker); err != nil {
				j.log.Warn().Err(err).Str("ticker", ticker).Msg("History refresh failed")
				failed++
			}
		}
	}

	j.log.Info().
		Int("tickers", len(tickers)).
		Int("failed", failed).
		Msg("Watchlist refresh completed")

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *RefreshJob) Name() string {
	return "watchlist_refresh"
}
