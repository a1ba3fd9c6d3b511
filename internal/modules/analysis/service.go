// Package analysis orchestrates the per-ticker pipeline: statement
// resolution, ratio derivation, valuation, and rating.
package analysis

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/domain"
	"github.com/aristath/beacon/internal/modules/rating"
	"github.com/aristath/beacon/internal/modules/ratios"
	"github.com/aristath/beacon/internal/modules/valuation"
)

// Source provides statements and market data for a ticker. A fetch
// either fully succeeds or fails outright; retry and caching live
// behind this interface.
type Source interface {
	FetchStatements(ticker string) (domain.Statements, error)
	FetchSnapshot(ticker string) (domain.MarketSnapshot, error)
}

// ProgressFunc is called after each ticker in a batch completes.
type ProgressFunc func(batchID string, current, total int, ticker string)

// BatchResult is the outcome of one batch run: exactly one record per
// requested ticker, in request order.
type BatchResult struct {
	BatchID    string                  `json:"batch_id"`
	Records    []domain.AnalysisRecord `json:"records"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
}

// Service runs the analysis pipeline.
type Service struct {
	source    Source
	deriver   *ratios.Deriver
	estimator *valuation.Estimator
	engine    *rating.Engine
	log       zerolog.Logger
}

// NewService creates an analysis service with the default valuation and
// rating configuration.
func NewService(source Source, log zerolog.Logger) *Service {
	return &Service{
		source:    source,
		deriver:   ratios.NewDeriver(log),
		estimator: valuation.NewEstimator(valuation.DefaultConfig(), log),
		engine:    rating.NewEngine(rating.DefaultConfig(), log),
		log:       log.With().Str("service", "analysis").Logger(),
	}
}

// Analyze produces a fresh record for one ticker. A source failure
// yields a failed record with the reason; it never panics or returns
// a partially derived record pretending to be complete.
func (s *Service) Analyze(ticker string) domain.AnalysisRecord {
	record := domain.AnalysisRecord{
		Ticker:      ticker,
		GeneratedAt: time.Now().UTC(),
	}

	stmts, err := s.source.FetchStatements(ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Statement fetch failed")
		record.Error = err.Error()
		return record
	}

	market, err := s.source.FetchSnapshot(ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Snapshot fetch failed")
		record.Error = err.Error()
		return record
	}

	record.Ratios = s.deriver.Derive(stmts, market)
	record.Valuation = s.estimator.Estimate(market, record.Ratios)
	record.Rating = s.engine.Rate(record.Ratios)

	s.log.Info().
		Str("ticker", ticker).
		Str("grade", string(record.Rating.Grade)).
		Str("valuation", string(record.Valuation.Status)).
		Msg("Analysis completed")

	return record
}

// AnalyzeBatch processes tickers sequentially and returns exactly one
// record per requested ticker. One ticker's failure never aborts the
// rest of the batch.
func (s *Service) AnalyzeBatch(tickers []string, progress ProgressFunc) BatchResult {
	result := BatchResult{
		BatchID:   uuid.New().String(),
		Records:   make([]domain.AnalysisRecord, 0, len(tickers)),
		StartedAt: time.Now().UTC(),
	}

	s.log.Info().
		Str("batch_id", result.BatchID).
		Int("tickers", len(tickers)).
		Msg("Batch analysis started")

	for i, ticker := range tickers {
		result.Records = append(result.Records, s.Analyze(ticker))
		if progress != nil {
			progress(result.BatchID, i+1, len(tickers), ticker)
		}
	}

	result.FinishedAt = time.Now().UTC()

	failed := 0
	for _, r := range result.Records {
		if r.Failed() {
			failed++
		}
	}
	s.log.Info().
		Str("batch_id", result.BatchID).
		Int("tickers", len(tickers)).
		Int("failed", failed).
		Dur("elapsed", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Batch analysis completed")

	return result
}

// ParseTickers splits a comma-separated ticker list, trimming whitespace
// and dropping empty entries. Tickers are uppercased; order and
// duplicates are preserved so the response stays positionally aligned
// with the request.
func ParseTickers(raw string) []string {
	parts := strings.Split(raw, ",")
	tickers := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToUpper(strings.TrimSpace(p))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}
