package charts

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/domain"
	"github.com/aristath/beacon/pkg/formulas"
)

// Indicator window lengths for the chart overlays.
const (
	smaShortLength = 50
	smaLongLength  = 200
	rsiLength      = 14
)

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string  `json:"time"` // YYYY-MM-DD format
	Value float64 `json:"value"`
}

// ChartData is the price series with indicator overlays for one ticker.
// The Latest* fields are the current indicator readings, nil when the
// history is too short for the window.
type ChartData struct {
	Ticker       string           `json:"ticker"`
	Prices       []ChartDataPoint `json:"prices"`
	SMA50        []ChartDataPoint `json:"sma_50,omitempty"`
	SMA200       []ChartDataPoint `json:"sma_200,omitempty"`
	RSI14        []ChartDataPoint `json:"rsi_14,omitempty"`
	LatestSMA50  *float64         `json:"latest_sma_50,omitempty"`
	LatestSMA200 *float64         `json:"latest_sma_200,omitempty"`
	LatestRSI14  *float64         `json:"latest_rsi_14,omitempty"`
}

// PriceSource fetches daily bars from the provider when the local
// history has none.
type PriceSource interface {
	FetchDailyPrices(ticker string) ([]domain.DailyPrice, error)
}

// Service provides chart data operations
type Service struct {
	historyDB *HistoryDB
	source    PriceSource
	log       zerolog.Logger
}

// NewService creates a new charts service.
// source is optional - if nil, only locally stored history is served.
func NewService(historyDB *HistoryDB, source PriceSource, log zerolog.Logger) *Service {
	return &Service{
		historyDB: historyDB,
		source:    source,
		log:       log.With().Str("service", "charts").Logger(),
	}
}

// GetChartData returns the close series and indicator overlays for a
// ticker. Missing local history is backfilled from the price source.
func (s *Service) GetChartData(ticker string) (*ChartData, error) {
	prices, err := s.historyDB.GetDailyPrices(ticker, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", ticker, err)
	}

	if len(prices) == 0 && s.source != nil {
		fetched, err := s.source.FetchDailyPrices(ticker)
		if err != nil {
			return nil, fmt.Errorf("no local history and fetch failed for %s: %w", ticker, err)
		}
		if err := s.historyDB.UpsertPrices(ticker, fetched); err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to store fetched history")
		}
		prices = fetched
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("no price history for %s", ticker)
	}

	closes := make([]float64, len(prices))
	points := make([]ChartDataPoint, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
		points[i] = ChartDataPoint{Time: p.Date, Value: p.Close}
	}

	return &ChartData{
		Ticker:       ticker,
		Prices:       points,
		SMA50:        overlay(prices, formulas.SMASeries(closes, smaShortLength)),
		SMA200:       overlay(prices, formulas.SMASeries(closes, smaLongLength)),
		RSI14:        overlay(prices, formulas.RSISeries(closes, rsiLength)),
		LatestSMA50:  formulas.CalculateSMA(closes, smaShortLength),
		LatestSMA200: formulas.CalculateSMA(closes, smaLongLength),
		LatestRSI14:  formulas.CalculateRSI(closes, rsiLength),
	}, nil
}

// RefreshHistory fetches the latest daily bars and merges them into the
// local history.
func (s *Service) RefreshHistory(ticker string) error {
	if s.source == nil {
		return fmt.Errorf("no price source configured")
	}

	prices, err := s.source.FetchDailyPrices(ticker)
	if err != nil {
		return fmt.Errorf("failed to fetch prices for %s: %w", ticker, err)
	}

	return s.historyDB.UpsertPrices(ticker, prices)
}

// overlay aligns an indicator series with the price dates, dropping the
// NaN positions before the indicator window fills.
func overlay(prices []domain.DailyPrice, series []float64) []ChartDataPoint {
	if len(series) == 0 {
		return nil
	}

	points := make([]ChartDataPoint, 0, len(series))
	for i, v := range series {
		if math.IsNaN(v) {
			continue
		}
		points = append(points, ChartDataPoint{Time: prices[i].Date, Value: v})
	}
	if len(points) == 0 {
		return nil
	}
	return points
}
