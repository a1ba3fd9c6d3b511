// Package valuation derives a fair-value band and a three-way valuation
// classification from a market snapshot and a derived ratio set.
package valuation

import (
	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/domain"
)

// Config holds the bounds and margins of the estimator. Immutable once
// constructed; pass a copy, not a shared pointer.
type Config struct {
	// Multiples used when the provider reports none, plus the cap that
	// keeps noisy industry figures from inflating the band.
	DefaultForwardPE  float64
	DefaultIndustryPE float64
	MaxIndustryPE     float64

	// Margin of safety, widened or narrowed by leverage.
	BaseMargin   float64
	MaxMargin    float64
	MinMargin    float64
	HighLeverage float64
	LowLeverage  float64
	LeverageStep float64

	// Floors that keep the band non-degenerate.
	ConservativeFloorFrac float64
	OptimisticFloorMult   float64
}

// DefaultConfig returns the standard estimator configuration.
func DefaultConfig() Config {
	return Config{
		DefaultForwardPE:      15.0,
		DefaultIndustryPE:     20.0,
		MaxIndustryPE:         35.0,
		BaseMargin:            0.20,
		MaxMargin:             0.40,
		MinMargin:             0.10,
		HighLeverage:          2.0,
		LowLeverage:           0.5,
		LeverageStep:          0.10,
		ConservativeFloorFrac: 0.10,
		OptimisticFloorMult:   1.2,
	}
}

// Estimator computes fair-value bands. Pure aside from logging.
type Estimator struct {
	cfg Config
	log zerolog.Logger
}

// NewEstimator creates an estimator with the given configuration.
func NewEstimator(cfg Config, log zerolog.Logger) *Estimator {
	return &Estimator{
		cfg: cfg,
		log: log.With().Str("component", "valuation_estimator").Logger(),
	}
}

// Estimate builds the fair-value band for one ticker.
//
// The earnings path averages forwardEPS x forwardPE and forwardEPS x
// industryPE. When no positive EPS figure exists it falls back to a
// revenue multiple (revenue-per-share x price-to-sales). When neither
// path has its inputs the estimate is unable-to-compute with every
// numeric field unavailable; the estimate is never partially populated.
func (e *Estimator) Estimate(market domain.MarketSnapshot, ratios domain.RatioSet) domain.ValuationEstimate {
	price := positive(market.CurrentPrice)
	if !price.Available {
		e.log.Debug().Str("ticker", market.Ticker).Msg("no current price, valuation skipped")
		return unableToCompute()
	}

	forwardPE := e.boundedMultiple(market.ForwardPE, e.cfg.DefaultForwardPE, 0)
	industryPE := e.boundedMultiple(market.IndustryPE, e.cfg.DefaultIndustryPE, e.cfg.MaxIndustryPE)

	baseFair, ok := e.baseFairValue(market, forwardPE, industryPE)
	if !ok {
		e.log.Debug().Str("ticker", market.Ticker).Msg("no usable earnings or revenue figures, valuation skipped")
		return unableToCompute()
	}

	margin := e.safetyMargin(ratios.Get(domain.RatioDebtToEquity))

	conservative := baseFair * (1 - margin)
	if floor := price.Value * e.cfg.ConservativeFloorFrac; conservative < floor {
		conservative = floor
	}
	optimistic := baseFair * (1 + margin)
	if floor := conservative * e.cfg.OptimisticFloorMult; optimistic < floor {
		optimistic = floor
	}

	return domain.ValuationEstimate{
		ForwardPE:         domain.NewMetric(forwardPE),
		IndustryPE:        domain.NewMetric(industryPE),
		FairValue:         domain.NewMetric(baseFair),
		ConservativeValue: domain.NewMetric(conservative),
		OptimisticValue:   domain.NewMetric(optimistic),
		MarginOfSafety:    domain.NewMetric(margin),
		UpsidePct:         domain.NewMetric((optimistic - price.Value) / price.Value * 100),
		DownsidePct:       domain.NewMetric((price.Value - conservative) / price.Value * 100),
		Status:            Classify(price.Value, conservative, optimistic),
	}
}

// Classify places the current price against the (conservative,
// optimistic) band.
func Classify(price, conservative, optimistic float64) domain.ValuationStatus {
	switch {
	case price < conservative:
		return domain.StatusUndervalued
	case price > optimistic:
		return domain.StatusOvervalued
	default:
		return domain.StatusFairValued
	}
}

// baseFairValue averages the two earnings multiples, falling back to a
// revenue multiple when no positive EPS figure exists.
func (e *Estimator) baseFairValue(market domain.MarketSnapshot, forwardPE, industryPE float64) (float64, bool) {
	eps := positive(market.ForwardEPS)
	if !eps.Available {
		eps = positive(market.TrailingEPS)
	}
	if eps.Available {
		return (eps.Value*forwardPE + eps.Value*industryPE) / 2, true
	}

	rps := positive(market.RevenuePerShare)
	ps := positive(market.PriceToSales)
	if rps.Available && ps.Available {
		return rps.Value * ps.Value, true
	}
	return 0, false
}

// safetyMargin starts at the base margin and adjusts it for leverage:
// wider above the high threshold, narrower below the low one, bounded
// in both directions.
func (e *Estimator) safetyMargin(debtToEquity domain.Metric) float64 {
	margin := e.cfg.BaseMargin
	if !debtToEquity.Available {
		return margin
	}

	switch {
	case debtToEquity.Value > e.cfg.HighLeverage:
		margin += e.cfg.LeverageStep
		if margin > e.cfg.MaxMargin {
			margin = e.cfg.MaxMargin
		}
	case debtToEquity.Value < e.cfg.LowLeverage:
		margin -= e.cfg.LeverageStep
		if margin < e.cfg.MinMargin {
			margin = e.cfg.MinMargin
		}
	}
	return margin
}

// boundedMultiple picks the provider value when positive, the default
// otherwise, and caps the result when a cap is set.
func (e *Estimator) boundedMultiple(provided *float64, fallback, upper float64) float64 {
	v := fallback
	if m := positive(provided); m.Available {
		v = m.Value
	}
	if upper > 0 && v > upper {
		v = upper
	}
	return v
}

// positive converts an optional provider field, rejecting non-positive
// values the same way missing ones are rejected.
func positive(v *float64) domain.Metric {
	m := domain.MetricFromPtr(v)
	if m.Available && m.Value <= 0 {
		return domain.Unavailable()
	}
	return m
}

func unableToCompute() domain.ValuationEstimate {
	return domain.ValuationEstimate{Status: domain.StatusUnableToCompute}
}
