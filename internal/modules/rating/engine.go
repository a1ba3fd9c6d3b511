// Package rating maps a derived ratio set to a single letter grade via
// a fixed weighted scorecard.
package rating

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/beacon/internal/domain"
)

// Criterion scores one ratio against its good/neutral thresholds.
// A ratio at or past Good scores 3, at or past Neutral scores 2,
// otherwise 1. Inverted criteria treat lower values as better.
type Criterion struct {
	Ratio    string
	Weight   float64
	Good     float64
	Neutral  float64
	Inverted bool
}

// Config is the immutable scorecard: the weighted criteria plus the
// score cutoffs for each letter grade.
type Config struct {
	Criteria []Criterion
	CutoffA  float64
	CutoffB  float64
	CutoffC  float64
	CutoffD  float64
}

// DefaultConfig returns the standard quality scorecard.
func DefaultConfig() Config {
	return Config{
		Criteria: []Criterion{
			{Ratio: domain.RatioGrossMargin, Weight: 0.15, Good: 40, Neutral: 20},
			{Ratio: domain.RatioOperatingMargin, Weight: 0.20, Good: 15, Neutral: 8},
			{Ratio: domain.RatioROCE, Weight: 0.20, Good: 15, Neutral: 8},
			{Ratio: domain.RatioCashConversion, Weight: 0.15, Good: 90, Neutral: 70},
			{Ratio: domain.RatioDebtToEquity, Weight: 0.15, Good: 1.0, Neutral: 2.0, Inverted: true},
			{Ratio: domain.RatioInterestCoverage, Weight: 0.15, Good: 8, Neutral: 3},
		},
		CutoffA: 2.7,
		CutoffB: 2.3,
		CutoffC: 2.0,
		CutoffD: 1.7,
	}
}

// Engine rates ratio sets. Deterministic and pure aside from logging.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

// NewEngine creates a rating engine with the given scorecard.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		log: log.With().Str("component", "rating_engine").Logger(),
	}
}

// Rate scores the available weighted ratios and maps the weighted mean
// to a letter grade. Unavailable ratios are skipped and their weight
// excluded from the normalizing total. With no available ratios the
// grade is N/A and the score unavailable.
func (e *Engine) Rate(ratios domain.RatioSet) domain.Rating {
	scores := make([]float64, 0, len(e.cfg.Criteria))
	weights := make([]float64, 0, len(e.cfg.Criteria))

	for _, c := range e.cfg.Criteria {
		m := ratios.Get(c.Ratio)
		if !m.Available {
			continue
		}
		scores = append(scores, c.score(m.Value))
		weights = append(weights, c.Weight)
	}

	if len(scores) == 0 {
		e.log.Debug().Msg("no weighted ratios available, rating skipped")
		return domain.Rating{Grade: domain.GradeNotAvailable, Score: domain.Unavailable()}
	}

	score := stat.Mean(scores, weights)
	return domain.Rating{Grade: e.grade(score), Score: domain.NewMetric(score)}
}

func (c Criterion) score(v float64) float64 {
	if c.Inverted {
		switch {
		case v <= c.Good:
			return 3
		case v <= c.Neutral:
			return 2
		default:
			return 1
		}
	}
	switch {
	case v >= c.Good:
		return 3
	case v >= c.Neutral:
		return 2
	default:
		return 1
	}
}

func (e *Engine) grade(score float64) domain.Grade {
	switch {
	case score >= e.cfg.CutoffA:
		return domain.GradeA
	case score >= e.cfg.CutoffB:
		return domain.GradeB
	case score >= e.cfg.CutoffC:
		return domain.GradeC
	case score >= e.cfg.CutoffD:
		return domain.GradeD
	default:
		return domain.GradeF
	}
}
