package rating

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/beacon/internal/domain"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), zerolog.Nop())
}

// ratioSetAt builds a set placing every weighted ratio exactly at the
// chosen threshold of its criterion.
func ratioSetAt(pick func(Criterion) float64) domain.RatioSet {
	rs := make(domain.RatioSet)
	for _, c := range DefaultConfig().Criteria {
		rs[c.Ratio] = domain.NewMetric(pick(c))
	}
	return rs
}

func TestRate_AllGoodThresholds(t *testing.T) {
	r := newTestEngine().Rate(ratioSetAt(func(c Criterion) float64 { return c.Good }))

	require.True(t, r.Score.Available)
	assert.InDelta(t, 3.0, r.Score.Value, 1e-9)
	assert.Equal(t, domain.GradeA, r.Grade)
}

func TestRate_AllNeutralThresholds(t *testing.T) {
	r := newTestEngine().Rate(ratioSetAt(func(c Criterion) float64 { return c.Neutral }))

	require.True(t, r.Score.Available)
	assert.InDelta(t, 2.0, r.Score.Value, 1e-9)
	assert.Equal(t, domain.GradeC, r.Grade)
}

func TestRate_NothingAvailable(t *testing.T) {
	r := newTestEngine().Rate(domain.RatioSet{})

	assert.Equal(t, domain.GradeNotAvailable, r.Grade)
	assert.False(t, r.Score.Available)
}

func TestRate_UnavailableRatiosExcludedFromWeights(t *testing.T) {
	// Only two criteria available, one good and one neutral with equal
	// weights: the mean must normalize over the used weights only.
	rs := domain.RatioSet{
		domain.RatioGrossMargin:    domain.NewMetric(50),  // good, weight .15
		domain.RatioCashConversion: domain.NewMetric(75),  // neutral, weight .15
	}

	r := newTestEngine().Rate(rs)
	require.True(t, r.Score.Available)
	assert.InDelta(t, 2.5, r.Score.Value, 1e-9)
	assert.Equal(t, domain.GradeB, r.Grade)
}

func TestRate_InvertedDebtToEquity(t *testing.T) {
	e := newTestEngine()

	low := e.Rate(domain.RatioSet{domain.RatioDebtToEquity: domain.NewMetric(0.5)})
	assert.InDelta(t, 3.0, low.Score.Value, 1e-9, "low leverage scores best")

	mid := e.Rate(domain.RatioSet{domain.RatioDebtToEquity: domain.NewMetric(1.5)})
	assert.InDelta(t, 2.0, mid.Score.Value, 1e-9)

	high := e.Rate(domain.RatioSet{domain.RatioDebtToEquity: domain.NewMetric(3.0)})
	assert.InDelta(t, 1.0, high.Score.Value, 1e-9, "high leverage scores worst")
	assert.Equal(t, domain.GradeF, high.Grade)
}

func TestGradeCutoffs(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		score float64
		want  domain.Grade
	}{
		{3.0, domain.GradeA},
		{2.7, domain.GradeA},
		{2.5, domain.GradeB},
		{2.3, domain.GradeB},
		{2.0, domain.GradeC},
		{1.7, domain.GradeD},
		{1.0, domain.GradeF},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, e.grade(tt.score), "score %.2f", tt.score)
	}
}
