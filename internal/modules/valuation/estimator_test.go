package valuation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/beacon/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func newTestEstimator() *Estimator {
	return NewEstimator(DefaultConfig(), zerolog.Nop())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  domain.ValuationStatus
	}{
		{"inside the band", 100, domain.StatusFairValued},
		{"below conservative", 80, domain.StatusUndervalued},
		{"above optimistic", 140, domain.StatusOvervalued},
		{"exactly conservative", 90, domain.StatusFairValued},
		{"exactly optimistic", 130, domain.StatusFairValued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.price, 90, 130))
		})
	}
}

func TestEstimate_EarningsPath(t *testing.T) {
	market := domain.MarketSnapshot{
		Ticker:       "TEST",
		CurrentPrice: fptr(100),
		ForwardEPS:   fptr(5),
		ForwardPE:    fptr(18),
		IndustryPE:   fptr(22),
	}

	est := newTestEstimator().Estimate(market, domain.RatioSet{})

	require.NotEqual(t, domain.StatusUnableToCompute, est.Status)
	assert.InDelta(t, 18.0, est.ForwardPE.Value, 1e-9)
	assert.InDelta(t, 22.0, est.IndustryPE.Value, 1e-9)
	// (5*18 + 5*22) / 2 = 100
	assert.InDelta(t, 100.0, est.FairValue.Value, 1e-9)
	assert.InDelta(t, 0.20, est.MarginOfSafety.Value, 1e-9)
	assert.InDelta(t, 80.0, est.ConservativeValue.Value, 1e-9)
	assert.InDelta(t, 120.0, est.OptimisticValue.Value, 1e-9)
	assert.InDelta(t, 20.0, est.UpsidePct.Value, 1e-9)
	assert.InDelta(t, 20.0, est.DownsidePct.Value, 1e-9)
	assert.Equal(t, domain.StatusFairValued, est.Status)
}

func TestEstimate_UpsideDownsideFromBand(t *testing.T) {
	// Pick inputs that land on the 90/130 band around a 100 price:
	// fair value 108.3..., margin adjusted via a fixed config instead.
	cfg := DefaultConfig()
	cfg.BaseMargin = 0.18181818181818182 // band = fair * (1 +/- m)
	e := NewEstimator(cfg, zerolog.Nop())

	market := domain.MarketSnapshot{
		CurrentPrice: fptr(100),
		ForwardEPS:   fptr(5.5),
		ForwardPE:    fptr(20),
		IndustryPE:   fptr(20),
	}

	est := e.Estimate(market, domain.RatioSet{})
	require.Equal(t, domain.StatusFairValued, est.Status)
	assert.InDelta(t, 110.0, est.FairValue.Value, 1e-9)
	assert.InDelta(t, 90.0, est.ConservativeValue.Value, 1e-9)
	assert.InDelta(t, 130.0, est.OptimisticValue.Value, 1e-9)
	assert.InDelta(t, 30.0, est.UpsidePct.Value, 1e-9)
	assert.InDelta(t, 10.0, est.DownsidePct.Value, 1e-9)
}

func TestEstimate_TrailingEPSFallback(t *testing.T) {
	market := domain.MarketSnapshot{
		CurrentPrice: fptr(100),
		ForwardEPS:   fptr(-2), // non-positive forward EPS is ignored
		TrailingEPS:  fptr(4),
		ForwardPE:    fptr(15),
		IndustryPE:   fptr(25),
	}

	est := newTestEstimator().Estimate(market, domain.RatioSet{})
	require.NotEqual(t, domain.StatusUnableToCompute, est.Status)
	// (4*15 + 4*25) / 2 = 80
	assert.InDelta(t, 80.0, est.FairValue.Value, 1e-9)
}

func TestEstimate_RevenueMultipleFallback(t *testing.T) {
	market := domain.MarketSnapshot{
		CurrentPrice:    fptr(50),
		RevenuePerShare: fptr(20),
		PriceToSales:    fptr(3),
	}

	est := newTestEstimator().Estimate(market, domain.RatioSet{})
	require.NotEqual(t, domain.StatusUnableToCompute, est.Status)
	assert.InDelta(t, 60.0, est.FairValue.Value, 1e-9)
}

func TestEstimate_UnableToCompute(t *testing.T) {
	tests := []struct {
		name   string
		market domain.MarketSnapshot
	}{
		{"no price", domain.MarketSnapshot{ForwardEPS: fptr(5)}},
		{"no earnings or revenue figures", domain.MarketSnapshot{CurrentPrice: fptr(100)}},
		{"revenue path missing price-to-sales", domain.MarketSnapshot{
			CurrentPrice:    fptr(100),
			RevenuePerShare: fptr(20),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := newTestEstimator().Estimate(tt.market, domain.RatioSet{})
			assert.Equal(t, domain.StatusUnableToCompute, est.Status)
			// Never partially populated.
			assert.False(t, est.ForwardPE.Available)
			assert.False(t, est.IndustryPE.Available)
			assert.False(t, est.FairValue.Available)
			assert.False(t, est.ConservativeValue.Available)
			assert.False(t, est.OptimisticValue.Available)
			assert.False(t, est.MarginOfSafety.Available)
			assert.False(t, est.UpsidePct.Available)
			assert.False(t, est.DownsidePct.Available)
		})
	}
}

func TestEstimate_DefaultAndCappedMultiples(t *testing.T) {
	market := domain.MarketSnapshot{
		CurrentPrice: fptr(100),
		ForwardEPS:   fptr(5),
		IndustryPE:   fptr(90), // far above the cap
	}

	est := newTestEstimator().Estimate(market, domain.RatioSet{})
	require.NotEqual(t, domain.StatusUnableToCompute, est.Status)
	assert.InDelta(t, 15.0, est.ForwardPE.Value, 1e-9, "missing forward P/E uses the default")
	assert.InDelta(t, 35.0, est.IndustryPE.Value, 1e-9, "industry P/E is capped")
}

func TestEstimate_LeverageAdjustsMargin(t *testing.T) {
	market := domain.MarketSnapshot{
		CurrentPrice: fptr(100),
		ForwardEPS:   fptr(5),
		ForwardPE:    fptr(20),
		IndustryPE:   fptr(20),
	}
	e := newTestEstimator()

	base := e.Estimate(market, domain.RatioSet{})
	assert.InDelta(t, 0.20, base.MarginOfSafety.Value, 1e-9)

	leveraged := e.Estimate(market, domain.RatioSet{
		domain.RatioDebtToEquity: domain.NewMetric(3.0),
	})
	assert.InDelta(t, 0.30, leveraged.MarginOfSafety.Value, 1e-9, "high leverage widens the margin")
	assert.Less(t, leveraged.ConservativeValue.Value, base.ConservativeValue.Value)

	conservative := e.Estimate(market, domain.RatioSet{
		domain.RatioDebtToEquity: domain.NewMetric(0.2),
	})
	assert.InDelta(t, 0.10, conservative.MarginOfSafety.Value, 1e-9, "low leverage narrows the margin")
}

func TestEstimate_ConservativeFloor(t *testing.T) {
	// Tiny fair value relative to price: the conservative bound floors at
	// a fraction of price and the optimistic bound floors above it.
	market := domain.MarketSnapshot{
		CurrentPrice: fptr(1000),
		ForwardEPS:   fptr(0.5),
		ForwardPE:    fptr(10),
		IndustryPE:   fptr(10),
	}

	est := newTestEstimator().Estimate(market, domain.RatioSet{})
	require.NotEqual(t, domain.StatusUnableToCompute, est.Status)
	assert.InDelta(t, 100.0, est.ConservativeValue.Value, 1e-9)
	assert.InDelta(t, 120.0, est.OptimisticValue.Value, 1e-9)
	assert.Equal(t, domain.StatusOvervalued, est.Status)
}
