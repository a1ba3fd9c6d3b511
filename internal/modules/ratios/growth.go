package ratios

import (
	"math"

	"github.com/aristath/beacon/internal/domain"
)

// GrowthRate computes the period-over-period percentage change of a
// most-recent-first series: (s[0]-s[1]) / abs(s[1]) * 100.
//
// It needs at least two data points and a non-zero prior value;
// otherwise the result is unavailable. Division by zero is never
// coerced to 0 or infinity.
func GrowthRate(series []float64) domain.Metric {
	if len(series) < 2 {
		return domain.Unavailable()
	}

	current, prior := series[0], series[1]
	if prior == 0 {
		return domain.Unavailable()
	}

	return domain.NewMetric((current - prior) / math.Abs(prior) * 100)
}
