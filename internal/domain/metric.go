package domain

import (
	"encoding/json"
	"math"
)

// Metric is a derived numeric value that may be unavailable.
// The zero value is the unavailable state. Unavailable is an explicit
// sentinel: a ratio that could not be derived is never reported as 0.
type Metric struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}

// NewMetric creates an available metric. Non-finite inputs (NaN, ±Inf)
// collapse to the unavailable state so they can never leak into reports.
func NewMetric(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Available: true}
}

// Unavailable returns the explicit unavailable sentinel.
func Unavailable() Metric {
	return Metric{}
}

// MetricFromPtr converts an optional provider field into a metric.
func MetricFromPtr(v *float64) Metric {
	if v == nil {
		return Metric{}
	}
	return NewMetric(*v)
}

// MarshalJSON encodes an available metric as its number and an
// unavailable one as null, which is what the dashboard renders as "N/A".
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Available {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = NewMetric(v)
	return nil
}
