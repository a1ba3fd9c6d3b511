package ratios

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name      string
		series    []float64
		want      float64
		available bool
	}{
		{"positive growth", []float64{120, 100}, 20.0, true},
		{"negative growth", []float64{80, 100}, -20.0, true},
		{"negative prior uses absolute base", []float64{50, -100}, 150.0, true},
		{"zero prior", []float64{50, 0}, 0, false},
		{"single element", []float64{100}, 0, false},
		{"empty", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthRate(tt.series)
			assert.Equal(t, tt.available, got.Available)
			if tt.available {
				assert.InDelta(t, tt.want, got.Value, 1e-9)
			}
		})
	}
}
