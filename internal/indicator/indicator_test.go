package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		period int
		want   float64
	}{
		{
			name:   "empty slice returns zero",
			values: []float64{},
			period: 20,
			want:   0,
		},
		{
			name:   "full window",
			values: []float64{1, 2, 3, 4, 5},
			period: 3,
			want:   4,
		},
		{
			name:   "short history uses available values",
			values: []float64{1, 2},
			period: 5,
			want:   1.5,
		},
		{
			name:   "period equals length",
			values: []float64{2, 4, 6},
			period: 3,
			want:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimpleMovingAverage(tt.values, tt.period)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStandardDeviation(t *testing.T) {
	assert.InDelta(t, 2, StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.Equal(t, float64(0), StandardDeviation(nil))
	assert.Equal(t, float64(0), StandardDeviation([]float64{5}))
}

func TestRSI(t *testing.T) {
	t.Run("insufficient history returns neutral 50", func(t *testing.T) {
		values := []float64{100, 101, 102, 103, 104}
		assert.Equal(t, float64(50), RSI(values, 3, 14))
	})

	t.Run("mixed gains and losses", func(t *testing.T) {
		values := []float64{10, 11, 12, 11, 12, 13, 12, 13, 14}
		// changes over the 4 bars up to index 8: +1, -1, +1, +1
		assert.InDelta(t, 75, RSI(values, 8, 4), 1e-6)
	})

	t.Run("all gains saturates near 100", func(t *testing.T) {
		values := make([]float64, 30)
		for i := range values {
			values[i] = 100 + float64(i)
		}
		assert.InDelta(t, 100, RSI(values, 20, 14), 1e-3)
	})

	t.Run("out of range index returns neutral", func(t *testing.T) {
		assert.Equal(t, float64(50), RSI([]float64{1, 2}, 10, 1))
	})
}

func TestBollingerBands(t *testing.T) {
	t.Run("window shorter than period collapses to last value", func(t *testing.T) {
		bands := BollingerBands([]float64{1, 2, 3, 4}, 10, 2)
		assert.Equal(t, Bands{Upper: 4, Middle: 4, Lower: 4}, bands)
	})

	t.Run("computes bands over trailing window", func(t *testing.T) {
		bands := BollingerBands([]float64{1, 2, 3, 4}, 2, 1)
		assert.InDelta(t, 3.5, bands.Middle, 1e-9)
		assert.InDelta(t, 4.0, bands.Upper, 1e-9)
		assert.InDelta(t, 3.0, bands.Lower, 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, Bands{}, BollingerBands(nil, 5, 2))
	})
}
