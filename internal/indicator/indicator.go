// Package indicator provides technical indicator calculations over price
// series. All functions are pure and never fail: on insufficient data they
// return a documented neutral value so callers always get a usable number.
package indicator

import "math"

// epsilon floors the average loss in RSI so a lossless window does not
// divide by zero.
const epsilon = 1e-10

// SimpleMovingAverage averages the trailing min(period, len(values)) values.
// Returns 0 for an empty slice. Using a shorter window when history is short
// is intentional graceful degradation, not an error.
func SimpleMovingAverage(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period > len(values) {
		period = len(values)
	}
	if period <= 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// StandardDeviation computes the population standard deviation (divide by n)
// of the given slice. Returns 0 for an empty slice.
func StandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

// RSI computes the Wilder-style relative strength index from simple average
// gain and average loss over the period bars preceding atIndex. Returns the
// neutral value 50 when fewer than period prior bars exist.
func RSI(values []float64, atIndex, period int) float64 {
	if period <= 0 || atIndex < period || atIndex >= len(values) {
		return 50
	}

	var gain, loss float64
	for i := atIndex - period + 1; i <= atIndex; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}

	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss < epsilon {
		avgLoss = epsilon
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// Bands holds the three Bollinger band values for one point in time.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands computes middle = SMA(period) and upper/lower = middle ±
// width·σ over the trailing period window. When the window is shorter than
// period, all three bands collapse onto the latest value.
func BollingerBands(values []float64, period int, width float64) Bands {
	if len(values) == 0 {
		return Bands{}
	}
	if period <= 0 || len(values) < period {
		last := values[len(values)-1]
		return Bands{Upper: last, Middle: last, Lower: last}
	}

	window := values[len(values)-period:]
	middle := SimpleMovingAverage(window, period)
	sigma := StandardDeviation(window)

	return Bands{
		Upper:  middle + width*sigma,
		Middle: middle,
		Lower:  middle - width*sigma,
	}
}
