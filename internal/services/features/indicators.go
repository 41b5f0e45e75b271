package features

import "math"

// SMA returns the arithmetic mean of the last period values.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// RSI computes the Wilder-smoothed relative strength index over closes.
// The averages are seeded with the simple mean of the first period changes
// and smoothed recursively through the rest of the series.
// Returns false when there are not enough closes or the series is flat.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) <= period {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 0, false
		}
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

func splitChange(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

// Bollinger returns SMA(period) ± k·σ where σ is the population standard
// deviation of the last period closes.
func Bollinger(closes []float64, period int, k float64) (upper, lower float64, ok bool) {
	mid, ok := SMA(closes, period)
	if !ok {
		return 0, 0, false
	}
	sigma := StdDev(closes[len(closes)-period:], 0)
	return mid + k*sigma, mid - k*sigma, true
}

// PctChanges returns c[i]/c[i-1]-1 for every adjacent pair.
func PctChanges(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// Volatility is the sample standard deviation of the last window percentage
// changes, expressed in percent.
func Volatility(closes []float64, window int) (float64, bool) {
	if window <= 1 {
		return 0, false
	}
	changes := PctChanges(closes)
	if len(changes) < window {
		return 0, false
	}
	return StdDev(changes[len(changes)-window:], 1) * 100, true
}

// StdDev computes the standard deviation with ddof delta degrees of freedom
// (0 for population, 1 for sample).
func StdDev(values []float64, ddof int) float64 {
	n := len(values)
	if n-ddof <= 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-ddof))
}
