package features

import "math"

// Indicator windows.
const (
	SMAWindow = 20
	RSIWindow = 14
)

// RollingMean returns the trailing mean of closes over window. Positions with fewer
// than window observations are NaN.
func RollingMean(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i+1 < window || window <= 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}

// RSI computes the relative strength index from simple rolling means of gains and
// losses over period. The first period-1 positions are NaN; a window with no movement
// at all is NaN and a window with gains but no losses is 100.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	// the first close has no prior move and counts as a zero gain and loss,
	// so the first reading lands at period-1
	for i := 0; i < len(closes); i++ {
		if i < period-1 || period <= 0 {
			out[i] = math.NaN()
			continue
		}
		g, l := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			g += gains[j]
			l += losses[j]
		}
		switch {
		case g == 0 && l == 0:
			out[i] = math.NaN()
		case l == 0:
			out[i] = 100
		default:
			rs := (g / float64(period)) / (l / float64(period))
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// RSISignal maps an RSI reading to a per-row call: oversold Buy, overbought Sell.
func RSISignal(rsi float64) string {
	switch {
	case math.IsNaN(rsi):
		return "N/A"
	case rsi < 30:
		return "Buy"
	case rsi > 70:
		return "Sell"
	default:
		return "Hold"
	}
}
