package strategy

import (
	"math"
)

// MovingAverage returns the mean of the last period values of series. It
// returns NaN when series holds fewer than period values or period is not
// positive; callers treat NaN as not enough data.
func MovingAverage(series []float64, period int) float64 {
	if period <= 0 || len(series) < period {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// PriceChangePercent returns the percentage change from previous to current.
// A zero previous price yields 0.
func PriceChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) * 100 / previous
}

// ClampConfidence clamps x to [0, 1]. NaN maps to 0.
func ClampConfidence(x float64) float64 {
	switch {
	case math.IsNaN(x), x <= 0:
		return 0
	case x >= 1:
		return 1
	default:
		return x
	}
}

// positionSize scales the maximum position size by confidence.
func positionSize(maxPositionSize, confidence float64) float64 {
	return math.Min(maxPositionSize*confidence, maxPositionSize)
}
