// Package analytics derives chart data and trend projections from
// historical price bars.
package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/papertrade-io/papertrade/internal/models"
)

// ErrInsufficientHistory is returned when there are too few bars to
// compute a projection.
var ErrInsufficientHistory = errors.New("insufficient price history")

// Predict extrapolates recent daily returns into short-term price
// projections. It needs at least two bars; bars must be ordered oldest
// first.
func Predict(bars []models.Bar) ([]models.Prediction, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 bars, got %d", ErrInsufficientHistory, len(bars))
	}

	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (bars[i].Close-prev)/prev)
	}
	if len(returns) == 0 {
		return nil, fmt.Errorf("%w: no usable returns", ErrInsufficientHistory)
	}

	avg := mean(returns)
	vol := stddev(returns, avg)

	current := bars[len(bars)-1].Close

	project := func(days int) (value, change float64) {
		value = current * math.Pow(1+avg, float64(days))
		change = (value - current) / current * 100
		return value, change
	}

	next, nextChange := project(1)
	week, weekChange := project(7)
	month, monthChange := project(30)

	// Confidence degrades with volatility; floor at 50.
	confidence := math.Max(50, 100-vol*1000)

	return []models.Prediction{
		{Metric: "Next Day", Value: round2(next), Change: round2(nextChange)},
		{Metric: "Next Week", Value: round2(week), Change: round2(weekChange)},
		{Metric: "Next Month", Value: round2(month), Change: round2(monthChange)},
		{Metric: "Confidence", Value: round2(confidence), Change: 0},
	}, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, avg float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
