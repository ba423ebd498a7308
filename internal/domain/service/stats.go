// Package service implements the rebalancing decision engine: price
// statistics, balance valuation, the buy/sell decision and trade
// reconciliation, plus the Engine that runs them as one cycle against the
// repository ports.
package service

import (
	"math"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
)

// ComputeStats derives 24h statistics for one tracked token from its price
// window. The window must contain at least one sample; an empty window is a
// *model.MissingDataError, never a zero-valued Stats.
func ComputeStats(token string, points []model.PricePoint) (model.Stats, error) {
	if len(points) == 0 {
		return model.Stats{}, &model.MissingDataError{Token: token}
	}

	var sum float64
	last := points[0]
	for _, p := range points {
		sum += p.Price
		if !p.Date.Before(last.Date) {
			last = p
		}
	}
	mean := sum / float64(len(points))

	var sqSum float64
	for _, p := range points {
		d := p.Price - mean
		sqSum += d * d
	}
	// Population standard deviation: every sample of the window is the
	// population, so the divisor is n, not n-1.
	stdDev := math.Sqrt(sqSum / float64(len(points)))

	deviationPct := (last.Price - mean) / mean * 100

	// Zero deviation lands on the "more expensive" branch so the output is a
	// deterministic two-way split with no tie case.
	direction := model.MoreExpensive
	if deviationPct < 0 {
		direction = model.Cheaper
	}

	return model.Stats{
		Token:            token,
		SampleCount:      len(points),
		Mean:             mean,
		LastPrice:        last.Price,
		StdDev:           stdDev,
		StdDevPct:        stdDev / mean * 100,
		LastDeviationPct: deviationPct,
		Direction:        direction,
	}, nil
}
