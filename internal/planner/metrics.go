package planner

import "ladderplan/internal/model"

// CalculatePositionStats computes position and profit metrics for an
// allocation set at a hypothetical bottom price. A limit order fills when
// its price is at or above thresholdPrice (the market dropped to or below
// the level, so the order executed). If nothing fills, every metric is
// zero — callers must treat that as a valid result, not a failure.
func CalculatePositionStats(
	allocations []model.Allocation,
	thresholdPrice, targetPrice, totalSize float64,
) model.PositionMetrics {
	var weightSum, costWeight float64
	for _, alloc := range allocations {
		if alloc.Price >= thresholdPrice {
			weightSum += alloc.Weight
			costWeight += alloc.Weight * alloc.Price
		}
	}

	// A filled set carrying no weight buys nothing, same as no fill at
	// all. Guarding on the position rather than the fill count keeps the
	// avg-cost and ROI divisions away from 0/0.
	filledPosition := totalSize * weightSum
	if filledPosition == 0 {
		return model.PositionMetrics{}
	}
	totalCost := totalSize * costWeight
	valueAtTarget := filledPosition * targetPrice
	profit := valueAtTarget - totalCost

	return model.PositionMetrics{
		FilledPosition: filledPosition,
		TotalCost:      totalCost,
		AvgCost:        totalCost / filledPosition,
		ValueAtTarget:  valueAtTarget,
		Profit:         profit,
		ROI:            profit / totalCost * 100,
	}
}
