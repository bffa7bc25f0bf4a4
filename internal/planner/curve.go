package planner

import "ladderplan/internal/model"

// WeightSumTolerance is the allowed deviation of a custom allocation's
// weight sum from 1 before it is flagged invalid and excluded from
// comparison.
const WeightSumTolerance = 0.005

// BuildAllocations zips price levels with a weight array, skipping
// inactive levels (price <= 0). Weights are matched to the active levels
// by position, in the caller's level ordering (index 0 = highest level by
// convention).
func BuildAllocations(priceLevels, weights []float64) []model.Allocation {
	allocs := make([]model.Allocation, 0, len(priceLevels))
	for _, price := range priceLevels {
		if price <= 0 {
			continue
		}
		weight := 0.0
		if len(allocs) < len(weights) {
			weight = weights[len(allocs)]
		}
		allocs = append(allocs, model.Allocation{Price: price, Weight: weight})
	}
	return allocs
}

// CustomWeightsValid reports whether a custom weight set represents fully
// deployed capital: the sum must land within WeightSumTolerance of 1.
func CustomWeightsValid(weights []float64) bool {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	diff := sum - 1
	if diff < 0 {
		diff = -diff
	}
	return diff <= WeightSumTolerance
}

// AssembleStrategies builds the comparable strategy list for the given
// price levels: the three presets, plus the custom set when its weights
// are valid. Returns the strategies and whether custom was included.
func AssembleStrategies(priceLevels, customWeights []float64) ([]model.Strategy, bool) {
	levelCount := 0
	for _, p := range priceLevels {
		if p > 0 {
			levelCount++
		}
	}
	if levelCount == 0 {
		return nil, false
	}

	presets := GeneratePresetWeights(levelCount)
	strategies := []model.Strategy{
		{Kind: model.StrategyPyramid, Allocations: BuildAllocations(priceLevels, presets.Pyramid)},
		{Kind: model.StrategyUniform, Allocations: BuildAllocations(priceLevels, presets.Uniform)},
		{Kind: model.StrategyInverted, Allocations: BuildAllocations(priceLevels, presets.Inverted)},
	}

	customValid := len(customWeights) == levelCount && CustomWeightsValid(customWeights)
	if customValid {
		strategies = append(strategies, model.Strategy{
			Kind:        model.StrategyCustom,
			Allocations: BuildAllocations(priceLevels, customWeights),
		})
	}
	return strategies, customValid
}

// BuildProfitCurves samples every strategy's profit across the sweep
// range, one CalculatePositionStats call per step per strategy. Returns
// nil when the sweep range is not well-defined.
func BuildProfitCurves(
	strategies []model.Strategy,
	targetPrice, totalSize float64,
	sweepMin, sweepMax, sweepStep float64,
) []model.StrategyCurve {
	if sweepStep <= 0 || sweepMin >= sweepMax {
		return nil
	}

	// Index-based stepping: accumulating the step would drift with
	// fractional sizes and could drop the final point at sweepMax.
	steps := int((sweepMax-sweepMin)/sweepStep+1e-9) + 1

	curves := make([]model.StrategyCurve, 0, len(strategies))
	for _, st := range strategies {
		points := make([]model.CurvePoint, 0, steps)
		for i := 0; i < steps; i++ {
			price := sweepMin + float64(i)*sweepStep
			stats := CalculatePositionStats(st.Allocations, price, targetPrice, totalSize)
			points = append(points, model.CurvePoint{X: price, Y: stats.Profit})
		}
		curves = append(curves, model.StrategyCurve{Kind: st.Kind, Points: points})
	}
	return curves
}
