// Package planner implements the calculation engine: preset weight
// generation, position metrics, profit curves, and strategy advice.
// Every function here is pure — same inputs, same outputs, no state.
package planner

import "math"

// DefaultExponentialBase seeds the initial custom allocation shape.
const DefaultExponentialBase = 1.8

// PresetWeights holds the three canonical allocation-weight shapes.
// Index 0 corresponds to the highest price level in the caller's ordering.
type PresetWeights struct {
	Pyramid  []float64 `json:"pyramid"`
	Uniform  []float64 `json:"uniform"`
	Inverted []float64 `json:"inverted"`
}

// GeneratePresetWeights produces the pyramid, uniform, and inverted weight
// arrays for the given level count. Each array sums to 1: exactly for
// uniform (the last element absorbs the rounding residue), within
// floating-point epsilon for the other two. levelCount must be >= 1.
func GeneratePresetWeights(levelCount int) PresetWeights {
	pyramid := make([]float64, levelCount)
	uniform := make([]float64, levelCount)
	inverted := make([]float64, levelCount)

	total := float64(levelCount*(levelCount+1)) / 2
	for i := 0; i < levelCount; i++ {
		pyramid[i] = float64(i+1) / total
		uniform[i] = 1.0 / float64(levelCount)
	}
	// Force the uniform sum to land on exactly 1 despite division error.
	uniform[levelCount-1] = 1.0 - float64(levelCount-1)/float64(levelCount)

	for i := 0; i < levelCount; i++ {
		inverted[i] = pyramid[levelCount-1-i]
	}

	return PresetWeights{Pyramid: pyramid, Uniform: uniform, Inverted: inverted}
}

// GenerateExponentialWeights produces a normalized, steeply decreasing
// weight array: rawWeight[i] = base^(levelCount-1-i), then scaled to sum 1.
// For base > 1 the result is strictly decreasing from index 0. Used to
// seed the initial custom allocation. levelCount must be >= 1.
func GenerateExponentialWeights(levelCount int, base float64) []float64 {
	weights := make([]float64, levelCount)
	sum := 0.0
	for i := 0; i < levelCount; i++ {
		w := math.Pow(base, float64(levelCount-1-i))
		weights[i] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
