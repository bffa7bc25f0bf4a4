package planner

import (
	"math"
	"sort"

	"ladderplan/internal/model"
)

// levelWin records the winning strategy at one price-level boundary.
type levelWin struct {
	price  float64
	winner model.StrategyKind
}

// AnalyzeAdvice determines, across the whole bottom-price sweep range,
// which strategy is most profitable. The filled-order set only changes at
// a price level boundary (fills are inclusive at the level), so one
// evaluation per distinct level characterizes the winner over the entire
// continuous range. Consecutive levels with the same winner merge into a
// single segment.
//
// Returns nil when there is nothing to analyze: no strategies, or no
// active price level (levels with price <= 0 are unused slots). All other
// degenerate cases are expressed inside a non-nil result — a sweep where
// no strategy ever shows positive profit yields empty segments and a nil
// best strategy.
func AnalyzeAdvice(
	strategies []model.Strategy,
	priceLevels []float64,
	targetPrice, totalSize float64,
	sweepMin, sweepMax, sweepStep float64,
) *model.StrategyAdvice {
	if len(strategies) == 0 {
		return nil
	}

	active := make([]float64, 0, len(priceLevels))
	for _, p := range priceLevels {
		if p > 0 {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(active)))

	wins := make([]levelWin, 0, len(active))
	for _, level := range active {
		if winner, ok := winnerAtLevel(strategies, level, targetPrice, totalSize); ok {
			wins = append(wins, levelWin{price: level, winner: winner})
		}
	}

	advice := &model.StrategyAdvice{
		ZeroZonePrice: active[0],
		Segments:      mergeWins(wins),
		Best:          bestByLevelCount(wins),
	}
	if advice.Best != nil {
		advice.CoveragePct = coveragePct(advice.Segments, advice.Best.Kind, active, sweepMin, sweepMax, sweepStep)
	}
	return advice
}

// winnerAtLevel evaluates every strategy at one threshold price and picks
// the most profitable. Levels where the best profit is still <= 0 report
// no winner. On an exact tie the custom strategy is preferred if it is
// among the tied set; otherwise the first tied strategy in input order wins.
func winnerAtLevel(
	strategies []model.Strategy,
	level, targetPrice, totalSize float64,
) (model.StrategyKind, bool) {
	maxProfit := math.Inf(-1)
	profits := make([]float64, len(strategies))
	for i, st := range strategies {
		profits[i] = CalculatePositionStats(st.Allocations, level, targetPrice, totalSize).Profit
		if profits[i] > maxProfit {
			maxProfit = profits[i]
		}
	}
	if maxProfit <= 0 {
		return "", false
	}

	winner := model.StrategyKind("")
	for i, st := range strategies {
		if profits[i] != maxProfit {
			continue
		}
		if winner == "" {
			winner = st.Kind
		}
		if st.Kind == model.StrategyCustom {
			// A hand-tuned allocation beats a generic preset on a tie.
			return model.StrategyCustom, true
		}
	}
	return winner, true
}

// mergeWins collapses adjacent level wins (descending price order) with
// the same winner into contiguous segments. The final segment carries
// IsLast, marking that it extends down to the lowest recorded level.
func mergeWins(wins []levelWin) []model.AdviceSegment {
	segments := make([]model.AdviceSegment, 0, len(wins))
	for _, win := range wins {
		if n := len(segments); n > 0 && segments[n-1].Winner == win.winner {
			segments[n-1].RangeLow = win.price
			continue
		}
		segments = append(segments, model.AdviceSegment{
			RangeHigh: win.price,
			RangeLow:  win.price,
			Winner:    win.winner,
		})
	}
	if len(segments) > 0 {
		segments[len(segments)-1].IsLast = true
	}
	return segments
}

// bestByLevelCount tallies levels won per strategy. Ties break toward
// whichever strategy's count first reached the running maximum.
func bestByLevelCount(wins []levelWin) *model.BestStrategy {
	if len(wins) == 0 {
		return nil
	}
	counts := make(map[model.StrategyKind]int)
	var best model.BestStrategy
	for _, win := range wins {
		counts[win.winner]++
		if counts[win.winner] > best.Count {
			best = model.BestStrategy{Kind: win.winner, Count: counts[win.winner]}
		}
	}
	return &best
}

// coveragePct computes what share of the sweep range, in sweep-step units,
// is won by the best strategy. A segment's lower bound is the next-lower
// active level plus one step (fills change exclusively below the level),
// or the sweep minimum when the segment reaches the lowest level; its
// upper bound is the segment high clamped to the sweep maximum.
func coveragePct(
	segments []model.AdviceSegment,
	best model.StrategyKind,
	activeDesc []float64,
	sweepMin, sweepMax, sweepStep float64,
) float64 {
	totalSteps := (sweepMax-sweepMin)/sweepStep + 1
	if totalSteps <= 0 {
		return 0
	}

	wonSteps := 0.0
	for _, seg := range segments {
		if seg.Winner != best {
			continue
		}
		low := sweepMin
		if next, ok := nextLowerLevel(activeDesc, seg.RangeLow); ok {
			low = next + sweepStep
		}
		high := math.Min(seg.RangeHigh, sweepMax)
		low = math.Max(low, sweepMin)
		if high < low {
			continue
		}
		wonSteps += (high-low)/sweepStep + 1
	}

	return math.Round(wonSteps / totalSteps * 100)
}

// nextLowerLevel returns the first active level strictly below price.
func nextLowerLevel(activeDesc []float64, price float64) (float64, bool) {
	for _, p := range activeDesc {
		if p < price {
			return p, true
		}
	}
	return 0, false
}
