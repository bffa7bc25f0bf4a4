// Package model defines shared data types used across all planner modules.
package model

import "time"

// StrategyKind identifies a capital-allocation strategy.
type StrategyKind string

const (
	StrategyPyramid  StrategyKind = "pyramid"  // heaviest weight on the lowest level
	StrategyUniform  StrategyKind = "uniform"  // equal weight per level
	StrategyInverted StrategyKind = "inverted" // heaviest weight on the highest level
	StrategyCustom   StrategyKind = "custom"   // user-supplied weights
)

// Allocation is a single limit-order slot: a price level and the
// fraction of total capital assigned to it.
type Allocation struct {
	Price  float64 `json:"price"`
	Weight float64 `json:"weight"`
}

// Strategy is a named allocation set the advice analyzer compares.
type Strategy struct {
	Kind        StrategyKind `json:"kind"`
	Allocations []Allocation `json:"allocations"`
}

// PositionMetrics holds the computed outcome of an allocation set for
// one hypothetical bottom price. All fields are zero when no order fills.
type PositionMetrics struct {
	FilledPosition float64 `json:"filledPosition"` // asset units bought
	TotalCost      float64 `json:"totalCost"`      // capital spent
	AvgCost        float64 `json:"avgCost"`
	ValueAtTarget  float64 `json:"valueAtTarget"`
	Profit         float64 `json:"profit"`
	ROI            float64 `json:"roi"` // percent
}

// AdviceSegment is a contiguous bottom-price range won by one strategy.
type AdviceSegment struct {
	RangeHigh float64      `json:"rangeHigh"`
	RangeLow  float64      `json:"rangeLow"`
	IsLast    bool         `json:"isLast"`
	Winner    StrategyKind `json:"winner"`
}

// BestStrategy names the overall winner and how many levels it won.
type BestStrategy struct {
	Kind  StrategyKind `json:"kind"`
	Count int          `json:"count"`
}

// StrategyAdvice is the recommendation computed over the full sweep range.
type StrategyAdvice struct {
	ZeroZonePrice float64         `json:"zeroZonePrice"`
	Segments      []AdviceSegment `json:"segments"`
	Best          *BestStrategy   `json:"bestStrategy"`
	CoveragePct   float64         `json:"coveragePct"`
}

// CurvePoint is one sweep sample of a profit curve.
type CurvePoint struct {
	X float64 `json:"x"` // bottom price
	Y float64 `json:"y"` // profit at target
}

// StrategyCurve is the profit curve of one strategy across the sweep range.
type StrategyCurve struct {
	Kind   StrategyKind `json:"kind"`
	Points []CurvePoint `json:"points"`
}

// PlanSnapshot is a point-in-time view of the whole session: inputs,
// assembled strategies, and every computed output.
type PlanSnapshot struct {
	Asset       string                           `json:"asset"`
	Unit        string                           `json:"unit"`
	TargetPrice float64                          `json:"targetPrice"`
	TargetDate  string                           `json:"targetDate"`
	TotalSize   float64                          `json:"totalSize"`
	PriceLevels []float64                        `json:"priceLevels"`
	SweepMin    float64                          `json:"sweepMin"`
	SweepMax    float64                          `json:"sweepMax"`
	SweepStep   float64                          `json:"sweepStep"`
	BottomPrice float64                          `json:"bottomPrice"`
	Active      StrategyKind                     `json:"activeStrategy"`
	CustomValid bool                             `json:"customValid"`
	Strategies  []Strategy                       `json:"strategies"`
	Metrics     map[StrategyKind]PositionMetrics `json:"metrics"`
	Curves      []StrategyCurve                  `json:"curves"`
	Advice      *StrategyAdvice                  `json:"advice"`
	ComputedAt  time.Time                        `json:"computedAt"`
}

// PlanUpdate is a request to replace the plan parameters.
type PlanUpdate struct {
	TargetPrice float64   `json:"targetPrice"`
	TotalSize   float64   `json:"totalSize"`
	PriceLevels []float64 `json:"priceLevels"`
	SweepMin    float64   `json:"sweepMin"`
	SweepMax    float64   `json:"sweepMax"`
	SweepStep   float64   `json:"sweepStep"`
}

// WSMessage is a WebSocket message sent to dashboard clients.
type WSMessage struct {
	Type      string    `json:"type"` // plan, heartbeat
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// APIResponse is the standard REST API response envelope.
type APIResponse struct {
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
