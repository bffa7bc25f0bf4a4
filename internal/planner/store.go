package planner

import (
	"sync"

	"ladderplan/internal/config"
	"ladderplan/internal/model"
)

// Store is a thread-safe holder of the session state the engine functions
// are deliberately kept free of: plan parameters, custom weights, the
// active strategy selection, and the current bottom price. The engine
// recomputes from a Store snapshot on every change.
type Store struct {
	mu            sync.RWMutex
	asset         string
	unit          string
	targetPrice   float64
	targetDate    string
	totalSize     float64
	priceLevels   []float64
	sweepMin      float64
	sweepMax      float64
	sweepStep     float64
	customWeights []float64
	active        model.StrategyKind
	bottomPrice   float64
}

// SessionState is a point-in-time copy of all session inputs.
type SessionState struct {
	Asset         string
	Unit          string
	TargetPrice   float64
	TargetDate    string
	TotalSize     float64
	PriceLevels   []float64
	SweepMin      float64
	SweepMax      float64
	SweepStep     float64
	CustomWeights []float64
	Active        model.StrategyKind
	BottomPrice   float64
}

// NewStore creates a session store seeded from configuration. The custom
// weights start as the exponential seed shape so the custom strategy is a
// plausible, distinct-looking starting point.
func NewStore(cfg *config.Config) *Store {
	levelCount := 0
	for _, p := range cfg.Plan.PriceLevels {
		if p > 0 {
			levelCount++
		}
	}
	var custom []float64
	if levelCount > 0 {
		custom = GenerateExponentialWeights(levelCount, cfg.Plan.CustomBase)
	}
	return &Store{
		asset:         cfg.Asset.Name,
		unit:          cfg.Asset.Unit,
		targetPrice:   cfg.Plan.TargetPrice,
		targetDate:    cfg.Plan.TargetDate,
		totalSize:     cfg.Plan.TotalSize,
		priceLevels:   append([]float64(nil), cfg.Plan.PriceLevels...),
		sweepMin:      cfg.Sweep.Min,
		sweepMax:      cfg.Sweep.Max,
		sweepStep:     cfg.Sweep.Step,
		customWeights: custom,
		active:        model.StrategyPyramid,
		bottomPrice:   cfg.Sweep.Min,
	}
}

// State returns a copy of the current session inputs.
func (s *Store) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionState{
		Asset:         s.asset,
		Unit:          s.unit,
		TargetPrice:   s.targetPrice,
		TargetDate:    s.targetDate,
		TotalSize:     s.totalSize,
		PriceLevels:   append([]float64(nil), s.priceLevels...),
		SweepMin:      s.sweepMin,
		SweepMax:      s.sweepMax,
		SweepStep:     s.sweepStep,
		CustomWeights: append([]float64(nil), s.customWeights...),
		Active:        s.active,
		BottomPrice:   s.bottomPrice,
	}
}

// SetCustomWeights replaces the custom weight array.
func (s *Store) SetCustomWeights(weights []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customWeights = append([]float64(nil), weights...)
}

// SetActive selects the strategy highlighted in status output.
func (s *Store) SetActive(kind model.StrategyKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = kind
}

// SetBottomPrice moves the current bottom-price cursor, clamped to the
// sweep range.
func (s *Store) SetBottomPrice(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if price < s.sweepMin {
		price = s.sweepMin
	}
	if price > s.sweepMax {
		price = s.sweepMax
	}
	s.bottomPrice = price
}

// UpdatePlan replaces the plan parameters. The custom weight array is
// reseeded when the active level count changes, since positional weights
// no longer line up.
func (s *Store) UpdatePlan(targetPrice, totalSize float64, priceLevels []float64, sweepMin, sweepMax, sweepStep float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevCount := activeCount(s.priceLevels)
	s.targetPrice = targetPrice
	s.totalSize = totalSize
	s.priceLevels = append([]float64(nil), priceLevels...)
	s.sweepMin = sweepMin
	s.sweepMax = sweepMax
	s.sweepStep = sweepStep

	if count := activeCount(priceLevels); count != prevCount {
		if count > 0 {
			s.customWeights = GenerateExponentialWeights(count, DefaultExponentialBase)
		} else {
			s.customWeights = nil
		}
	}
	if s.bottomPrice < sweepMin {
		s.bottomPrice = sweepMin
	}
	if s.bottomPrice > sweepMax {
		s.bottomPrice = sweepMax
	}
}

func activeCount(levels []float64) int {
	n := 0
	for _, p := range levels {
		if p > 0 {
			n++
		}
	}
	return n
}
