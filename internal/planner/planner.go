package planner

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ladderplan/internal/config"
	"ladderplan/internal/model"

	"go.uber.org/zap"
)

// Planner is the session orchestrator. It owns the session store, feeds
// its state into the pure engine functions, and rebuilds the full plan
// snapshot on every mutation. The engine functions hold no state, so
// every snapshot is recomputed wholesale.
type Planner struct {
	store   *Store
	mu      sync.Mutex
	metrics Metrics
	started time.Time
	logger  *zap.Logger
}

// Metrics tracks planner processing counters.
type Metrics struct {
	RecomputeCount  int64     `json:"recomputeCount"`
	UpdateCount     int64     `json:"updateCount"`
	LastRecomputeAt time.Time `json:"lastRecomputeAt"`
}

// Status represents the current planner state for API consumers.
type Status struct {
	Time      time.Time          `json:"time"`
	StartedAt time.Time          `json:"startedAt"`
	Snapshot  model.PlanSnapshot `json:"snapshot"`
	Metrics   Metrics            `json:"metrics"`
}

// New creates a planner from configuration.
func New(cfg *config.Config) *Planner {
	return &Planner{
		store:   NewStore(cfg),
		started: time.Now(),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the structured logger for the planner.
func (p *Planner) SetLogger(logger *zap.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Store returns the underlying session store.
func (p *Planner) Store() *Store {
	return p.store
}

// Snapshot recomputes and returns the full plan snapshot: assembled
// strategies, per-strategy metrics at the current bottom price, profit
// curves, and strategy advice.
func (p *Planner) Snapshot() model.PlanSnapshot {
	state := p.store.State()

	strategies, customValid := AssembleStrategies(state.PriceLevels, state.CustomWeights)

	metrics := make(map[model.StrategyKind]model.PositionMetrics, len(strategies))
	for _, st := range strategies {
		metrics[st.Kind] = CalculatePositionStats(st.Allocations, state.BottomPrice, state.TargetPrice, state.TotalSize)
	}

	curves := BuildProfitCurves(strategies, state.TargetPrice, state.TotalSize,
		state.SweepMin, state.SweepMax, state.SweepStep)

	advice := AnalyzeAdvice(strategies, state.PriceLevels, state.TargetPrice, state.TotalSize,
		state.SweepMin, state.SweepMax, state.SweepStep)

	p.mu.Lock()
	p.metrics.RecomputeCount++
	p.metrics.LastRecomputeAt = time.Now()
	p.mu.Unlock()

	return model.PlanSnapshot{
		Asset:       state.Asset,
		Unit:        state.Unit,
		TargetPrice: state.TargetPrice,
		TargetDate:  state.TargetDate,
		TotalSize:   state.TotalSize,
		PriceLevels: state.PriceLevels,
		SweepMin:    state.SweepMin,
		SweepMax:    state.SweepMax,
		SweepStep:   state.SweepStep,
		BottomPrice: state.BottomPrice,
		Active:      state.Active,
		CustomValid: customValid,
		Strategies:  strategies,
		Metrics:     metrics,
		Curves:      curves,
		Advice:      advice,
		ComputedAt:  time.Now(),
	}
}

// Status returns the current planner status.
func (p *Planner) Status() Status {
	snapshot := p.Snapshot()
	p.mu.Lock()
	metrics := p.metrics
	p.mu.Unlock()
	return Status{
		Time:      time.Now(),
		StartedAt: p.started,
		Snapshot:  snapshot,
		Metrics:   metrics,
	}
}

// StatusJSON serializes the current status for the API.
func (p *Planner) StatusJSON() ([]byte, error) {
	return json.Marshal(p.Status())
}

// SetCustomWeights replaces the custom weight array and recomputes.
// A weight set whose sum deviates from 1 is stored but excluded from
// comparison until corrected; the snapshot flags it invalid.
func (p *Planner) SetCustomWeights(weights []float64) (model.PlanSnapshot, error) {
	state := p.store.State()
	if want := activeCount(state.PriceLevels); len(weights) != want {
		return model.PlanSnapshot{}, fmt.Errorf("expected %d weights for %d active levels, got %d", want, want, len(weights))
	}
	for _, w := range weights {
		if w < 0 {
			return model.PlanSnapshot{}, fmt.Errorf("weights must be non-negative, got %v", w)
		}
	}
	p.store.SetCustomWeights(weights)
	p.countUpdate()

	snap := p.Snapshot()
	p.logger.Info("custom_weights_set",
		zap.Int("count", len(weights)),
		zap.Bool("valid", snap.CustomValid),
	)
	return snap, nil
}

// SetActive selects the highlighted strategy and recomputes.
func (p *Planner) SetActive(kind model.StrategyKind) (model.PlanSnapshot, error) {
	switch kind {
	case model.StrategyPyramid, model.StrategyUniform, model.StrategyInverted, model.StrategyCustom:
	default:
		return model.PlanSnapshot{}, fmt.Errorf("unknown strategy %q", kind)
	}
	p.store.SetActive(kind)
	p.countUpdate()
	p.logger.Info("strategy_selected", zap.String("strategy", string(kind)))
	return p.Snapshot(), nil
}

// SetBottomPrice moves the bottom-price cursor and recomputes.
func (p *Planner) SetBottomPrice(price float64) model.PlanSnapshot {
	p.store.SetBottomPrice(price)
	p.countUpdate()
	return p.Snapshot()
}

// UpdatePlan replaces the plan parameters after validating the same
// invariants enforced at config load.
func (p *Planner) UpdatePlan(req model.PlanUpdate) (model.PlanSnapshot, error) {
	if req.TargetPrice <= 0 {
		return model.PlanSnapshot{}, fmt.Errorf("targetPrice must be > 0, got %v", req.TargetPrice)
	}
	if req.TotalSize <= 0 {
		return model.PlanSnapshot{}, fmt.Errorf("totalSize must be > 0, got %v", req.TotalSize)
	}
	if req.SweepStep <= 0 {
		return model.PlanSnapshot{}, fmt.Errorf("sweepStep must be > 0, got %v", req.SweepStep)
	}
	if req.SweepMin >= req.SweepMax {
		return model.PlanSnapshot{}, fmt.Errorf("sweepMin must be below sweepMax, got %v >= %v", req.SweepMin, req.SweepMax)
	}
	if activeCount(req.PriceLevels) == 0 {
		return model.PlanSnapshot{}, fmt.Errorf("priceLevels needs at least one level above 0")
	}

	p.store.UpdatePlan(req.TargetPrice, req.TotalSize, req.PriceLevels,
		req.SweepMin, req.SweepMax, req.SweepStep)
	p.countUpdate()

	p.logger.Info("plan_updated",
		zap.Float64("target_price", req.TargetPrice),
		zap.Float64("total_size", req.TotalSize),
		zap.Int("levels", activeCount(req.PriceLevels)),
	)
	return p.Snapshot(), nil
}

func (p *Planner) countUpdate() {
	p.mu.Lock()
	p.metrics.UpdateCount++
	p.mu.Unlock()
}
