package planner

import (
	"testing"

	"ladderplan/internal/config"
	"ladderplan/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:   config.AppConfig{Env: "dev", LogLevel: "info"},
		Asset: config.AssetConfig{Name: "BTC", Unit: "USDT"},
		Plan: config.PlanConfig{
			TargetPrice: 100,
			TargetDate:  "2026-12",
			TotalSize:   1000,
			PriceLevels: []float64{90, 80, 70},
			CustomBase:  DefaultExponentialBase,
		},
		Sweep: config.SweepConfig{Min: 50, Max: 90, Step: 1},
	}
}

func TestPlannerSnapshot(t *testing.T) {
	pl := New(testConfig())

	snap := pl.Snapshot()

	// Custom seeds from the exponential shape, so all four strategies
	// compare from the start.
	assert.True(t, snap.CustomValid)
	require.Len(t, snap.Strategies, 4)
	require.Len(t, snap.Curves, 4)
	assert.Len(t, snap.Metrics, 4)

	require.NotNil(t, snap.Advice)
	assert.Equal(t, 90.0, snap.Advice.ZeroZonePrice)
	require.NotNil(t, snap.Advice.Best)

	assert.Equal(t, model.StrategyPyramid, snap.Active)
	assert.Equal(t, 50.0, snap.BottomPrice)
}

func TestPlannerSetCustomWeights(t *testing.T) {
	pl := New(testConfig())

	snap, err := pl.SetCustomWeights([]float64{0.2, 0.3, 0.5})
	require.NoError(t, err)
	assert.True(t, snap.CustomValid)

	// Out-of-tolerance weights are accepted but excluded from comparison.
	snap, err = pl.SetCustomWeights([]float64{0.2, 0.3, 0.9})
	require.NoError(t, err)
	assert.False(t, snap.CustomValid)
	assert.Len(t, snap.Strategies, 3)
}

func TestPlannerStatusJSON_ZeroWeightTopLevel(t *testing.T) {
	pl := New(testConfig())

	// A sum-1 custom set may leave the top level empty. With the bottom
	// cursor at that level the custom strategy buys nothing; the metrics
	// must stay zero-valued so the status still serializes.
	_, err := pl.SetCustomWeights([]float64{0, 0.5, 0.5})
	require.NoError(t, err)
	snap := pl.SetBottomPrice(90)

	assert.Equal(t, model.PositionMetrics{}, snap.Metrics[model.StrategyCustom])

	data, err := pl.StatusJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestPlannerSetCustomWeights_WrongCount(t *testing.T) {
	pl := New(testConfig())

	_, err := pl.SetCustomWeights([]float64{0.5, 0.5})
	assert.Error(t, err)
}

func TestPlannerSetCustomWeights_Negative(t *testing.T) {
	pl := New(testConfig())

	_, err := pl.SetCustomWeights([]float64{1.2, 0.3, -0.5})
	assert.Error(t, err)
}

func TestPlannerSetActive(t *testing.T) {
	pl := New(testConfig())

	snap, err := pl.SetActive(model.StrategyInverted)
	require.NoError(t, err)
	assert.Equal(t, model.StrategyInverted, snap.Active)

	_, err = pl.SetActive(model.StrategyKind("martingale"))
	assert.Error(t, err)
}

func TestPlannerSetBottomPrice_Clamped(t *testing.T) {
	pl := New(testConfig())

	snap := pl.SetBottomPrice(75)
	assert.Equal(t, 75.0, snap.BottomPrice)

	snap = pl.SetBottomPrice(10)
	assert.Equal(t, 50.0, snap.BottomPrice)

	snap = pl.SetBottomPrice(500)
	assert.Equal(t, 90.0, snap.BottomPrice)
}

func TestPlannerUpdatePlan(t *testing.T) {
	pl := New(testConfig())

	snap, err := pl.UpdatePlan(model.PlanUpdate{
		TargetPrice: 120,
		TotalSize:   2000,
		PriceLevels: []float64{95, 85},
		SweepMin:    60,
		SweepMax:    95,
		SweepStep:   5,
	})
	require.NoError(t, err)

	assert.Equal(t, 120.0, snap.TargetPrice)
	assert.Equal(t, 2000.0, snap.TotalSize)
	require.NotNil(t, snap.Advice)
	assert.Equal(t, 95.0, snap.Advice.ZeroZonePrice)

	// Level count changed from 3 to 2: custom weights reseed to match.
	assert.True(t, snap.CustomValid)
	require.Len(t, snap.Strategies, 4)
	assert.Len(t, snap.Strategies[3].Allocations, 2)
}

func TestPlannerUpdatePlan_Invalid(t *testing.T) {
	pl := New(testConfig())

	cases := []model.PlanUpdate{
		{TargetPrice: 0, TotalSize: 1000, PriceLevels: []float64{90}, SweepMin: 50, SweepMax: 90, SweepStep: 1},
		{TargetPrice: 100, TotalSize: 0, PriceLevels: []float64{90}, SweepMin: 50, SweepMax: 90, SweepStep: 1},
		{TargetPrice: 100, TotalSize: 1000, PriceLevels: []float64{90}, SweepMin: 50, SweepMax: 90, SweepStep: 0},
		{TargetPrice: 100, TotalSize: 1000, PriceLevels: []float64{90}, SweepMin: 90, SweepMax: 50, SweepStep: 1},
		{TargetPrice: 100, TotalSize: 1000, PriceLevels: []float64{0, 0}, SweepMin: 50, SweepMax: 90, SweepStep: 1},
	}
	for _, req := range cases {
		_, err := pl.UpdatePlan(req)
		assert.Error(t, err, "update %+v should be rejected", req)
	}
}

func TestStoreStateIsCopied(t *testing.T) {
	store := NewStore(testConfig())

	state := store.State()
	state.PriceLevels[0] = 1
	state.CustomWeights[0] = 99

	fresh := store.State()
	assert.Equal(t, 90.0, fresh.PriceLevels[0])
	assert.NotEqual(t, 99.0, fresh.CustomWeights[0])
}
