package chart

import (
	"testing"

	"ladderplan/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() model.PlanSnapshot {
	return model.PlanSnapshot{
		Asset:       "BTC",
		Unit:        "USDT",
		TargetPrice: 100,
		Curves: []model.StrategyCurve{
			{
				Kind: model.StrategyPyramid,
				Points: []model.CurvePoint{
					{X: 70, Y: 15000}, {X: 80, Y: 12000}, {X: 90, Y: 5000},
				},
			},
			{
				Kind: model.StrategyUniform,
				Points: []model.CurvePoint{
					{X: 70, Y: 14000}, {X: 80, Y: 13000}, {X: 90, Y: 6000},
				},
			},
		},
	}
}

func TestRenderProfitCurves(t *testing.T) {
	img, err := RenderProfitCurves(testSnapshot())
	require.NoError(t, err)
	require.NotEmpty(t, img)

	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
}

func TestRenderProfitCurves_NoCurves(t *testing.T) {
	_, err := RenderProfitCurves(model.PlanSnapshot{})
	assert.Error(t, err)
}

func TestRenderProfitCurves_TooFewPoints(t *testing.T) {
	snap := model.PlanSnapshot{
		Curves: []model.StrategyCurve{
			{Kind: model.StrategyPyramid, Points: []model.CurvePoint{{X: 70, Y: 1}}},
		},
	}
	_, err := RenderProfitCurves(snap)
	assert.Error(t, err)
}
