package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ladderplan/internal/config"
	"ladderplan/internal/model"
	"ladderplan/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		App:   config.AppConfig{Env: "dev", LogLevel: "info"},
		Asset: config.AssetConfig{Name: "BTC", Unit: "USDT"},
		Plan: config.PlanConfig{
			TargetPrice: 100,
			TotalSize:   1000,
			PriceLevels: []float64{90, 80, 70},
			CustomBase:  planner.DefaultExponentialBase,
		},
		Sweep: config.SweepConfig{Min: 50, Max: 90, Step: 10},
	}
	return NewServer(":0", planner.New(cfg), zap.NewNop())
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := doRequest(testServer(t), http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)
}

func TestHandleStatus(t *testing.T) {
	rec := doRequest(testServer(t), http.MethodGet, "/api/status", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var status planner.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "BTC", status.Snapshot.Asset)
	assert.Len(t, status.Snapshot.Strategies, 4)
	require.NotNil(t, status.Snapshot.Advice)
	assert.Equal(t, 90.0, status.Snapshot.Advice.ZeroZonePrice)
}

func TestHandleWeights(t *testing.T) {
	rec := doRequest(testServer(t), http.MethodGet, "/api/weights?levels=4", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Pyramid     []float64 `json:"pyramid"`
			Uniform     []float64 `json:"uniform"`
			Inverted    []float64 `json:"inverted"`
			Exponential []float64 `json:"exponential"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Pyramid, 4)
	assert.Len(t, resp.Data.Exponential, 4)
	assert.InDelta(t, 0.4, resp.Data.Pyramid[3], 1e-9)
}

func TestHandleWeights_Invalid(t *testing.T) {
	rec := doRequest(testServer(t), http.MethodGet, "/api/weights?levels=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(testServer(t), http.MethodGet, "/api/weights?levels=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMetricsAtBottom(t *testing.T) {
	rec := doRequest(testServer(t), http.MethodGet, "/api/metrics?bottom=75", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data map[model.StrategyKind]model.PositionMetrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Data, model.StrategyUniform)

	// Uniform with levels 90/80/70 at bottom 75: two of three levels fill.
	uniform := resp.Data[model.StrategyUniform]
	assert.InDelta(t, 1000.0*(1.0/3+1.0/3), uniform.FilledPosition, 1e-6)
}

func TestHandleCustom(t *testing.T) {
	s := testServer(t)

	body, _ := json.Marshal(map[string]any{"weights": []float64{0.2, 0.3, 0.5}})
	rec := doRequest(s, http.MethodPost, "/api/custom", body)
	require.Equal(t, http.StatusOK, rec.Code)

	// Wrong weight count is rejected at the service boundary.
	body, _ = json.Marshal(map[string]any{"weights": []float64{1}})
	rec = doRequest(s, http.MethodPost, "/api/custom", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// GET is not allowed.
	rec = doRequest(s, http.MethodGet, "/api/custom", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlePlan(t *testing.T) {
	s := testServer(t)

	update := model.PlanUpdate{
		TargetPrice: 120,
		TotalSize:   2000,
		PriceLevels: []float64{95, 85},
		SweepMin:    60,
		SweepMax:    95,
		SweepStep:   5,
	}
	body, _ := json.Marshal(update)
	rec := doRequest(s, http.MethodPost, "/api/plan", body)
	require.Equal(t, http.StatusOK, rec.Code)

	update.SweepStep = 0
	body, _ = json.Marshal(update)
	rec = doRequest(s, http.MethodPost, "/api/plan", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAdvice(t *testing.T) {
	rec := doRequest(testServer(t), http.MethodGet, "/api/advice", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data *model.StrategyAdvice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, 90.0, resp.Data.ZeroZonePrice)
	require.NotNil(t, resp.Data.Best)
}

func TestHandleChart(t *testing.T) {
	rec := doRequest(testServer(t), http.MethodGet, "/api/chart.png", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Greater(t, rec.Body.Len(), 4)
}
