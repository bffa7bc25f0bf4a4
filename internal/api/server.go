package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ladderplan/internal/chart"
	"ladderplan/internal/model"
	"ladderplan/internal/planner"

	"go.uber.org/zap"
)

// PlanService provides access to the planner session.
type PlanService interface {
	StatusJSON() ([]byte, error)
	Snapshot() model.PlanSnapshot
	SetCustomWeights(weights []float64) (model.PlanSnapshot, error)
	SetActive(kind model.StrategyKind) (model.PlanSnapshot, error)
	SetBottomPrice(price float64) model.PlanSnapshot
	UpdatePlan(req model.PlanUpdate) (model.PlanSnapshot, error)
}

// Server is the REST API + WebSocket server.
type Server struct {
	service PlanService
	hub     *Hub
	logger  *zap.Logger
	mux     *http.ServeMux
	srv     *http.Server
	address string
}

// NewServer creates an API server.
func NewServer(address string, service PlanService, logger *zap.Logger) *Server {
	s := &Server{
		service: service,
		hub:     NewHub(logger),
		logger:  logger,
		mux:     http.NewServeMux(),
		address: address,
	}
	s.registerRoutes()
	return s
}

// HubRef returns the WebSocket hub for broadcasting.
func (s *Server) HubRef() *Hub {
	return s.hub
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/weights", s.handleWeights)
	s.mux.HandleFunc("/api/metrics", s.handleMetrics)
	s.mux.HandleFunc("/api/curves", s.handleCurves)
	s.mux.HandleFunc("/api/advice", s.handleAdvice)
	s.mux.HandleFunc("/api/chart.png", s.handleChart)
	s.mux.HandleFunc("/api/custom", s.handleCustom)
	s.mux.HandleFunc("/api/strategy", s.handleStrategy)
	s.mux.HandleFunc("/api/bottom", s.handleBottom)
	s.mux.HandleFunc("/api/plan", s.handlePlan)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

// Run starts the HTTP server and the WebSocket hub.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	s.srv = &http.Server{
		Addr:    s.address,
		Handler: corsMiddleware(s.mux),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api_server_started", zap.String("address", s.address))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      map[string]string{"status": "ok"},
		Timestamp: time.Now(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.StatusJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleWeights returns the preset and exponential weight shapes for a
// given level count, independent of the current session.
func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	levels := 0
	if raw := r.URL.Query().Get("levels"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, model.APIResponse{
				Error:     "invalid levels: " + err.Error(),
				Timestamp: time.Now(),
			})
			return
		}
		levels = n
	} else {
		snap := s.service.Snapshot()
		for _, p := range snap.PriceLevels {
			if p > 0 {
				levels++
			}
		}
	}
	if levels < 1 {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     "levels must be >= 1",
			Timestamp: time.Now(),
		})
		return
	}

	presets := planner.GeneratePresetWeights(levels)
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data: map[string]any{
			"pyramid":     presets.Pyramid,
			"uniform":     presets.Uniform,
			"inverted":    presets.Inverted,
			"exponential": planner.GenerateExponentialWeights(levels, planner.DefaultExponentialBase),
		},
		Timestamp: time.Now(),
	})
}

// handleMetrics returns per-strategy position metrics, at the session's
// current bottom price or at an explicit ?bottom= price.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()

	if raw := r.URL.Query().Get("bottom"); raw != "" {
		bottom, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, model.APIResponse{
				Error:     "invalid bottom: " + err.Error(),
				Timestamp: time.Now(),
			})
			return
		}
		metrics := make(map[model.StrategyKind]model.PositionMetrics, len(snap.Strategies))
		for _, st := range snap.Strategies {
			metrics[st.Kind] = planner.CalculatePositionStats(st.Allocations, bottom, snap.TargetPrice, snap.TotalSize)
		}
		writeJSON(w, http.StatusOK, model.APIResponse{Data: metrics, Timestamp: time.Now()})
		return
	}

	writeJSON(w, http.StatusOK, model.APIResponse{Data: snap.Metrics, Timestamp: time.Now()})
}

func (s *Server) handleCurves(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	writeJSON(w, http.StatusOK, model.APIResponse{Data: snap.Curves, Timestamp: time.Now()})
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	writeJSON(w, http.StatusOK, model.APIResponse{Data: snap.Advice, Timestamp: time.Now()})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	img, err := chart.RenderProfitCurves(snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

func (s *Server) handleCustom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		Weights []float64 `json:"weights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     "invalid JSON: " + err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	snap, err := s.service.SetCustomWeights(req.Weights)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}
	s.hub.Broadcast("plan", snap)
	writeJSON(w, http.StatusOK, model.APIResponse{Data: snap, Timestamp: time.Now()})
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		Strategy model.StrategyKind `json:"strategy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     "invalid JSON: " + err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	snap, err := s.service.SetActive(req.Strategy)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}
	s.hub.Broadcast("plan", snap)
	writeJSON(w, http.StatusOK, model.APIResponse{Data: snap, Timestamp: time.Now()})
}

func (s *Server) handleBottom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     "invalid JSON: " + err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	snap := s.service.SetBottomPrice(req.Price)
	s.hub.Broadcast("plan", snap)
	writeJSON(w, http.StatusOK, model.APIResponse{Data: snap, Timestamp: time.Now()})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req model.PlanUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     "invalid JSON: " + err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	snap, err := s.service.UpdatePlan(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}
	s.hub.Broadcast("plan", snap)

	s.logger.Info("api_plan_update",
		zap.Float64("target_price", req.TargetPrice),
		zap.Float64("total_size", req.TotalSize),
	)
	writeJSON(w, http.StatusOK, model.APIResponse{Data: snap, Timestamp: time.Now()})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.HandleUpgrade(w, r)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.APIResponse{
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, model.APIResponse{
		Error:     "POST required",
		Timestamp: time.Now(),
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
