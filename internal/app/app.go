package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ladderplan/internal/api"
	"ladderplan/internal/config"
	"ladderplan/internal/logging"
	"ladderplan/internal/planner"

	"go.uber.org/zap"
)

// App is the application lifecycle manager.
type App struct {
	cfg *config.Config
}

// New creates a new App instance.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Run starts the full application: planner, API server, and signal handling.
func (a *App) Run() error {
	log, err := logging.Build(a.cfg.App.LogLevel, a.cfg.App.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting ladderplan",
		zap.String("version", "0.1.0"),
		zap.String("log_level", a.cfg.App.LogLevel),
		zap.String("asset", a.cfg.Asset.Name),
	)

	pl := planner.New(a.cfg)
	pl.SetLogger(log)

	// Log the initial recommendation so a headless run still surfaces it.
	snap := pl.Snapshot()
	if snap.Advice != nil && snap.Advice.Best != nil {
		log.Info("initial_advice",
			zap.String("best_strategy", string(snap.Advice.Best.Kind)),
			zap.Int("levels_won", snap.Advice.Best.Count),
			zap.Float64("coverage_pct", snap.Advice.CoveragePct),
			zap.Float64("zero_zone_price", snap.Advice.ZeroZonePrice),
		)
	} else {
		log.Warn("initial_advice_unavailable")
	}

	srv := api.NewServer(a.cfg.API.ListenAddress, pl, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	go heartbeatLoop(ctx, srv.HubRef(), pl)

	// Wait for shutdown signal or fatal error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("fatal_error", zap.Error(err))
		}
	}

	cancel()
	log.Info("ladderplan stopped")
	return nil
}

// heartbeatLoop keeps idle WebSocket clients fed with the current plan.
func heartbeatLoop(ctx context.Context, hub *api.Hub, pl *planner.Planner) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if hub.ClientCount() == 0 {
				continue
			}
			hub.Broadcast("heartbeat", pl.Snapshot())
		}
	}
}
