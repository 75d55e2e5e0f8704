package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "treadmill_pacer/docs"
	"treadmill_pacer/internal/config"
	"treadmill_pacer/internal/curve"
	"treadmill_pacer/internal/handlers"
	"treadmill_pacer/internal/heartrate"
	"treadmill_pacer/internal/logger"
	"treadmill_pacer/internal/pacer"
	"treadmill_pacer/internal/repository"
	"treadmill_pacer/internal/repository/db"
	"treadmill_pacer/internal/server"
	"treadmill_pacer/internal/service"
	"treadmill_pacer/internal/treadmill"
)

// treadmillTick is the simulator's distance integration step.
const (
	treadmillTick   = 100 * time.Millisecond
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.New(logger.Options{Level: logger.ErrorLevel}).Fatalw("error reading config", "err", err)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer func() { _ = log.Sync() }()

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos := repository.NewRepository(conn)
	hr := heartrate.NewAggregator()

	var simulated service.RangeSetter
	if cfg.HeartRate.Simulated {
		src, err := heartrate.NewSimulatedSource(hr, cfg.HeartRate.Low, cfg.HeartRate.High, cfg.HeartRate.Interval, log.Named("heart_rate"))
		if err != nil {
			log.Fatalw("invalid simulated heart-rate range", "err", err, "low", cfg.HeartRate.Low, "high", cfg.HeartRate.High)
		}
		simulated = src
		go src.Run(ctx)
	}

	ctrl := pacer.New(curve.Default, func() pacer.Treadmill {
		return treadmill.NewSimulator(treadmillTick)
	}, hr, pacer.Options{
		Tick:           cfg.Pacer.Tick,
		RecoveryWindow: cfg.Pacer.RecoveryWindow,
		RecoveryStep:   cfg.Pacer.RecoveryStep,
		Store:          repos.SessionRepo,
		Logger:         log,
	})

	services := service.NewService(repos, service.Deps{
		Controller:         ctrl,
		Curves:             curve.Default,
		Samples:            hr,
		Simulated:          simulated,
		Events:             ctrl.EventFeed(),
		DefaultLapDistance: cfg.Pacer.DefaultLapDistance,
		Auth: service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
		Logger: log,
	})

	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		services.EventRecorder.Run(ctx)
	}()

	apiHandler := handlers.NewHandler(services, handlers.Streams{
		Status:    ctrl.StatusFeed(),
		Completed: ctrl.CompletionFeed(),
		Recovery:  ctrl.RecoveryFeed(),
	}, log.Named("http"))

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("pacer_ready", "port", cfg.Port, "db", cfg.DB.Path, "simulated_heart_rate", cfg.HeartRate.Simulated)

	waitForShutdown(ctrl, cancel, recorderDone, srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown stops the active session, drains the event recorder and
// shuts the HTTP server down.
func waitForShutdown(ctrl *pacer.Controller, cancel context.CancelFunc, recorderDone <-chan struct{}, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// manual stop persists the session and emits its COMPLETE event
	ctrl.Shutdown(ctx)

	// stop background goroutines; the recorder flushes what is buffered
	cancel()
	select {
	case <-recorderDone:
	case <-ctx.Done():
		log.Errorw("event recorder did not drain in time")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
