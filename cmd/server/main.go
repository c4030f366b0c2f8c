package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"eurostat/internal/api"
	"eurostat/internal/config"
	"eurostat/internal/dashboard"
	"eurostat/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	profile, err := config.LoadBubbleProfile(cfg.Charts.ProfilePath)
	if err != nil {
		slog.Error("failed to load chart profile", "path", cfg.Charts.ProfilePath, "error", err)
		os.Exit(1)
	}

	// 1. The application context owns the dataset and the animation.
	dash := dashboard.New(dashboard.Options{
		Source:      cfg.Data.Source,
		LoadTimeout: cfg.Data.LoadTimeout,
		Interval:    cfg.Animation.Interval,
		Profile:     profile,
	})

	// 2. The API is live right away and answers 503 until data arrives.
	h := api.NewHandler(dash, cfg.Charts.LineWidth, cfg.Charts.LineHeight)
	e := api.NewServer(h, api.ServerOptions{
		AllowOrigins: cfg.Server.AllowOrigins,
		RateLimit:    cfg.Server.RateLimit,
		LogLevel:     cfg.Logging.Level,
	})

	// 3. Load the dataset in the background. A failure is logged once and
	// leaves the store empty; POST /api/reload tries again.
	go func() {
		slog.Info("loading dataset", "source", cfg.Data.Source)
		t0 := time.Now()
		if err := dash.Reload(context.Background()); err != nil {
			return
		}
		slog.Info("dataset ready", "elapsed", time.Since(t0))
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		dash.StopAnimation()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := e.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
