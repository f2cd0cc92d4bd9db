package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/magabrotheeeer/rental-portal/internal/app/reminder"
	"github.com/magabrotheeeer/rental-portal/internal/config"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting license-reminder",
		slog.String("env", cfg.Env),
		slog.Int("window_days", cfg.WindowDays),
		slog.Duration("interval", cfg.Interval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := reminder.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize reminder", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("reminder stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("license-reminder stopped gracefully")
}
