package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/cradoe/carvest/internal/app"
	seeders "github.com/cradoe/carvest/internal/seeder"
	"github.com/cradoe/carvest/internal/version"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	showVersion := flag.Bool("version", false, "display version and exit")
	seed := flag.Bool("seed", false, "create the admin account and default settings, then exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	cfg := app.LoadConfig(logger)

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if *seed {
		return seeders.New(application.DB, logger).Run(context.Background(), cfg.Admin.Email, cfg.Admin.Password)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := application.NotificationWorker(ctx).NotificationWorker(); err != nil {
			logger.Error("notification worker exited", "error", err.Error())
		}
	}()

	return application.ServeHTTP()
}
