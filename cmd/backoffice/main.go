package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/souq-backoffice/internal/bootstrap"
	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/metrics"
	"github.com/angelmondragon/souq-backoffice/pkg/migrate"
	"github.com/angelmondragon/souq-backoffice/pkg/redis"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg := logger.New(logger.Options{ServiceName: "souq-backoffice", Output: os.Stderr})

	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		return 1
	}

	logg = logger.New(logger.Options{
		ServiceName: "souq-backoffice",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
		Output:      os.Stderr,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		return pkgerrors.MetadataFor(pkgerrors.CodeDependency).ExitCode
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		return 1
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			return pkgerrors.MetadataFor(pkgerrors.CodeDependency).ExitCode
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	services, err := bootstrap.New(bootstrap.Params{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Redis:      redisClient,
		Registerer: registry,
	})
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		return 1
	}

	if cfg.Payments.SeedOnStartup {
		if _, err := services.Payments.SeedDefaultMethods(ctx); err != nil {
			logg.Error(ctx, "failed to seed payment methods", err)
			return exitCode(err)
		}
	}

	runner, err := NewRunner(RunnerParams{
		Services: services,
		Logger:   logg,
		Metrics:  metrics.NewCommandMetrics(registry),
		Out:      os.Stdout,
	})
	if err != nil {
		logg.Error(ctx, "failed to build command runner", err)
		return 1
	}

	if err := runner.Run(ctx, os.Args[1:]); err != nil {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(pkgerrors.Dump(err))
		return exitCode(err)
	}
	return 0
}
