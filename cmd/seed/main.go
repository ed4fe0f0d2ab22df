package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/souq-backoffice/internal/accounts"
	"github.com/angelmondragon/souq-backoffice/internal/bootstrap"
	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/metrics"
	"github.com/angelmondragon/souq-backoffice/pkg/migrate"
)

func main() {
	email := flag.String("superuser-email", "", "also create a superuser with this email")
	password := flag.String("superuser-password", "", "password for -superuser-email")
	flag.Parse()

	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "souq-seed"})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "souq-seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(pkgerrors.MetadataFor(pkgerrors.CodeDependency).ExitCode)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	services, err := bootstrap.New(bootstrap.Params{Config: cfg, Logger: logg, DB: dbClient, Registerer: registry})
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}
	commands := metrics.NewCommandMetrics(registry)

	started := time.Now()
	created, err := services.Payments.SeedDefaultMethods(ctx)
	commands.Observe("seed-payment-methods", time.Since(started), errorCode(err))
	if err != nil {
		logg.Error(ctx, "seeding payment methods failed", err)
		os.Exit(pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).ExitCode)
	}
	fmt.Printf("payment methods created: %s\n", strings.Join(created, ", "))

	if *email == "" {
		return
	}
	started = time.Now()
	user, err := services.Accounts.CreateSuperuser(ctx, accounts.CreateUserInput{Email: *email, Password: *password})
	commands.Observe("create-superuser", time.Since(started), errorCode(err))
	if err != nil {
		logg.Error(ctx, "creating superuser failed", err)
		os.Exit(pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).ExitCode)
	}
	fmt.Printf("superuser created: %s (%s)\n", user.Email, user.ID)
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return string(pkgerrors.CodeOf(err))
}
