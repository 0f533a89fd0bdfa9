package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/verifi-app/verifi-backend/internal/app"
	"github.com/verifi-app/verifi-backend/pkg/config"
	"github.com/verifi-app/verifi-backend/pkg/instance"
	"github.com/verifi-app/verifi-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "verifi"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "verifi",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})

	a, err := app.New(ctx, cfg, logg, app.Options{})
	if err != nil {
		logg.Error(ctx, "failed to bootstrap app", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logg.Error(ctx, "error closing app", err)
		}
	}()

	all := a.Directory.AllBusinesses(ctx)
	active := a.Directory.ActivePromos(ctx)
	logg.Info(logg.WithFields(ctx, map[string]any{
		"businesses":    len(all),
		"active_promos": len(active),
	}), "directory ready")
}
