package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/oggyb/mappool-community/internal/app"
	"github.com/oggyb/mappool-community/internal/cache"
	"github.com/oggyb/mappool-community/internal/config"
	"github.com/oggyb/mappool-community/internal/db"
	"github.com/oggyb/mappool-community/internal/logger"
	"github.com/oggyb/mappool-community/internal/server"
	"github.com/oggyb/mappool-community/internal/service/catalog"
	"github.com/oggyb/mappool-community/internal/service/community"
	"github.com/oggyb/mappool-community/internal/service/notify"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log, cfg)

	registrars := []server.Registrar{
		community.NewRegistrar(appCtx),
		catalog.NewRegistrar(appCtx),
		notify.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
