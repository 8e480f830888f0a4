package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stockbook/internal/cache"
	"stockbook/internal/config"
	"stockbook/internal/http/handlers"
	applog "stockbook/internal/log"
	"stockbook/internal/repos"
	"stockbook/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		applog.L().Fatal("config.load", zap.Error(err))
	}

	logger, err := applog.Init(applog.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogFile})
	if err != nil {
		applog.L().Fatal("log.init", zap.Error(err), zap.String("log_file", cfg.LogFile))
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("config.loaded", zap.Any("config", cfg.Fields()))

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	if cfg.SeedDemo {
		if err := repos.SeedDemo(context.Background(), db); err != nil {
			logger.Fatal("seed.demo", zap.Error(err))
		}
	}

	var store cache.Store = cache.NewMemory()
	if cfg.CacheBackend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Fatal("cache.redis.ping", zap.Error(err), zap.String("addr", cfg.RedisAddr))
		}
		defer client.Close()
		store = cache.NewRedis(client)
	}

	app := handlers.NewApp(web.Engine(false), true)
	handlers.Routes(app, handlers.NewDeps(db, cfg, store), handlers.DefaultLimits)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("server.shutdown")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.Info("server.listen", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server.listen", zap.Error(err))
	}
}
