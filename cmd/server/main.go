package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"prodtrack/internal/auth"
	"prodtrack/internal/cache"
	"prodtrack/internal/config"
	"prodtrack/internal/database"
	"prodtrack/internal/repository"
	"prodtrack/internal/repository/memory"
	"prodtrack/internal/server"
	"prodtrack/internal/store"
	"prodtrack/internal/tracking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, seedTarget, err := initStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to init storage", zap.Error(err))
	}

	seedOpts := database.SeedOptions{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Demo:          cfg.SeedDemo,
	}
	if err := database.Seed(ctx, seedTarget, seedOpts, zapLogger.Named("seed")); err != nil {
		zapLogger.Fatal("failed to seed database", zap.Error(err))
	}

	snapshots := initCache(ctx, cfg, zapLogger)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	managers := tracking.New(st, tracking.Deps{Log: zapLogger, Cache: snapshots})

	r := server.NewRouter(server.Deps{
		Config:   cfg,
		Managers: managers,
		Users:    st,
		Tokens:   tokens,
		Log:      zapLogger.Named("http"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("starting server", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("server exited")
}

func initLogger(level, format string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func initStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, database.SeedTarget, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		st := memory.New()
		return st, st, nil
	}
	db, err := database.Open(ctx, cfg.DBDSN, log.Named("database"))
	if err != nil {
		return nil, nil, err
	}
	repo := repository.New(db)
	return repo, repo, nil
}

// initCache falls back to no caching when redis is unset or unreachable.
func initCache(ctx context.Context, cfg *config.Config, log *zap.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.Nop{}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, dashboard snapshots disabled", zap.Error(err))
		_ = rdb.Close()
		return cache.Nop{}
	}
	log.Info("dashboard snapshot cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	return cache.NewRedis(rdb, cfg.CacheTTL)
}
