package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"outingpass/internal/ban"
	"outingpass/internal/httpapi"
	"outingpass/pkg/config"
	"outingpass/pkg/db"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		defer rdb.Close()
		log.Printf("action guard using redis addr=%s", cfg.Redis.Addr)
	}

	if cfg.BanSweepSchedule != "" {
		sweeper, err := ban.StartSweeper(cfg.BanSweepSchedule, ban.NewRepository(conn), cfg.Location())
		if err != nil {
			log.Fatalf("ban sweeper: %v", err)
		}
		defer func() { <-sweeper.Stop().Done() }()
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:   cfg,
		DB:    conn,
		Redis: rdb,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
