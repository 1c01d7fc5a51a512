package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/config"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/db"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/engine"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/logger"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/router"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)

	// PostgreSQL
	if err := db.InitPostgres(cfg.PostgresDSN); err != nil {
		logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("postgres_connected", nil)

	if cfg.MigrateOnStart {
		if err := db.RunMigrations(cfg.PostgresDSN, cfg.MigrationsDir); err != nil {
			logger.Error("migrations_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}

	// Entity registry
	if err := schema.InitRegistry(cfg.ModelsDir); err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("entities_initialized", map[string]any{"count": len(schema.Registry)})

	// Redis is optional; without it the count cache stays off
	db.InitRedis(cfg.RedisAddr)
	if err := db.PingRedis(); err != nil {
		logger.Warn("redis_unavailable", map[string]any{"error": err.Error()})
		db.RDB = nil
	}
	counts := engine.NewCountCache(db.RDB, time.Duration(cfg.CountCache.TTLSeconds)*time.Second)

	eng := engine.NewPG(db.Pool, counts)

	// Routes
	if err := router.InitRoutes(cfg, eng); err != nil {
		logger.Error("router_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	// HTTP server
	logger.Info("server_start", map[string]any{"port": cfg.Port})
	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Error("server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
