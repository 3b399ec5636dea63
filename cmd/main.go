package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tradesync/config"
	"github.com/oksasatya/tradesync/internal/container"
	pginfra "github.com/oksasatya/tradesync/internal/infrastructure/postgres"
	"github.com/oksasatya/tradesync/internal/infrastructure/search"
	"github.com/oksasatya/tradesync/internal/interface/middleware"
	"github.com/oksasatya/tradesync/internal/router"
	"github.com/oksasatya/tradesync/pkg/helpers"
	"github.com/oksasatya/tradesync/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	c := &container.Container{
		Cfg:    cfg,
		Logger: logger,
		PG:     pool,
		JWT:    helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Redis:  helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB),
	}
	defer c.Close()
	connectOptional(ctx, c)

	r := gin.New()
	if err := middleware.TrustProxies(r, cfg.TrustedProxyList()); err != nil {
		logger.Fatalf("invalid TRUSTED_PROXIES: %v", err)
	}
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(cfg)))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

// connectOptional opens the backends that can be switched off by config.
// A backend that fails to connect is logged and left disabled.
func connectOptional(ctx context.Context, c *container.Container) {
	cfg, logger := c.Cfg, c.Logger

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable, email jobs disabled", err, nil)
		} else {
			c.Rabbit = pub
		}
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	switch {
	case err != nil:
		helpers.LogWarn(logger, "elasticsearch unavailable, search uses postgres", err, nil)
	case es != nil && cfg.ESNotesIndex != "":
		if err := search.NewNoteIndex(es, cfg.ESNotesIndex).EnsureIndex(ctx); err != nil {
			helpers.LogWarn(logger, "elasticsearch index setup failed, search uses postgres", err, logrus.Fields{"index": cfg.ESNotesIndex})
		} else {
			c.ES = es
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			helpers.LogWarn(logger, "gcs unavailable, chart uploads disabled", err, nil)
		} else {
			c.GCS = gcs
		}
	}

	logger.WithFields(logrus.Fields{
		"redis":         c.Redis != nil,
		"rabbitmq":      c.Rabbit != nil,
		"elasticsearch": c.ES != nil,
		"gcs":           c.GCS != nil,
	}).Info("optional backends")
}

// corsConfig allows any origin for "*" or an empty list.
func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.TokenHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := cfg.CORSOrigins()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}
