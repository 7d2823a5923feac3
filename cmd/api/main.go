package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "go-courier/cmd/api/router/v1"
	"go-courier/config"
	cacheAdapter "go-courier/internal/infrastructure/cache/adapter"
	cacheport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/infrastructure/database"
	queueAdapter "go-courier/internal/infrastructure/queue/adapter"
	queueport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/infrastructure/realtime"
	authAdapter "go-courier/internal/pkg/auth/adapter"
	"go-courier/internal/pkg/chat/application/task"
	"go-courier/internal/platform/ratelimiter"
	"go-courier/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Default().Warn(".env file not loaded", "err", err)
	}

	v, err := config.LoadConfig("config")
	if err != nil {
		logger.Default().Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		logger.Default().Error("failed to parse config", "err", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		logger.Default().Error("failed to build logger", "err", err)
		os.Exit(1)
	}

	if cfg.JWT.Secret == "" {
		log.Error("jwt.secret is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.NewPoolFromEnv(startupCtx)
	cancel()
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis backs the presence cache and the task queue. Both degrade
	// gracefully: without them presence is DB-only and preview refreshes run
	// inline.
	var cache cacheport.Cache
	if rc, err := cacheAdapter.NewRedisAdapter(); err != nil {
		log.Warn("redis unavailable, presence cache disabled", "err", err)
	} else {
		cache = rc
		defer rc.Close()
	}

	var queue queueport.Client
	if qc, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		log.Warn("queue unavailable, background tasks disabled", "err", err)
	} else {
		queue = qc
		defer qc.Close()
	}

	if queue != nil {
		qsrv, err := queueAdapter.NewAsynqServer(log)
		if err != nil {
			log.Warn("queue worker not started", "err", err)
		} else {
			task.RegisterTouchConversationTask(qsrv, pool, log)
			go func() {
				if err := qsrv.Run(ctx); err != nil {
					log.Error("queue worker stopped", "err", err)
				}
			}()
		}
	}

	hub := realtime.NewHub()
	defer hub.Close()

	limiter := ratelimiter.NewFrameLimiter(cfg.Limiter.RPS, cfg.Limiter.Burst)
	tokens := authAdapter.NewJWTManager(cfg.JWT)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1.RegisterRoutes(r, pool, hub, cache, queue, tokens, limiter, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "err", err)
	}
}
