package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "go-courier/internal/infrastructure/cache/port"
	queueport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/infrastructure/realtime"
	authAdapter "go-courier/internal/pkg/auth/adapter"
	authHTTP "go-courier/internal/pkg/auth/presentation/http"
	chatHTTP "go-courier/internal/pkg/chat/presentation/http"
	"go-courier/internal/platform/ratelimiter"
	"go-courier/pkg/logger"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1.
func RegisterRoutes(
	r *gin.Engine,
	pool *pgxpool.Pool,
	hub *realtime.Hub,
	cache cacheport.Cache,
	queue queueport.Client,
	tokens *authAdapter.JWTManager,
	limiter *ratelimiter.FrameLimiter,
	log *logger.Logger,
) {
	v1 := r.Group("/api/v1")
	authHTTP.RegisterRoutes(v1, pool, tokens, tokens)
	chatHTTP.RegisterRoutes(v1, pool, hub, cache, queue, tokens, limiter, log)
}
