package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "go-courier/internal/infrastructure/cache/port"
	queueport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/infrastructure/realtime"
	authport "go-courier/internal/pkg/auth/port"
	"go-courier/internal/pkg/auth/presentation/middleware"
	"go-courier/internal/pkg/chat/presentation/controller"
	"go-courier/internal/platform/ratelimiter"
	"go-courier/pkg/logger"
)

// RegisterRoutes mounts the messaging endpoints under the given router group.
func RegisterRoutes(
	g *gin.RouterGroup,
	pool *pgxpool.Pool,
	hub *realtime.Hub,
	cache cacheport.Cache,
	queue queueport.Client,
	verifier authport.Verifier,
	limiter *ratelimiter.FrameLimiter,
	log *logger.Logger,
) {
	socketCtl := controller.NewChatSocketController(pool, hub, cache, queue, verifier, limiter, log)
	peersCtl := controller.NewListPeersController(pool, cache, log)
	historyCtl := controller.NewGetHistoryController(pool)

	// The socket controller verifies the token itself so it can reply with a
	// proper HTTP status before the upgrade.
	g.GET("/ws", socketCtl.Handle())

	authed := g.Group("", middleware.RequireAuth(verifier))
	authed.GET("/users", peersCtl.Handle())
	authed.GET("/conversations/:peerId/messages", historyCtl.Handle())
}
