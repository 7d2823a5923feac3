package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	authport "go-courier/internal/pkg/auth/port"
	"go-courier/internal/pkg/auth/presentation/controller"
	"go-courier/internal/pkg/auth/presentation/middleware"
)

// RegisterRoutes mounts the auth endpoints under the given router group.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, issuer authport.Issuer, verifier authport.Verifier) {
	authCtl := controller.NewAuthController(pool, issuer)

	g.POST("/auth/register", authCtl.Register())
	g.POST("/auth/login", authCtl.Login())
	g.GET("/me", middleware.RequireAuth(verifier), authCtl.Me())
}
