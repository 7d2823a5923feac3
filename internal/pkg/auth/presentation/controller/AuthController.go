package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	authusecase "go-courier/internal/pkg/auth/application/usecase"
	authport "go-courier/internal/pkg/auth/port"
	"go-courier/internal/pkg/auth/presentation/middleware"
	chat "go-courier/internal/pkg/chat/domain"
	repoAdapter "go-courier/internal/pkg/chat/persistence/repository/adapter"
	"go-courier/pkg/apperrors"
)

// AuthController handles register/login/me endpoints.
type AuthController struct {
	registerUC *authusecase.RegisterUseCase
	loginUC    *authusecase.LoginUseCase
	timeout    time.Duration
}

func NewAuthController(pool *pgxpool.Pool, issuer authport.Issuer) *AuthController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &AuthController{
		registerUC: authusecase.NewRegisterUseCase(repo, issuer),
		loginUC:    authusecase.NewLoginUseCase(repo, issuer),
		timeout:    5 * time.Second,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthController) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		res, err := h.registerUC.Execute(ctx, authusecase.RegisterInput{Username: req.Username, Password: req.Password})
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusCreated, authResponse(res))
	}
}

func (h *AuthController) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		res, err := h.loginUC.Execute(ctx, authusecase.LoginInput{Username: req.Username, Password: req.Password})
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, authResponse(res))
	}
}

// Me echoes the identity carried by the verified token.
func (h *AuthController) Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":       c.GetString(middleware.ContextUserID),
			"username": c.GetString(middleware.ContextUsername),
		})
	}
}

func authResponse(res *authusecase.AuthResult) gin.H {
	return gin.H{"token": res.Token, "user": userPayload(res.User)}
}

func userPayload(u *chat.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"username":  u.Username,
		"online":    u.Online,
		"last_seen": u.LastSeen,
	}
}

func replyError(c *gin.Context, err error) {
	var app *apperrors.AppError
	if !errors.As(err, &app) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	status := http.StatusBadRequest
	switch app.Code {
	case apperrors.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeAlreadyExists:
		status = http.StatusConflict
	case apperrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
	case apperrors.CodeInternal:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": app.Message, "code": app.Code})
}
