package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/pkg/auth/presentation/middleware"
	"go-courier/internal/pkg/chat/application/usecase"
	chat "go-courier/internal/pkg/chat/domain"
	repoAdapter "go-courier/internal/pkg/chat/persistence/repository/adapter"
	"go-courier/pkg/logger"
)

// ListPeersController serves the contact list with presence and last-message
// previews.
type ListPeersController struct {
	peersUC *usecase.ListPeersUseCase
	timeout time.Duration
}

func NewListPeersController(pool *pgxpool.Pool, cache cacheport.Cache, log *logger.Logger) *ListPeersController {
	return &ListPeersController{
		peersUC: usecase.NewListPeersUseCase(repoAdapter.NewPgChatRepository(pool), cache, log),
		timeout: 5 * time.Second,
	}
}

func (h *ListPeersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		peers, err := h.peersUC.Execute(ctx, middleware.UserID(c))
		if err != nil {
			replyHTTPError(c, err)
			return
		}

		out := make([]gin.H, 0, len(peers))
		for _, p := range peers {
			out = append(out, peerPayload(p))
		}
		c.JSON(http.StatusOK, gin.H{"peers": out})
	}
}

func peerPayload(p chat.PeerView) gin.H {
	return gin.H{
		"id":              p.User.ID,
		"username":        p.User.Username,
		"online":          p.User.Online,
		"last_seen":       p.User.LastSeen,
		"conversation_id": p.ConversationID,
		"last_message":    p.LastMessage,
		"last_message_at": p.LastMessageAt,
		"last_message_by": p.LastMessageBy,
	}
}
