package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-courier/internal/pkg/auth/presentation/middleware"
	"go-courier/internal/pkg/chat/application/usecase"
	repoAdapter "go-courier/internal/pkg/chat/persistence/repository/adapter"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// GetHistoryController serves the message history with one peer.
type GetHistoryController struct {
	historyUC *usecase.GetHistoryUseCase
	timeout   time.Duration
}

func NewGetHistoryController(pool *pgxpool.Pool) *GetHistoryController {
	return &GetHistoryController{
		historyUC: usecase.NewGetHistoryUseCase(repoAdapter.NewPgChatRepository(pool)),
		timeout:   5 * time.Second,
	}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		peerID := c.Param("peerId")
		limit := queryInt(c, "limit", defaultHistoryLimit)
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}
		offset := queryInt(c, "offset", 0)

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		res, err := h.historyUC.Execute(ctx, usecase.GetHistoryInput{
			SelfID: middleware.UserID(c),
			PeerID: peerID,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			replyHTTPError(c, err)
			return
		}

		messages := make([]messagePayload, 0, len(res.Messages))
		for _, m := range res.Messages {
			messages = append(messages, toMessagePayload(m))
		}
		c.JSON(http.StatusOK, gin.H{
			"conversation_id": res.Conversation.ID,
			"messages":        messages,
		})
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
