package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	qport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/pkg/chat/application/usecase"
	repoAdapter "go-courier/internal/pkg/chat/persistence/repository/adapter"
	"go-courier/pkg/logger"
)

// RegisterTouchConversationTask binds the preview-refresh handler to the
// provided server. Malformed payloads are dropped rather than retried.
func RegisterTouchConversationTask(srv qport.Server, pool *pgxpool.Pool, log *logger.Logger) {
	repo := repoAdapter.NewPgChatRepository(pool)
	uc := usecase.NewTouchConversationUseCase(repo, nil, log)

	srv.Register(usecase.TouchConversationTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.TouchConversationPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			log.Error("dropping malformed touch payload", "err", err)
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return uc.Apply(ctx, p)
	})
}
