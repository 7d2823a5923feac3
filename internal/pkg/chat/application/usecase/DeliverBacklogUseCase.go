package usecase

import (
	"context"
	"time"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	"go-courier/pkg/apperrors"
)

// DeliverBacklogUseCase flushes the pending backlog when a user comes online:
// every message addressed to them still in sent moves to delivered with one
// shared timestamp. Two connections racing to register call this concurrently;
// the guarded update partitions the rows so each message appears in exactly
// one caller's result.
type DeliverBacklogUseCase struct {
	Repo repository.ChatRepository
}

func NewDeliverBacklogUseCase(repo repository.ChatRepository) *DeliverBacklogUseCase {
	return &DeliverBacklogUseCase{Repo: repo}
}

func (uc *DeliverBacklogUseCase) Execute(ctx context.Context, userID string) ([]chat.Message, error) {
	if userID == "" {
		return nil, apperrors.InvalidArg("user_id is required")
	}
	msgs, err := uc.Repo.DeliverBacklog(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, storeFail(err)
	}
	return msgs, nil
}
