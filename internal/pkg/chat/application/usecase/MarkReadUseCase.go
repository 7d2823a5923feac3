package usecase

import (
	"context"
	"time"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	"go-courier/pkg/apperrors"
)

// MarkReadInput identifies the messages the reader has seen.
type MarkReadInput struct {
	ReaderID       string
	ConversationID string
	MessageIDs     []string
}

// MarkReadUseCase advances messages to read, best-effort per id: unknown ids,
// ids outside the conversation and already-read messages are skipped, not
// errors. Only actually-updated messages are returned for re-broadcast.
type MarkReadUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkReadUseCase(repo repository.ChatRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) ([]chat.Message, error) {
	if in.ReaderID == "" || in.ConversationID == "" {
		return nil, apperrors.InvalidArg("reader_id and conversation_id are required")
	}
	if len(in.MessageIDs) == 0 {
		return nil, apperrors.ErrEmptyMessageIDs
	}

	updated, err := uc.Repo.MarkRead(ctx, in.ConversationID, in.ReaderID, in.MessageIDs, time.Now().UTC())
	if err != nil {
		return nil, storeFail(err)
	}
	return updated, nil
}
