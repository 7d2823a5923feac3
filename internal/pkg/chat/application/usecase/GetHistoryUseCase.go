package usecase

import (
	"context"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// GetHistoryInput selects a page of messages exchanged with a peer.
type GetHistoryInput struct {
	SelfID string
	PeerID string
	Limit  int
	Offset int
}

// GetHistoryResult pairs the resolved conversation with its messages so the
// client learns the conversation id on first contact.
type GetHistoryResult struct {
	Conversation *chat.Conversation
	Messages     []chat.Message
}

// GetHistoryUseCase returns the conversation history with a peer, creating the
// conversation lazily on first fetch.
type GetHistoryUseCase struct {
	Repo repository.ChatRepository
}

func NewGetHistoryUseCase(repo repository.ChatRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) (*GetHistoryResult, error) {
	conv, err := uc.Repo.ResolveConversation(ctx, in.SelfID, in.PeerID)
	if err != nil {
		return nil, storeFail(err)
	}
	msgs, err := uc.Repo.ListMessages(ctx, conv.ID, in.Limit, in.Offset)
	if err != nil {
		return nil, storeFail(err)
	}
	return &GetHistoryResult{Conversation: conv, Messages: msgs}, nil
}
