package usecase

import (
	"context"
	"time"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	"go-courier/pkg/logger"
)

// SendMessageInput carries the data needed to send a new message.
// CorrelationID is the client's optimistic-echo handle; it is echoed back on
// the returned message and never persisted.
type SendMessageInput struct {
	SenderID      string
	RecipientID   string
	Text          string
	CorrelationID string
}

// SendMessageUseCase creates a message and performs the immediate delivery
// check in one logical step: the returned message's status already reflects
// whether the recipient was reachable at send time.
type SendMessageUseCase struct {
	Repo   repository.ChatRepository
	Online OnlineChecker
	Touch  *TouchConversationUseCase
	Log    *logger.Logger
}

func NewSendMessageUseCase(repo repository.ChatRepository, online OnlineChecker, touch *TouchConversationUseCase, log *logger.Logger) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Online: online, Touch: touch, Log: log}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	draft, err := chat.NewMessage(chat.Message{
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		Text:        in.Text,
	})
	if err != nil {
		return nil, err
	}

	conv, err := uc.Repo.ResolveConversation(ctx, draft.SenderID, draft.RecipientID)
	if err != nil {
		return nil, storeFail(err)
	}
	draft.ConversationID = conv.ID

	id, err := uc.Repo.InsertMessage(ctx, *draft)
	if err != nil {
		return nil, storeFail(err)
	}
	draft.ID = id

	// Immediate delivery check against live connections. A message already
	// advanced by a racing backlog run is simply absent from the update result.
	if uc.Online.IsOnline(draft.RecipientID) {
		updated, err := uc.Repo.MarkDelivered(ctx, []string{id}, time.Now().UTC())
		if err != nil {
			return nil, storeFail(err)
		}
		if len(updated) == 1 {
			*draft = updated[0]
		}
	}

	// Preview refresh is best-effort by contract; a failure never fails the send.
	if uc.Touch != nil {
		uc.Touch.Schedule(ctx, conv.ID, draft.Text, draft.CreatedAt)
	}

	draft.CorrelationID = in.CorrelationID
	return draft, nil
}
