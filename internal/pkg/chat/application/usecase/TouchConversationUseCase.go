package usecase

import (
	"context"
	"encoding/json"
	"time"

	queueport "go-courier/internal/infrastructure/queue/port"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	"go-courier/pkg/logger"
)

// TouchConversationTaskType is the queue task name for refreshing a
// conversation's last-message preview.
const TouchConversationTaskType = "chat:touch_conversation"

// TouchConversationPayload is the JSON payload transported via the queue.
type TouchConversationPayload struct {
	ConversationID string    `json:"conversationId"`
	Text           string    `json:"text"`
	At             time.Time `json:"at"`
}

// TouchConversationUseCase keeps the last-message preview on conversations
// fresh for the peer-list projection. The update is best-effort: it is pushed
// through the background queue, falling back to an inline write when the queue
// is unreachable, and its failure never affects message delivery.
type TouchConversationUseCase struct {
	Repo  repository.ChatRepository
	Queue queueport.Client
	Log   *logger.Logger
}

func NewTouchConversationUseCase(repo repository.ChatRepository, queue queueport.Client, log *logger.Logger) *TouchConversationUseCase {
	return &TouchConversationUseCase{Repo: repo, Queue: queue, Log: log}
}

// Schedule enqueues the preview refresh. Errors are logged, never returned.
func (uc *TouchConversationUseCase) Schedule(ctx context.Context, conversationID, text string, at time.Time) {
	payload := TouchConversationPayload{ConversationID: conversationID, Text: text, At: at}

	if uc.Queue != nil {
		b, err := json.Marshal(payload)
		if err == nil {
			opts := queueport.EnqueueOption{Queue: "chat", MaxRetry: 5}
			if _, err = uc.Queue.Enqueue(ctx, queueport.Task{Type: TouchConversationTaskType, Payload: b}, opts); err == nil {
				return
			}
		}
		uc.Log.Warn("touch enqueue failed, applying inline", "conversation_id", conversationID, "err", err)
	}

	if err := uc.Apply(ctx, payload); err != nil {
		uc.Log.Warn("conversation preview refresh failed", "conversation_id", conversationID, "err", err)
	}
}

// Apply writes the preview. The repository ignores stale writes so delayed
// tasks cannot move the preview backwards.
func (uc *TouchConversationUseCase) Apply(ctx context.Context, p TouchConversationPayload) error {
	return storeFail(uc.Repo.TouchConversation(ctx, p.ConversationID, p.Text, p.At))
}
