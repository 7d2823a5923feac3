package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "go-courier/internal/infrastructure/cache/port"
	queueport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/infrastructure/realtime"
	authport "go-courier/internal/pkg/auth/port"
	"go-courier/internal/pkg/auth/presentation/middleware"
	"go-courier/internal/pkg/chat/application/usecase"
	chat "go-courier/internal/pkg/chat/domain"
	repoAdapter "go-courier/internal/pkg/chat/persistence/repository/adapter"
	"go-courier/internal/platform/ratelimiter"
	"go-courier/pkg/apperrors"
	"go-courier/pkg/logger"
)

// ChatSocketController owns the websocket endpoint: it authenticates the
// upgrade, tracks the connection lifecycle and dispatches inbound frames to
// the messaging use cases.
type ChatSocketController struct {
	hub      *realtime.Hub
	verifier authport.Verifier
	limiter  *ratelimiter.FrameLimiter
	log      *logger.Logger

	sendUC     *usecase.SendMessageUseCase
	markReadUC *usecase.MarkReadUseCase
	backlogUC  *usecase.DeliverBacklogUseCase
	presenceUC *usecase.TrackPresenceUseCase

	inflightTimeout time.Duration
}

func NewChatSocketController(
	pool *pgxpool.Pool,
	hub *realtime.Hub,
	cache cacheport.Cache,
	queue queueport.Client,
	verifier authport.Verifier,
	limiter *ratelimiter.FrameLimiter,
	log *logger.Logger,
) *ChatSocketController {
	repo := repoAdapter.NewPgChatRepository(pool)
	touch := usecase.NewTouchConversationUseCase(repo, queue, log)
	return &ChatSocketController{
		hub:             hub,
		verifier:        verifier,
		limiter:         limiter,
		log:             log,
		sendUC:          usecase.NewSendMessageUseCase(repo, hub.Registry(), touch, log),
		markReadUC:      usecase.NewMarkReadUseCase(repo),
		backlogUC:       usecase.NewDeliverBacklogUseCase(repo),
		presenceUC:      usecase.NewTrackPresenceUseCase(repo, cache, NewHubPresenceBroadcaster(hub), log),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth rides the bearer token, which browsers cannot attach
		// cross-origin without a script holding it; accepting any Origin
		// trades CSRF hardening for non-browser clients. Serve browsers from
		// a fixed origin behind an allowlist here.
		return true
	},
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the request and processes frames until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := middleware.BearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, err := ctl.verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(id.UserID, ws)
		first := ctl.hub.Attach(conn)
		defer ctl.teardown(conn)

		if err := ctl.onConnect(c.Request.Context(), conn, first); err != nil {
			ctl.log.Error("connection setup failed", "user_id", conn.UserID, "err", err)
			ctl.handleUseCaseError(conn, err)
		}

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !isExpectedClose(err) {
					ctl.log.Debug("socket read failed", "user_id", conn.UserID, "err", err)
				}
				return
			}

			if !ctl.limiter.Allow(conn.UserID, time.Now()) {
				ctl.replyError(conn, apperrors.CodeResourceExhausted, "too many frames, slow down")
				continue
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, apperrors.CodeInvalidArgument, "invalid payload")
				continue
			}
			ctl.dispatch(c.Request.Context(), conn, frame)
		}
	}
}

// onConnect registers presence, greets the client and flushes the pending
// backlog. Backlog pushes go to both sides so the senders' devices see their
// messages advance to delivered.
func (ctl *ChatSocketController) onConnect(ctx context.Context, conn *realtime.Connection, first bool) error {
	opCtx, cancel := context.WithTimeout(ctx, ctl.inflightTimeout)
	defer cancel()

	if err := ctl.presenceUC.OnConnect(opCtx, conn.UserID, first); err != nil {
		return err
	}

	if payload, err := json.Marshal(connectedFrame{Type: frameConnected, UserID: conn.UserID}); err == nil {
		_ = conn.Send(payload)
	}

	delivered, err := ctl.backlogUC.Execute(opCtx, conn.UserID)
	if err != nil {
		return err
	}
	for _, msg := range delivered {
		ctl.pushMessage(msg)
	}
	return nil
}

// teardown runs exactly once per connection regardless of what triggered the
// close; the registry ignores a second removal so racing signals cannot
// double-fire the offline edge.
func (ctl *ChatSocketController) teardown(conn *realtime.Connection) {
	last := ctl.hub.Detach(conn)
	conn.Close(websocket.CloseNormalClosure, "session closed")

	// The request context is gone once the socket drops; persistence of the
	// offline flip needs its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
	defer cancel()
	if err := ctl.presenceUC.OnDisconnect(ctx, conn.UserID, last); err != nil {
		ctl.log.Error("presence disconnect failed", "user_id", conn.UserID, "err", err)
	}
	if last {
		ctl.limiter.Forget(conn.UserID)
	}
}

func (ctl *ChatSocketController) dispatch(ctx context.Context, conn *realtime.Connection, frame inboundFrame) {
	opCtx, cancel := context.WithTimeout(ctx, ctl.inflightTimeout)
	defer cancel()

	switch frame.Type {
	case frameMessageSend:
		ctl.handleSend(opCtx, conn, frame)
	case frameMessageRead:
		ctl.handleRead(opCtx, conn, frame)
	case frameTypingStart, frameTypingStop:
		ctl.handleTyping(conn, frame)
	default:
		ctl.replyError(conn, apperrors.CodeInvalidArgument, "unknown frame type")
	}
}

func (ctl *ChatSocketController) handleSend(ctx context.Context, conn *realtime.Connection, frame inboundFrame) {
	msg, err := ctl.sendUC.Execute(ctx, usecase.SendMessageInput{
		SenderID:      conn.UserID,
		RecipientID:   frame.To,
		Text:          frame.Text,
		CorrelationID: frame.TempID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}
	ctl.pushMessage(*msg)
}

func (ctl *ChatSocketController) handleRead(ctx context.Context, conn *realtime.Connection, frame inboundFrame) {
	updated, err := ctl.markReadUC.Execute(ctx, usecase.MarkReadInput{
		ReaderID:       conn.UserID,
		ConversationID: frame.ConversationID,
		MessageIDs:     frame.MessageIDs,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}
	for _, msg := range updated {
		ctl.pushMessage(msg)
	}
}

// handleTyping relays the indicator to the peer's live connections. Nothing is
// persisted and an offline peer is a silent no-op.
func (ctl *ChatSocketController) handleTyping(conn *realtime.Connection, frame inboundFrame) {
	if frame.To == "" || frame.To == conn.UserID {
		return
	}
	payload, err := json.Marshal(typingFrame{Type: frame.Type, From: conn.UserID})
	if err != nil {
		return
	}
	ctl.hub.NotifyUser(frame.To, payload)
}

// pushMessage fans the canonical record out to both parties. The correlation
// id is the sender's private echo handle, so the recipient copy is stripped
// of it.
func (ctl *ChatSocketController) pushMessage(msg chat.Message) {
	ctl.hub.NotifyUser(msg.SenderID, encodeMessageFrame(msg))

	recipientCopy := msg
	recipientCopy.CorrelationID = ""
	ctl.hub.NotifyUser(msg.RecipientID, encodeMessageFrame(recipientCopy))
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	var app *apperrors.AppError
	if errors.As(err, &app) {
		ctl.replyError(conn, app.Code, app.Message)
		return
	}
	ctl.replyError(conn, apperrors.CodeInternal, "internal error")
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code apperrors.Code, message string) {
	if payload, err := json.Marshal(errorFrame{Type: frameError, Code: string(code), Error: message}); err == nil {
		_ = conn.Send(payload)
	}
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
		errors.Is(err, websocket.ErrCloseSent)
}
