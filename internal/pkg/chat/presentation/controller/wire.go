package controller

import (
	"encoding/json"
	"time"

	chat "go-courier/internal/pkg/chat/domain"
)

// Frame types exchanged over the socket.
const (
	frameMessageSend = "message:send"
	frameMessageRead = "message:read"
	frameTypingStart = "typing:start"
	frameTypingStop  = "typing:stop"

	frameConnected      = "connected"
	frameMessageNew     = "message:new"
	framePresenceUpdate = "presence:update"
	frameError          = "error"
)

type inboundFrame struct {
	Type string `json:"type"`

	// message:send
	To     string `json:"to,omitempty"`
	Text   string `json:"text,omitempty"`
	TempID string `json:"temp_id,omitempty"`

	// message:read
	ConversationID string   `json:"conversation_id,omitempty"`
	MessageIDs     []string `json:"message_ids,omitempty"`
}

type connectedFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

type messageFrame struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

type typingFrame struct {
	Type string `json:"type"`
	From string `json:"from"`
}

type presenceFrame struct {
	Type     string     `json:"type"`
	UserID   string     `json:"user_id"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type messagePayload struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	RecipientID    string     `json:"recipient_id"`
	Text           string     `json:"text"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	TempID         string     `json:"temp_id,omitempty"`
}

func toMessagePayload(m chat.Message) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Text:           m.Text,
		Status:         string(m.Status),
		CreatedAt:      m.CreatedAt,
		DeliveredAt:    m.DeliveredAt,
		ReadAt:         m.ReadAt,
		TempID:         m.CorrelationID,
	}
}

func encodeMessageFrame(m chat.Message) []byte {
	payload, _ := json.Marshal(messageFrame{Type: frameMessageNew, Message: toMessagePayload(m)})
	return payload
}

func encodePresenceFrame(ev chat.PresenceEvent) []byte {
	payload, _ := json.Marshal(presenceFrame{
		Type:     framePresenceUpdate,
		UserID:   ev.UserID,
		Online:   ev.Online,
		LastSeen: ev.LastSeen,
	})
	return payload
}
