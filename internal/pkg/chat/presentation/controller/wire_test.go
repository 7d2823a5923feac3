package controller

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "go-courier/internal/pkg/chat/domain"
)

func TestEncodeMessageFrame(t *testing.T) {
	now := time.Now().UTC()
	deliveredAt := now.Add(time.Second)
	msg := chat.Message{
		ID:             "m1",
		ConversationID: "c1",
		SenderID:       "alice",
		RecipientID:    "bob",
		Text:           "hi",
		Status:         chat.StatusDelivered,
		CreatedAt:      now,
		DeliveredAt:    &deliveredAt,
		CorrelationID:  "tmp-42",
	}

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encodeMessageFrame(msg), &decoded))
	assert.Equal(t, "message:new", decoded["type"])

	payload, ok := decoded["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "m1", payload["id"])
	assert.Equal(t, "delivered", payload["status"])
	assert.Equal(t, "tmp-42", payload["temp_id"])
	assert.NotContains(t, payload, "read_at", "unset optional timestamps are omitted")
}

func TestEncodeMessageFrameOmitsEmptyTempID(t *testing.T) {
	msg := chat.Message{ID: "m1", Status: chat.StatusSent, CreatedAt: time.Now()}

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encodeMessageFrame(msg), &decoded))
	payload := decoded["message"].(map[string]any)
	assert.NotContains(t, payload, "temp_id")
}

func TestEncodePresenceFrame(t *testing.T) {
	lastSeen := time.Now().UTC()
	offline := encodePresenceFrame(chat.PresenceEvent{UserID: "bob", Online: false, LastSeen: &lastSeen})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(offline, &decoded))
	assert.Equal(t, "presence:update", decoded["type"])
	assert.Equal(t, "bob", decoded["user_id"])
	assert.Equal(t, false, decoded["online"])
	assert.NotNil(t, decoded["last_seen"])

	online := encodePresenceFrame(chat.PresenceEvent{UserID: "bob", Online: true})
	require.NoError(t, json.Unmarshal(online, &decoded))
	assert.Equal(t, true, decoded["online"])
	assert.Nil(t, decoded["last_seen"], "online events carry no last_seen")
}

func TestInboundFrameParsing(t *testing.T) {
	raw := `{"type":"message:send","to":"bob","text":"hi","temp_id":"tmp-1"}`
	var frame inboundFrame
	require.NoError(t, json.Unmarshal([]byte(raw), &frame))
	assert.Equal(t, frameMessageSend, frame.Type)
	assert.Equal(t, "bob", frame.To)
	assert.Equal(t, "tmp-1", frame.TempID)

	raw = `{"type":"message:read","conversation_id":"c1","message_ids":["m1","m2"]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &frame))
	assert.Equal(t, frameMessageRead, frame.Type)
	assert.Len(t, frame.MessageIDs, 2)
}
