package controller

import (
	"go-courier/internal/infrastructure/realtime"
	chat "go-courier/internal/pkg/chat/domain"
)

// HubPresenceBroadcaster publishes presence flips to every live connection.
// Presence is transient state, so everyone currently connected gets the event
// and late joiners read the snapshot from the peer list instead.
type HubPresenceBroadcaster struct {
	hub *realtime.Hub
}

func NewHubPresenceBroadcaster(hub *realtime.Hub) *HubPresenceBroadcaster {
	return &HubPresenceBroadcaster{hub: hub}
}

func (b *HubPresenceBroadcaster) BroadcastPresence(ev chat.PresenceEvent) {
	b.hub.BroadcastAll(encodePresenceFrame(ev))
}
