package usecase

import (
	chat "go-courier/internal/pkg/chat/domain"
)

// OnlineChecker answers reachability questions at send time. Satisfied by the
// realtime connection registry.
type OnlineChecker interface {
	IsOnline(userID string) bool
}

// PresenceBroadcaster pushes a presence change to every interested live
// connection. Emission is fire-and-forget.
type PresenceBroadcaster interface {
	BroadcastPresence(ev chat.PresenceEvent)
}
