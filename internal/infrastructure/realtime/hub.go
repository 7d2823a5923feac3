package realtime

import (
	"github.com/gorilla/websocket"
)

// Hub owns the Registry and fans payloads out to connection sets. Emits are
// fire-and-forget: a connection that closed between snapshot and write is
// simply skipped, never an error.
type Hub struct {
	registry *Registry
}

// NewHub constructs a Hub over a fresh registry.
func NewHub() *Hub {
	return &Hub{registry: NewRegistry()}
}

// Registry exposes the underlying connection registry for online checks.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Attach registers the connection and starts its write loop. It reports whether
// this connection flipped the user from offline to online.
func (h *Hub) Attach(conn *Connection) (first bool) {
	first = h.registry.Add(conn)
	conn.Start()
	return first
}

// Detach removes the connection if it is still tracked. It reports whether the
// user is now offline. Calling Detach twice for the same connection reports the
// edge at most once, so close races (transport error + explicit logout) cannot
// double-fire presence events.
func (h *Hub) Detach(conn *Connection) (last bool) {
	_, last = h.registry.Remove(conn)
	return last
}

// NotifyUser delivers payload to every live connection of the user and returns
// the number of successful writes. Zero means the user is unreachable.
func (h *Hub) NotifyUser(userID string, payload []byte) int {
	delivered := 0
	for _, conn := range h.registry.Connections(userID) {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUsers delivers payload to the union of the given users' connections.
// Duplicate user ids are collapsed so no connection receives the payload twice.
func (h *Hub) NotifyUsers(userIDs []string, payload []byte) int {
	seen := make(map[string]struct{}, len(userIDs))
	delivered := 0
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		delivered += h.NotifyUser(id, payload)
	}
	return delivered
}

// BroadcastAll writes payload to every live connection.
func (h *Hub) BroadcastAll(payload []byte) int {
	delivered := 0
	for _, conn := range h.registry.snapshotAll() {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked connections and clears the registry.
func (h *Hub) Close() {
	for _, conn := range h.registry.clear() {
		conn.Close(websocket.CloseGoingAway, "server shutdown")
	}
}
