package realtime

import (
	"sync"
)

// Registry maps each user to the set of their currently live connections.
// All routing and presence decisions derive from it, so the empty/non-empty
// edge for a user must be computed in the same critical section as the
// mutation itself; callers consume the returned edge flags instead of doing
// a separate read-then-check.
type Registry struct {
	mu    sync.Mutex
	conns map[string]map[string]*Connection // userID -> connectionID -> connection
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]map[string]*Connection)}
}

// Add registers the connection under its user. It reports whether this was the
// user's first live connection (offline -> online edge). Adding a connection
// that is already registered is a no-op and never reports an edge.
func (r *Registry) Add(conn *Connection) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.conns[conn.UserID]
	if set == nil {
		set = make(map[string]*Connection)
		r.conns[conn.UserID] = set
	}
	if _, ok := set[conn.ID]; ok {
		return false
	}
	set[conn.ID] = conn
	return len(set) == 1
}

// Remove unregisters the connection. removed reports whether the connection was
// actually tracked; last reports whether its removal left the user with no live
// connections (online -> offline edge). Removing an unknown connection is a no-op.
func (r *Registry) Remove(conn *Connection) (removed bool, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.conns[conn.UserID]
	if set == nil {
		return false, false
	}
	if _, ok := set[conn.ID]; !ok {
		return false, false
	}
	delete(set, conn.ID)
	if len(set) == 0 {
		delete(r.conns, conn.UserID)
		return true, true
	}
	return true, false
}

// Connections returns a snapshot of the user's live connections. The empty
// slice for unknown users keeps callers free of nil checks.
func (r *Registry) Connections(userID string) []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.conns[userID]
	out := make([]*Connection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// IsOnline reports whether the user has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns[userID]) > 0
}

// snapshotAll returns every tracked connection across all users.
func (r *Registry) snapshotAll() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Connection
	for _, set := range r.conns {
		for _, c := range set {
			out = append(out, c)
		}
	}
	return out
}

// clear drops all entries and returns what was tracked, for shutdown.
func (r *Registry) clear() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Connection
	for _, set := range r.conns {
		for _, c := range set {
			out = append(out, c)
		}
	}
	r.conns = make(map[string]map[string]*Connection)
	return out
}
