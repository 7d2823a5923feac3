package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	cacheport "go-courier/internal/infrastructure/cache/port"
	chat "go-courier/internal/pkg/chat/domain"
)

// fakeRepo is an in-memory ChatRepository mirroring the guarded-update
// semantics of the Postgres adapter.
type fakeRepo struct {
	mu      sync.Mutex
	seq     int
	users   map[string]*chat.User
	byPair  map[[2]string]*chat.Conversation
	msgs    map[string]*chat.Message
	failAll error // when set, every call fails with this error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  make(map[string]*chat.User),
		byPair: make(map[[2]string]*chat.Conversation),
		msgs:   make(map[string]*chat.Message),
	}
}

func (f *fakeRepo) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeRepo) addUser(id, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &chat.User{ID: id, Username: username, CreatedAt: time.Now()}
}

func (f *fakeRepo) CreateUser(ctx context.Context, u chat.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return "", f.failAll
	}
	id := f.nextID("user")
	u.ID = id
	f.users[id] = &u
	return id, nil
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id string) (*chat.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("no rows")
}

func (f *fakeRepo) GetUserByUsername(ctx context.Context, username string) (*chat.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("no rows")
}

func (f *fakeRepo) SetPresence(ctx context.Context, userID string, online bool, lastSeen *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	if u, ok := f.users[userID]; ok {
		u.Online = online
		u.LastSeen = lastSeen
	}
	return nil
}

func (f *fakeRepo) ListPeers(ctx context.Context, selfID string) ([]chat.PeerView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []chat.PeerView
	for _, u := range f.users {
		if u.ID == selfID {
			continue
		}
		cp := *u
		out = append(out, chat.PeerView{User: cp})
	}
	return out, nil
}

func (f *fakeRepo) ResolveConversation(ctx context.Context, userA, userB string) (*chat.Conversation, error) {
	a, b, err := chat.CanonicalPair(userA, userB)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	key := [2]string{a, b}
	if c, ok := f.byPair[key]; ok {
		cp := *c
		return &cp, nil
	}
	c := &chat.Conversation{ID: f.nextID("conv"), UserA: a, UserB: b, CreatedAt: time.Now()}
	f.byPair[key] = c
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) TouchConversation(ctx context.Context, conversationID string, text string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	for _, c := range f.byPair {
		if c.ID == conversationID {
			if c.LastMessageAt == nil || !c.LastMessageAt.After(at) {
				c.LastMessage = text
				c.LastMessageAt = &at
			}
			return nil
		}
	}
	return nil
}

func (f *fakeRepo) InsertMessage(ctx context.Context, m chat.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return "", f.failAll
	}
	id := f.nextID("msg")
	m.ID = id
	f.msgs[id] = &m
	return id, nil
}

func (f *fakeRepo) MarkDelivered(ctx context.Context, messageIDs []string, at time.Time) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []chat.Message
	for _, id := range messageIDs {
		m, ok := f.msgs[id]
		if !ok || m.Status != chat.StatusSent {
			continue
		}
		m.Status = chat.StatusDelivered
		m.DeliveredAt = &at
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeRepo) MarkRead(ctx context.Context, conversationID, readerID string, messageIDs []string, at time.Time) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []chat.Message
	for _, id := range messageIDs {
		m, ok := f.msgs[id]
		if !ok || m.ConversationID != conversationID || m.RecipientID != readerID || m.Status == chat.StatusRead {
			continue
		}
		m.Status = chat.StatusRead
		m.ReadAt = &at
		if m.DeliveredAt == nil {
			m.DeliveredAt = &at
		}
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeRepo) DeliverBacklog(ctx context.Context, recipientID string, at time.Time) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []chat.Message
	for _, m := range f.msgs {
		if m.RecipientID == recipientID && m.Status == chat.StatusSent {
			m.Status = chat.StatusDelivered
			m.DeliveredAt = &at
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []chat.Message
	for _, m := range f.msgs {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

// fakeOnline is a static OnlineChecker.
type fakeOnline map[string]bool

func (f fakeOnline) IsOnline(userID string) bool { return f[userID] }

// fakeBroadcaster records presence events.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []chat.PresenceEvent
}

func (f *fakeBroadcaster) BroadcastPresence(ev chat.PresenceEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeBroadcaster) all() []chat.PresenceEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.PresenceEvent(nil), f.events...)
}

// fakeCache is an in-memory port.Cache.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string]string)} }

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }
func (f *fakeCache) Close() error                   { return nil }
