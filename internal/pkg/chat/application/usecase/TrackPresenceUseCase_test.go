package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-courier/pkg/logger"
)

func TestPresenceFiresOnlyOnEdges(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("alice", "alice")
	bc := &fakeBroadcaster{}
	uc := NewTrackPresenceUseCase(repo, newFakeCache(), bc, logger.Default())
	ctx := context.Background()

	// first device connects: one online event
	require.NoError(t, uc.OnConnect(ctx, "alice", true))
	// second device: no edge, no event
	require.NoError(t, uc.OnConnect(ctx, "alice", false))

	events := bc.all()
	require.Len(t, events, 1)
	assert.True(t, events[0].Online)
	assert.Nil(t, events[0].LastSeen)

	u, err := repo.GetUserByID(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, u.Online)

	// one device closes while the other stays: nothing fires
	require.NoError(t, uc.OnDisconnect(ctx, "alice", false))
	assert.Len(t, bc.all(), 1)

	// last device closes: one offline event with lastSeen
	require.NoError(t, uc.OnDisconnect(ctx, "alice", true))
	events = bc.all()
	require.Len(t, events, 2)
	assert.False(t, events[1].Online)
	require.NotNil(t, events[1].LastSeen)

	u, err = repo.GetUserByID(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, u.Online)
	require.NotNil(t, u.LastSeen)
}

func TestPresenceWritesCacheSnapshot(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("bob", "bob")
	cache := newFakeCache()
	uc := NewTrackPresenceUseCase(repo, cache, &fakeBroadcaster{}, logger.Default())

	require.NoError(t, uc.OnConnect(context.Background(), "bob", true))

	raw, err := cache.Get(context.Background(), presenceKey("bob"))
	require.NoError(t, err)
	var snap presenceSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.True(t, snap.Online)
}

func TestListPeersOverlaysCachedPresence(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("me", "me")
	repo.addUser("peer", "peer")
	cache := newFakeCache()
	bc := &fakeBroadcaster{}
	log := logger.Default()

	// flip the peer online through the tracker so the cache is warm
	tracker := NewTrackPresenceUseCase(repo, cache, bc, log)
	require.NoError(t, tracker.OnConnect(context.Background(), "peer", true))

	// stale the DB row on purpose; the overlay must win
	require.NoError(t, repo.SetPresence(context.Background(), "peer", false, nil))

	peers, err := NewListPeersUseCase(repo, cache, log).Execute(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, "peer", peers[0].User.Username)
	assert.True(t, peers[0].User.Online, "cached presence overlays the stored flag")
}
