package usecase

import (
	"context"
	"encoding/json"
	"time"

	cacheport "go-courier/internal/infrastructure/cache/port"
	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	"go-courier/pkg/logger"
)

const presenceCacheTTL = 24 * time.Hour

func presenceKey(userID string) string { return "presence:" + userID }

type presenceSnapshot struct {
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen"`
}

// TrackPresenceUseCase persists and broadcasts online/offline flips. Callers
// pass the edge flag computed by the connection registry, so a user with
// several devices produces exactly one event per actual transition.
type TrackPresenceUseCase struct {
	Repo      repository.ChatRepository
	Cache     cacheport.Cache
	Broadcast PresenceBroadcaster
	Log       *logger.Logger
}

func NewTrackPresenceUseCase(repo repository.ChatRepository, cache cacheport.Cache, broadcast PresenceBroadcaster, log *logger.Logger) *TrackPresenceUseCase {
	return &TrackPresenceUseCase{Repo: repo, Cache: cache, Broadcast: broadcast, Log: log}
}

// OnConnect handles a new connection; it acts only on the offline->online edge.
func (uc *TrackPresenceUseCase) OnConnect(ctx context.Context, userID string, first bool) error {
	if !first {
		return nil
	}
	if err := uc.Repo.SetPresence(ctx, userID, true, nil); err != nil {
		return storeFail(err)
	}
	uc.cacheSnapshot(ctx, userID, presenceSnapshot{Online: true})
	uc.Broadcast.BroadcastPresence(chat.PresenceEvent{UserID: userID, Online: true})
	return nil
}

// OnDisconnect handles a closed connection; it acts only on the online->offline edge.
func (uc *TrackPresenceUseCase) OnDisconnect(ctx context.Context, userID string, last bool) error {
	if !last {
		return nil
	}
	now := time.Now().UTC()
	if err := uc.Repo.SetPresence(ctx, userID, false, &now); err != nil {
		return storeFail(err)
	}
	uc.cacheSnapshot(ctx, userID, presenceSnapshot{Online: false, LastSeen: &now})
	uc.Broadcast.BroadcastPresence(chat.PresenceEvent{UserID: userID, Online: false, LastSeen: &now})
	return nil
}

// cacheSnapshot keeps the redis projection of presence fresh for the peer
// list; failures only cost freshness, never correctness.
func (uc *TrackPresenceUseCase) cacheSnapshot(ctx context.Context, userID string, snap presenceSnapshot) {
	if uc.Cache == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := uc.Cache.Set(ctx, presenceKey(userID), string(raw), presenceCacheTTL); err != nil {
		uc.Log.Debug("presence cache write failed", "user_id", userID, "err", err)
	}
}
