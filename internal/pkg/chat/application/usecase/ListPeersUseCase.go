package usecase

import (
	"context"
	"encoding/json"
	"errors"

	cacheport "go-courier/internal/infrastructure/cache/port"
	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	"go-courier/pkg/apperrors"
	"go-courier/pkg/logger"
)

// ListPeersUseCase builds the peer list projection: every other user with
// presence and last-message preview. Presence is overlaid from the cache when
// available since the cache is written on every flip, while DB rows may lag
// behind in-flight transitions.
type ListPeersUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache
	Log   *logger.Logger
}

func NewListPeersUseCase(repo repository.ChatRepository, cache cacheport.Cache, log *logger.Logger) *ListPeersUseCase {
	return &ListPeersUseCase{Repo: repo, Cache: cache, Log: log}
}

func (uc *ListPeersUseCase) Execute(ctx context.Context, selfID string) ([]chat.PeerView, error) {
	if selfID == "" {
		return nil, apperrors.InvalidArg("self id is required")
	}
	peers, err := uc.Repo.ListPeers(ctx, selfID)
	if err != nil {
		return nil, storeFail(err)
	}
	uc.overlayPresence(ctx, peers)
	return peers, nil
}

func (uc *ListPeersUseCase) overlayPresence(ctx context.Context, peers []chat.PeerView) {
	if uc.Cache == nil {
		return
	}
	for i := range peers {
		raw, err := uc.Cache.Get(ctx, presenceKey(peers[i].User.ID))
		if err != nil {
			if !errors.Is(err, cacheport.ErrMiss) {
				uc.Log.Debug("presence cache read failed", "user_id", peers[i].User.ID, "err", err)
			}
			continue
		}
		var snap presenceSnapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			continue
		}
		peers[i].User.Online = snap.Online
		if snap.LastSeen != nil {
			peers[i].User.LastSeen = snap.LastSeen
		}
	}
}
