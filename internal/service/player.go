package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-page-quiz/internal/domain"
	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

// PlayerService loads and saves player records.
type PlayerService struct {
	store  PlayerStore
	logger *zap.Logger
	now    func() time.Time
}

func NewPlayerService(store PlayerStore, logger *zap.Logger) *PlayerService {
	return &PlayerService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// NewPlayerServiceWithClock is test-only for deterministic dates.
func NewPlayerServiceWithClock(store PlayerStore, logger *zap.Logger, now func() time.Time) *PlayerService {
	s := NewPlayerService(store, logger)
	s.now = now
	return s
}

// Load hydrates the player from the remote store, or creates a fresh record
// when the store has never seen this name. In both cases the locally-managed
// daily counter is reset when its stored date is not today.
func (s *PlayerService) Load(ctx context.Context, userName string) (*entities.Player, error) {
	player, err := s.store.GetPlayer(ctx, userName)
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			s.logger.Info("new player", zap.String("name", userName))
			player = entities.NewPlayer(userName)
		} else {
			return nil, fmt.Errorf("load player: %w", err)
		}
	}

	player.ResetDailyCounterIfStale(entities.DateString(s.now()))

	return player, nil
}

// Save writes the player's persisted fields, best-effort. The returned error
// is for status display; nothing is retried or rolled back.
func (s *PlayerService) Save(ctx context.Context, player *entities.Player) error {
	if err := s.store.UpdatePlayer(ctx, player); err != nil {
		s.logger.Warn("player save failed",
			zap.String("name", player.Name),
			zap.Error(err),
		)
		return fmt.Errorf("save player: %w", err)
	}

	player.IsNew = false

	return nil
}
