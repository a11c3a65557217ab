package service

import (
	"context"
	"fmt"
	"time"

	"clash-hub/internal/api"
	"clash-hub/internal/constants"
	"clash-hub/internal/domain"
	"clash-hub/internal/repository"
	"clash-hub/internal/tag"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RoyaleAPI is the slice of the upstream client the services consume.
type RoyaleAPI interface {
	GetPlayer(ctx context.Context, tag string) (*api.PlayerResponse, error)
	GetBattleLog(ctx context.Context, tag string) (*api.BattleLogResponse, error)
	GetClan(ctx context.Context, tag string) (*api.ClanData, error)
	SearchClans(ctx context.Context, name, locationID string) (*api.ClanSearchResponse, error)
}

type PlayerService struct {
	client     RoyaleAPI
	repo       *repository.PlayerRepository
	battleRepo *repository.BattleRepository
	logger     zerolog.Logger
}

func NewPlayerService(client RoyaleAPI, repo *repository.PlayerRepository, battleRepo *repository.BattleRepository, logger zerolog.Logger) *PlayerService {
	return &PlayerService{client: client, repo: repo, battleRepo: battleRepo, logger: logger}
}

// GetProfile resolves a raw player tag to a profile plus the recent
// battle log. Cached records younger than the TTL are served as-is;
// otherwise profile and battle log are fetched upstream in parallel.
func (s *PlayerService) GetProfile(ctx context.Context, rawTag string, refresh bool) (*domain.Player, []domain.Battle, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	normalized, err := tag.Normalize(rawTag)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("tag", normalized).Bool("refresh", refresh).Msg("getting player profile")

	shouldRefresh, err := s.repo.ShouldRefresh(ctx, normalized, constants.PlayerRefreshTTL)
	if err != nil {
		return nil, nil, err
	}
	if refresh {
		shouldRefresh = true
		s.logger.Debug().Str("tag", normalized).Msg("manual refresh requested")
	}

	if !shouldRefresh {
		player, err := s.repo.Get(ctx, normalized)
		if err == nil {
			battles, berr := s.battleRepo.GetByPlayer(ctx, normalized)
			if berr != nil {
				s.logger.Warn().Err(berr).Str("tag", normalized).Msg("failed to read cached battles")
			}
			s.logger.Info().Str("tag", normalized).Msg("returning cached player")
			return player, battles, nil
		}
		s.logger.Debug().Err(err).Str("tag", normalized).Msg("cache read failed, fetching from API")
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	g, gCtx := errgroup.WithContext(apiCtx)
	var (
		profile   *api.PlayerResponse
		battleLog *api.BattleLogResponse
	)
	g.Go(func() error {
		var err error
		profile, err = s.client.GetPlayer(gCtx, normalized)
		return err
	})
	g.Go(func() error {
		var err error
		battleLog, err = s.client.GetBattleLog(gCtx, normalized)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("tag", normalized).Msg("failed to fetch player data")
		return nil, nil, fmt.Errorf("failed to fetch player data: %w", err)
	}

	player := toDomainPlayer(profile)
	player.LastFetchAt = time.Now()
	if err := s.repo.Upsert(ctx, player); err != nil {
		s.logger.Error().Err(err).Str("tag", normalized).Msg("failed to upsert player")
		return nil, nil, fmt.Errorf("failed to upsert player: %w", err)
	}

	battles := toDomainBattles(battleLog)
	if err := s.battleRepo.UpsertBatch(ctx, normalized, battles); err != nil {
		s.logger.Warn().Err(err).Str("tag", normalized).Msg("failed to cache battles")
	}

	s.logger.Info().Str("tag", normalized).Int("battles", len(battles)).Msg("player fetched successfully")
	return player, battles, nil
}
