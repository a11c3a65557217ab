package service

import (
	"context"
	"fmt"

	"clash-hub/internal/battle"
	"clash-hub/internal/constants"
	"clash-hub/internal/domain"
	"clash-hub/internal/repository"
	"clash-hub/internal/tag"

	"github.com/rs/zerolog"
)

type BattleService struct {
	client RoyaleAPI
	repo   *repository.BattleRepository
	logger zerolog.Logger
}

func NewBattleService(client RoyaleAPI, repo *repository.BattleRepository, logger zerolog.Logger) *BattleService {
	return &BattleService{client: client, repo: repo, logger: logger}
}

// BattleReport is one battle-log page: the analyzed matches plus the
// aggregate stats and recent-form pattern shown above them.
type BattleReport struct {
	Battles []domain.Battle
	Summary battle.Summary
	Pattern string
}

// GetBattles fetches the player's battle log. On upstream failure it
// falls back to the cached log when one exists.
func (s *BattleService) GetBattles(ctx context.Context, rawTag string) (*BattleReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	normalized, err := tag.Normalize(rawTag)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("tag", normalized).Msg("fetching battle log")

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	battleLog, err := s.client.GetBattleLog(apiCtx, normalized)
	if err != nil {
		s.logger.Warn().Err(err).Str("tag", normalized).Msg("upstream battle log failed, trying cache")
		cached, cerr := s.repo.GetByPlayer(ctx, normalized)
		if cerr != nil || len(cached) == 0 {
			return nil, fmt.Errorf("failed to fetch battle log: %w", err)
		}
		return s.report(normalized, cached, true), nil
	}

	battles := toDomainBattles(battleLog)
	if err := s.repo.UpsertBatch(ctx, normalized, battles); err != nil {
		s.logger.Warn().Err(err).Str("tag", normalized).Msg("failed to cache battles")
	}

	return s.report(normalized, battles, false), nil
}

func (s *BattleService) report(tag string, battles []domain.Battle, fromCache bool) *BattleReport {
	summary := battle.Summarize(battles)
	s.logger.Info().
		Str("tag", tag).
		Int("total", summary.Total).
		Int("wins", summary.Wins).
		Int("crown_wins", summary.CrownWins).
		Int("win_percent", summary.WinPercent).
		Bool("from_cache", fromCache).
		Msg("battle log ready")

	return &BattleReport{
		Battles: battles,
		Summary: summary,
		Pattern: battle.Pattern(battles, constants.PatternGames),
	}
}
