package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"clash-hub/internal/api"
	"clash-hub/internal/constants"
	"clash-hub/internal/domain"
	"clash-hub/internal/repository"
	"clash-hub/internal/search"
	"clash-hub/internal/tag"

	"github.com/rs/zerolog"
)

type ClanService struct {
	client RoyaleAPI
	repo   *repository.ClanRepository
	logger zerolog.Logger
}

func NewClanService(client RoyaleAPI, repo *repository.ClanRepository, logger zerolog.Logger) *ClanService {
	return &ClanService{client: client, repo: repo, logger: logger}
}

// clanSearcher adapts the upstream client to the fuzzy-search loop.
type clanSearcher struct {
	client RoyaleAPI
}

func (cs clanSearcher) SearchClans(ctx context.Context, name, locationID string) ([]domain.Clan, error) {
	resp, err := cs.client.SearchClans(ctx, name, locationID)
	if err != nil {
		return nil, err
	}
	return toDomainClans(resp.Items), nil
}

// Search resolves a free-text query: tag-shaped input does a direct clan
// lookup, anything else goes through the fuzzy name search. An empty
// result list is a result, not an error.
func (s *ClanService) Search(ctx context.Context, query, locationID string) ([]domain.Clan, []search.Attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if tag.IsTagLike(query) {
		clans, err := s.searchByTag(ctx, query)
		return clans, nil, err
	}

	s.logger.Info().Str("query", query).Str("location_id", locationID).Msg("fuzzy clan search")

	clans, attempts := search.Run(ctx, clanSearcher{client: s.client}, query, locationID)
	s.logger.Info().Int("found", len(clans)).Int("attempts", len(attempts)).Str("query", query).Msg("fuzzy search completed")

	s.cache(ctx, clans)
	return clans, attempts, nil
}

func (s *ClanService) searchByTag(ctx context.Context, query string) ([]domain.Clan, error) {
	normalized, err := tag.Normalize(query)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("tag", normalized).Msg("clan tag lookup")

	resp, err := s.client.GetClan(ctx, normalized)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			s.logger.Debug().Str("tag", normalized).Msg("clan not found")
			return []domain.Clan{}, nil
		}
		return nil, fmt.Errorf("clan lookup failed: %w", err)
	}

	clans := []domain.Clan{toDomainClan(*resp)}
	s.cache(ctx, clans)
	return clans, nil
}

// cache is best effort; a write failure never fails the search.
func (s *ClanService) cache(ctx context.Context, clans []domain.Clan) {
	if len(clans) == 0 {
		return
	}
	if err := s.repo.UpsertBatch(ctx, clans); err != nil {
		s.logger.Warn().Err(err).Int("count", len(clans)).Msg("failed to cache clans")
	}
}
