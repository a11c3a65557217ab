package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clash-hub/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const playerColumns = `tag, name, exp_level, trophies, best_trophies, exp_points,
	wins, losses, three_crown_wins, donations, donations_received,
	clan_tag, clan_name, arena_id, arena_name,
	last_fetch_at, created_at, updated_at`

func scanPlayer(row *sql.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.Tag, &p.Name, &p.ExpLevel, &p.Trophies, &p.BestTrophies, &p.ExpPoints,
		&p.Wins, &p.Losses, &p.ThreeCrownWins, &p.Donations, &p.DonationsReceived,
		&p.ClanTag, &p.ClanName, &p.ArenaID, &p.ArenaName,
		&p.LastFetchAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepository) Get(ctx context.Context, tag string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE tag = ?`, tag)
	return scanPlayer(row)
}

func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tag) DO UPDATE SET
			name = excluded.name,
			exp_level = excluded.exp_level,
			trophies = excluded.trophies,
			best_trophies = excluded.best_trophies,
			exp_points = excluded.exp_points,
			wins = excluded.wins,
			losses = excluded.losses,
			three_crown_wins = excluded.three_crown_wins,
			donations = excluded.donations,
			donations_received = excluded.donations_received,
			clan_tag = excluded.clan_tag,
			clan_name = excluded.clan_name,
			arena_id = excluded.arena_id,
			arena_name = excluded.arena_name,
			last_fetch_at = excluded.last_fetch_at,
			updated_at = excluded.updated_at`,
		player.Tag, player.Name, player.ExpLevel, player.Trophies, player.BestTrophies,
		player.ExpPoints, player.Wins, player.Losses, player.ThreeCrownWins,
		player.Donations, player.DonationsReceived, player.ClanTag, player.ClanName,
		player.ArenaID, player.ArenaName, player.LastFetchAt, now, now,
	)
	return err
}

// ShouldRefresh reports whether the cached record is older than ttl. A
// missing record always refreshes.
func (r *PlayerRepository) ShouldRefresh(ctx context.Context, tag string, ttl time.Duration) (bool, error) {
	var lastFetchAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT last_fetch_at FROM players WHERE tag = ?`, tag).Scan(&lastFetchAt)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Str("tag", tag).Msg("player not cached, should refresh")
		return true, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("tag", tag).Msg("failed to read player cache age")
		return false, err
	}

	timeSince := time.Since(lastFetchAt)
	shouldRefresh := timeSince > ttl
	r.logger.Debug().
		Str("tag", tag).
		Time("last_fetch_at", lastFetchAt).
		Dur("time_since", timeSince).
		Dur("ttl", ttl).
		Bool("should_refresh", shouldRefresh).
		Msg("checking if player should refresh")

	return shouldRefresh, nil
}

func (r *PlayerRepository) SetLastFetchAt(ctx context.Context, tag string, lastFetchAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE players SET last_fetch_at = ?, updated_at = ? WHERE tag = ?`,
		lastFetchAt, time.Now(), tag)
	if err != nil {
		r.logger.Error().Err(err).Str("tag", tag).Msg("failed to set last fetch at")
		return err
	}
	return nil
}
