package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clash-hub/internal/constants"
	"clash-hub/internal/domain"

	"github.com/rs/zerolog"
)

type ClanRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewClanRepository(sqlDB *sql.DB, logger zerolog.Logger) *ClanRepository {
	return &ClanRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const clanColumns = `tag, name, type, members, score, war_trophies, required_trophies,
	location_name, country_code, is_country, description, created_at, updated_at`

func (r *ClanRepository) GetByTag(ctx context.Context, tag string) (*domain.Clan, error) {
	var (
		c            domain.Clan
		clanType     string
		locationName string
		countryCode  string
		isCountry    bool
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT `+clanColumns+` FROM clans WHERE tag = ?`, tag).Scan(
		&c.Tag, &c.Name, &clanType, &c.Members, &c.Score, &c.WarTrophies,
		&c.RequiredTrophies, &locationName, &countryCode, &isCountry,
		&c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Type = domain.ClanType(clanType)
	if locationName != "" || countryCode != "" {
		c.Location = &domain.Location{Name: locationName, CountryCode: countryCode, IsCountry: isCountry}
	}
	return &c, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *ClanRepository) upsertOne(ctx context.Context, ex execer, clan domain.Clan) error {
	var locationName, countryCode string
	var isCountry bool
	if clan.Location != nil {
		locationName = clan.Location.Name
		countryCode = clan.Location.CountryCode
		isCountry = clan.Location.IsCountry
	}
	now := time.Now()
	_, err := ex.ExecContext(ctx, `
		INSERT INTO clans (`+clanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tag) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			members = excluded.members,
			score = excluded.score,
			war_trophies = excluded.war_trophies,
			required_trophies = excluded.required_trophies,
			location_name = excluded.location_name,
			country_code = excluded.country_code,
			is_country = excluded.is_country,
			description = excluded.description,
			updated_at = excluded.updated_at`,
		clan.Tag, clan.Name, string(clan.Type), clan.Members, clan.Score,
		clan.WarTrophies, clan.RequiredTrophies, locationName, countryCode,
		isCountry, clan.Description, now, now,
	)
	return err
}

func (r *ClanRepository) Upsert(ctx context.Context, clan domain.Clan) error {
	return r.upsertOne(ctx, r.db, clan)
}

func (r *ClanRepository) UpsertBatch(ctx context.Context, clans []domain.Clan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < len(clans); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(clans) {
			end = len(clans)
		}
		for _, clan := range clans[i:end] {
			if err := r.upsertOne(ctx, tx, clan); err != nil {
				return fmt.Errorf("failed to upsert clan %s: %w", clan.Tag, err)
			}
		}
	}

	return tx.Commit()
}
