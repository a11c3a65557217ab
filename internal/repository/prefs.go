package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// PrefsRepository is the SQLite-backed key/value store behind the
// preference flags. It satisfies prefs.Storage.
type PrefsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPrefsRepository(sqlDB *sql.DB, logger zerolog.Logger) *PrefsRepository {
	return &PrefsRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *PrefsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *PrefsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to persist preference")
		return err
	}
	r.logger.Debug().Str("key", key).Str("value", value).Msg("preference persisted")
	return nil
}
