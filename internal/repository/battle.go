package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"clash-hub/internal/constants"
	"clash-hub/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type BattleRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewBattleRepository(sqlDB *sql.DB, logger zerolog.Logger) *BattleRepository {
	return &BattleRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Team rosters are stored as JSON blobs; the battle log is read back
// whole, never queried by member.
func (r *BattleRepository) GetByPlayer(ctx context.Context, playerTag string) ([]domain.Battle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT battle_time, game_mode, arena, team, opponent
		FROM battles
		WHERE player_tag = ?
		ORDER BY battle_time DESC`, playerTag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var battles []domain.Battle
	for rows.Next() {
		var b domain.Battle
		var teamJSON, opponentJSON []byte
		if err := rows.Scan(&b.BattleTime, &b.GameMode, &b.Arena, &teamJSON, &opponentJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(teamJSON, &b.Team); err != nil {
			return nil, fmt.Errorf("failed to decode team roster: %w", err)
		}
		if err := json.Unmarshal(opponentJSON, &b.Opponent); err != nil {
			return nil, fmt.Errorf("failed to decode opponent roster: %w", err)
		}
		battles = append(battles, b)
	}
	return battles, rows.Err()
}

func (r *BattleRepository) UpsertBatch(ctx context.Context, playerTag string, battles []domain.Battle) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for i := 0; i < len(battles); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(battles) {
			end = len(battles)
		}
		for _, b := range battles[i:end] {
			teamJSON, err := json.Marshal(b.Team)
			if err != nil {
				return fmt.Errorf("failed to encode team roster: %w", err)
			}
			opponentJSON, err := json.Marshal(b.Opponent)
			if err != nil {
				return fmt.Errorf("failed to encode opponent roster: %w", err)
			}

			id, err := gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate battle id: %w", err)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO battles (id, player_tag, battle_time, game_mode, arena, team, opponent, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (player_tag, battle_time) DO UPDATE SET
					game_mode = excluded.game_mode,
					arena = excluded.arena,
					team = excluded.team,
					opponent = excluded.opponent,
					updated_at = excluded.updated_at`,
				id, playerTag, b.BattleTime, b.GameMode, b.Arena, teamJSON, opponentJSON, now, now,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert battle %s/%s: %w", playerTag, b.BattleTime, err)
			}
		}
	}

	return tx.Commit()
}
