// Package store commits replayed games to PostgreSQL: one row per
// game in game_stats, its debug log, resolved player/team names, and
// a season-completion marker, all four landing together in a single
// transaction so a game is never visible half-committed.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fieldnotes/boxscore/internal/boxscore"
	"github.com/fieldnotes/boxscore/internal/replay/debuglog"
)

// Store wraps a *sql.DB opened against the "pgx" driver with the
// commit-store's raw-SQL operations.
type Store struct {
	db *sql.DB
}

// New wraps an already-connected database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL via the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping store: %w", err)
	}
	return New(db), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// HasGame reports whether gameID already has a committed box score.
func (s *Store) HasGame(ctx context.Context, gameID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM game_stats WHERE game_id = $1)`, gameID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check game %s: %w", gameID, err)
	}
	return exists, nil
}

// GetGame retrieves a committed box score, or sql.ErrNoRows if absent.
func (s *Store) GetGame(ctx context.Context, gameID uuid.UUID) (*boxscore.Game, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT box_score FROM game_stats WHERE game_id = $1`, gameID).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", gameID, err)
	}

	var game boxscore.Game
	if err := json.Unmarshal(raw, &game); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", gameID, err)
	}
	return &game, nil
}

// CommitGame atomically writes the game record, its full debug log,
// every name in names, and the season marker in one transaction. All
// four land together or none do.
func (s *Store) CommitGame(ctx context.Context, game *boxscore.Game, log *debuglog.Log, names map[uuid.UUID]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit for game %s: %w", game.GameID, err)
	}
	defer tx.Rollback()

	boxJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", game.GameID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO game_stats (game_id, sim, season, day, kind, box_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id) DO UPDATE SET
			sim = EXCLUDED.sim, season = EXCLUDED.season, day = EXCLUDED.day,
			kind = EXCLUDED.kind, box_score = EXCLUDED.box_score, committed_at = now()
	`, game.GameID, game.Sim, game.Season, game.Day, int(game.Kind), boxJSON)
	if err != nil {
		return fmt.Errorf("insert game_stats for %s: %w", game.GameID, err)
	}

	if err := s.writeDebugLog(ctx, tx, game.GameID, log); err != nil {
		return err
	}

	if err := s.writeNames(ctx, tx, names); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recorded_seasons (sim, season, last_day_recorded)
		VALUES ($1, $2, $3)
		ON CONFLICT (sim, season) DO UPDATE SET
			last_day_recorded = GREATEST(recorded_seasons.last_day_recorded, EXCLUDED.last_day_recorded),
			updated_at = now()
	`, game.Sim, game.Season, game.Day)
	if err != nil {
		return fmt.Errorf("mark season recorded for %s/%d: %w", game.Sim, game.Season, err)
	}

	return tx.Commit()
}

// CommitFailure persists only the debug log and the terminating error
// for a game that could not be replayed to completion.
func (s *Store) CommitFailure(ctx context.Context, gameID uuid.UUID, log *debuglog.Log) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin failure commit for game %s: %w", gameID, err)
	}
	defer tx.Rollback()

	if err := s.writeDebugLog(ctx, tx, gameID, log); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) writeDebugLog(ctx context.Context, tx *sql.Tx, gameID uuid.UUID, log *debuglog.Log) error {
	for i, entry := range log.Entries {
		var diffJSON []byte
		if entry.Patch != nil {
			marshaled, err := json.Marshal(entry.Patch)
			if err != nil {
				return fmt.Errorf("marshal debug entry %d for %s: %w", i, gameID, err)
			}
			diffJSON = marshaled
		}

		var errVal sql.NullString
		if entry.Error != "" {
			errVal = sql.NullString{String: entry.Error, Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO debug_log (game_id, sequence, description, json_diff, error)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (game_id, sequence) DO UPDATE SET
				description = EXCLUDED.description, json_diff = EXCLUDED.json_diff, error = EXCLUDED.error
		`, gameID, i, entry.Description, nullJSON(diffJSON), errVal)
		if err != nil {
			return fmt.Errorf("insert debug_log entry %d for %s: %w", i, gameID, err)
		}
	}
	return nil
}

func (s *Store) writeNames(ctx context.Context, tx *sql.Tx, names map[uuid.UUID]string) error {
	for id, name := range names {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO names (player_id, name)
			VALUES ($1, $2)
			ON CONFLICT (player_id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		`, id, name)
		if err != nil {
			return fmt.Errorf("insert name for %s: %w", id, err)
		}
	}
	return nil
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
