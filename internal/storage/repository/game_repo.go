package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
)

// Points awarded per game result. A win counts more than showing up, but
// every recorded game moves the standings.
const (
	pointsPerWin  = 3
	pointsPerLoss = 1
)

// GameRepository handles database operations for recorded games.
type GameRepository interface {
	// Record inserts a game with its participants and updates each
	// participant's season standings in one transaction.
	Record(ctx context.Context, game *models.Game) error

	// GetByID retrieves a game with its participants.
	GetByID(ctx context.Context, id string) (*models.Game, error)

	// List retrieves games newest first, optionally filtered by season.
	List(ctx context.Context, seasonID string) ([]*models.Game, error)
}

// gameRepository is the concrete implementation of GameRepository.
type gameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new game repository.
func NewGameRepository(db *sql.DB) GameRepository {
	return &gameRepository{db: db}
}

// Record inserts the game, its participants, and the standings deltas.
func (r *gameRepository) Record(ctx context.Context, game *models.Game) error {
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now().UTC()
	}

	return storage.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO games (id, season_id, played_at, winner_id, turn_count, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			game.ID,
			game.SeasonID,
			game.PlayedAt,
			game.WinnerID,
			game.TurnCount,
			game.Notes,
			game.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}

		for _, p := range game.Players {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO game_players (game_id, player_id, player_name, deck_id, deck_name, deck_version_id, placement)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
				game.ID,
				p.PlayerID,
				p.PlayerName,
				p.DeckID,
				p.DeckName,
				p.DeckVersionID,
				p.Placement,
			); err != nil {
				return fmt.Errorf("failed to insert game player: %w", err)
			}

			if game.SeasonID != nil {
				won := p.PlayerID == game.WinnerID
				if err := bumpStandings(ctx, tx, p.PlayerID, *game.SeasonID, won); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// bumpStandings applies one game's result to a player's season row.
func bumpStandings(ctx context.Context, tx *sql.Tx, playerID, seasonID string, won bool) error {
	wins, losses, points := 0, 1, pointsPerLoss
	if won {
		wins, losses, points = 1, 0, pointsPerWin
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE player_seasons
		SET games_played = games_played + 1,
		    wins = wins + ?,
		    losses = losses + ?,
		    points = points + ?,
		    updated_at = ?
		WHERE player_id = ? AND season_id = ?
	`, wins, losses, points, time.Now().UTC(), playerID, seasonID)
	if err != nil {
		return fmt.Errorf("failed to update standings: %w", err)
	}
	return nil
}

// GetByID retrieves a game with its participants.
func (r *gameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, season_id, played_at, winner_id, turn_count, notes, created_at
		FROM games WHERE id = ?
	`, id)

	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err := r.loadPlayers(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// List retrieves games newest first, optionally filtered by season.
func (r *gameRepository) List(ctx context.Context, seasonID string) ([]*models.Game, error) {
	query := `
		SELECT id, season_id, played_at, winner_id, turn_count, notes, created_at
		FROM games
	`
	var args []interface{}
	if seasonID != "" {
		query += ` WHERE season_id = ?`
		args = append(args, seasonID)
	}
	query += ` ORDER BY played_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}

	for _, game := range games {
		if err := r.loadPlayers(ctx, game); err != nil {
			return nil, err
		}
	}
	return games, nil
}

// loadPlayers attaches participant rows to a game.
func (r *gameRepository) loadPlayers(ctx context.Context, game *models.Game) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT player_id, player_name, deck_id, deck_name, deck_version_id, placement
		FROM game_players
		WHERE game_id = ?
		ORDER BY placement, player_name
	`, game.ID)
	if err != nil {
		return fmt.Errorf("failed to load game players: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var p models.GamePlayer
		if err := rows.Scan(&p.PlayerID, &p.PlayerName, &p.DeckID, &p.DeckName, &p.DeckVersionID, &p.Placement); err != nil {
			return fmt.Errorf("failed to scan game player: %w", err)
		}
		game.Players = append(game.Players, p)
	}
	return rows.Err()
}

// scanGame maps one games row into a model.
func scanGame(row rowScanner) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID,
		&game.SeasonID,
		&game.PlayedAt,
		&game.WinnerID,
		&game.TurnCount,
		&game.Notes,
		&game.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}
