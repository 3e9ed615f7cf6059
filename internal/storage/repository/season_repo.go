package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
)

// SeasonRepository handles database operations for seasons and the
// per-season player registrations that carry the standings.
type SeasonRepository interface {
	Create(ctx context.Context, season *models.Season) error
	GetByID(ctx context.Context, id string) (*models.Season, error)
	// GetActive returns the currently active season, or ErrNotFound.
	GetActive(ctx context.Context) (*models.Season, error)
	List(ctx context.Context) ([]*models.Season, error)
	// SetActive marks one season active and deactivates all others.
	SetActive(ctx context.Context, id string) error

	RegisterPlayer(ctx context.Context, reg *models.PlayerSeason) error
	GetPlayerSeason(ctx context.Context, playerID, seasonID string) (*models.PlayerSeason, error)
	// UpdateRegisteredDecks replaces the registered deck list for a player.
	UpdateRegisteredDecks(ctx context.Context, playerID, seasonID string, deckIDs []string) error
	// ListStandings returns a season's registrations ordered by points,
	// wins breaking ties.
	ListStandings(ctx context.Context, seasonID string) ([]*models.PlayerSeason, error)
	DeregisterPlayer(ctx context.Context, playerID, seasonID string) error
}

// seasonRepository is the concrete implementation of SeasonRepository.
type seasonRepository struct {
	db *sql.DB
}

// NewSeasonRepository creates a new season repository.
func NewSeasonRepository(db *sql.DB) SeasonRepository {
	return &seasonRepository{db: db}
}

const seasonColumns = `id, name, start_date, end_date, is_active, description, created_at, updated_at`

func (r *seasonRepository) Create(ctx context.Context, season *models.Season) error {
	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	season.CreatedAt = now
	season.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO seasons (`+seasonColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		season.ID,
		season.Name,
		season.StartDate,
		season.EndDate,
		season.IsActive,
		season.Description,
		season.CreatedAt,
		season.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create season: %w", err)
	}
	return nil
}

func (r *seasonRepository) GetByID(ctx context.Context, id string) (*models.Season, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE id = ?`, id)
	season, err := scanSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return season, nil
}

func (r *seasonRepository) GetActive(ctx context.Context) (*models.Season, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE is_active = 1 LIMIT 1`)
	season, err := scanSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active season: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}
	return season, nil
}

func (r *seasonRepository) List(ctx context.Context) ([]*models.Season, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+seasonColumns+` FROM seasons ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var seasons []*models.Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	return seasons, rows.Err()
}

// SetActive flips the single active-season flag atomically.
func (r *seasonRepository) SetActive(ctx context.Context, id string) error {
	return storage.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `UPDATE seasons SET is_active = 1, updated_at = ? WHERE id = ?`, now, id)
		if err != nil {
			return fmt.Errorf("failed to activate season: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("season %s: %w", id, ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE seasons SET is_active = 0, updated_at = ? WHERE id != ? AND is_active = 1`, now, id); err != nil {
			return fmt.Errorf("failed to deactivate seasons: %w", err)
		}
		return nil
	})
}

func (r *seasonRepository) RegisterPlayer(ctx context.Context, reg *models.PlayerSeason) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reg.RegisteredAt.IsZero() {
		reg.RegisteredAt = now
	}
	reg.CreatedAt = now
	reg.UpdatedAt = now

	deckIDs, err := json.Marshal(reg.RegisteredDeckIDs)
	if err != nil {
		return fmt.Errorf("failed to encode registered decks: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO player_seasons (id, player_id, season_id, display_name, registered_deck_ids,
			points, wins, losses, games_played, registered_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		reg.ID,
		reg.PlayerID,
		reg.SeasonID,
		reg.DisplayName,
		string(deckIDs),
		reg.Points,
		reg.Wins,
		reg.Losses,
		reg.GamesPlayed,
		reg.RegisteredAt,
		reg.CreatedAt,
		reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to register player: %w", err)
	}
	return nil
}

const playerSeasonColumns = `id, player_id, season_id, display_name, registered_deck_ids,
	points, wins, losses, games_played, registered_at, created_at, updated_at`

func (r *seasonRepository) GetPlayerSeason(ctx context.Context, playerID, seasonID string) (*models.PlayerSeason, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+playerSeasonColumns+`
		FROM player_seasons WHERE player_id = ? AND season_id = ?
	`, playerID, seasonID)

	reg, err := scanPlayerSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("registration for player %s in season %s: %w", playerID, seasonID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

func (r *seasonRepository) UpdateRegisteredDecks(ctx context.Context, playerID, seasonID string, deckIDs []string) error {
	encoded, err := json.Marshal(deckIDs)
	if err != nil {
		return fmt.Errorf("failed to encode registered decks: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE player_seasons SET registered_deck_ids = ?, updated_at = ?
		WHERE player_id = ? AND season_id = ?
	`, string(encoded), time.Now().UTC(), playerID, seasonID)
	if err != nil {
		return fmt.Errorf("failed to update registered decks: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("registration for player %s in season %s: %w", playerID, seasonID, ErrNotFound)
	}
	return nil
}

func (r *seasonRepository) ListStandings(ctx context.Context, seasonID string) ([]*models.PlayerSeason, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+playerSeasonColumns+`
		FROM player_seasons
		WHERE season_id = ?
		ORDER BY points DESC, wins DESC, display_name
	`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var standings []*models.PlayerSeason
	for rows.Next() {
		reg, err := scanPlayerSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		standings = append(standings, reg)
	}
	return standings, rows.Err()
}

func (r *seasonRepository) DeregisterPlayer(ctx context.Context, playerID, seasonID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM player_seasons WHERE player_id = ? AND season_id = ?
	`, playerID, seasonID)
	if err != nil {
		return fmt.Errorf("failed to deregister player: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("registration for player %s in season %s: %w", playerID, seasonID, ErrNotFound)
	}
	return nil
}

func scanSeason(row rowScanner) (*models.Season, error) {
	var season models.Season
	err := row.Scan(
		&season.ID,
		&season.Name,
		&season.StartDate,
		&season.EndDate,
		&season.IsActive,
		&season.Description,
		&season.CreatedAt,
		&season.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &season, nil
}

func scanPlayerSeason(row rowScanner) (*models.PlayerSeason, error) {
	var (
		reg     models.PlayerSeason
		deckIDs string
	)
	err := row.Scan(
		&reg.ID,
		&reg.PlayerID,
		&reg.SeasonID,
		&reg.DisplayName,
		&deckIDs,
		&reg.Points,
		&reg.Wins,
		&reg.Losses,
		&reg.GamesPlayed,
		&reg.RegisteredAt,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deckIDs != "" {
		if err := json.Unmarshal([]byte(deckIDs), &reg.RegisteredDeckIDs); err != nil {
			return nil, fmt.Errorf("failed to decode registered decks: %w", err)
		}
	}
	return &reg, nil
}
