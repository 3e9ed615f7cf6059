package league

import (
	"context"
	"log/slog"
	"time"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/repository"
)

// Deck registration bounds per player per season.
const (
	minRegisteredDecks = 1
	maxRegisteredDecks = 3
)

// SeasonService manages seasons and player registrations.
type SeasonService struct {
	seasons repository.SeasonRepository
	players repository.PlayerRepository
	logger  *slog.Logger
}

// NewSeasonService creates a season service.
func NewSeasonService(seasons repository.SeasonRepository, players repository.PlayerRepository, logger *slog.Logger) *SeasonService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeasonService{seasons: seasons, players: players, logger: logger}
}

// CreateSeasonRequest carries a new season.
type CreateSeasonRequest struct {
	Name        string    `json:"name"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Description string    `json:"description,omitempty"`
	Activate    bool      `json:"activate,omitempty"`
}

// CreateSeason creates a season; when Activate is set it becomes the sole
// active season.
func (s *SeasonService) CreateSeason(ctx context.Context, req CreateSeasonRequest) (*models.Season, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "season name is required"}
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, &ValidationError{Field: "endDate", Message: "end date must be after start date"}
	}

	season := &models.Season{
		Name:        req.Name,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
	}
	if err := s.seasons.Create(ctx, season); err != nil {
		return nil, &PersistenceError{Op: "create season", Err: err}
	}

	if req.Activate {
		if err := s.seasons.SetActive(ctx, season.ID); err != nil {
			return nil, wrapStorage("activate season", "season", season.ID, err)
		}
		season.IsActive = true
	}

	s.logger.Info("created season", "season", season.ID, "name", season.Name, "active", season.IsActive)
	return season, nil
}

// GetSeason retrieves one season.
func (s *SeasonService) GetSeason(ctx context.Context, seasonID string) (*models.Season, error) {
	season, err := s.seasons.GetByID(ctx, seasonID)
	if err != nil {
		return nil, wrapStorage("load season", "season", seasonID, err)
	}
	return season, nil
}

// GetActiveSeason retrieves the currently active season.
func (s *SeasonService) GetActiveSeason(ctx context.Context) (*models.Season, error) {
	season, err := s.seasons.GetActive(ctx)
	if err != nil {
		return nil, wrapStorage("load active season", "season", "active", err)
	}
	return season, nil
}

// ListSeasons retrieves all seasons, newest first.
func (s *SeasonService) ListSeasons(ctx context.Context) ([]*models.Season, error) {
	seasons, err := s.seasons.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list seasons", Err: err}
	}
	return seasons, nil
}

// RegisterRequest enrolls a player into a season with their chosen decks.
type RegisterRequest struct {
	SeasonID string   `json:"-"`
	PlayerID string   `json:"playerId"`
	DeckIDs  []string `json:"deckIds"`
}

// RegisterPlayer enrolls a player into a season. A player registers once
// per season with between one and three decks.
func (s *SeasonService) RegisterPlayer(ctx context.Context, req RegisterRequest) (*models.PlayerSeason, error) {
	if req.PlayerID == "" {
		return nil, &ValidationError{Field: "playerId", Message: "player id is required"}
	}
	if len(req.DeckIDs) < minRegisteredDecks || len(req.DeckIDs) > maxRegisteredDecks {
		return nil, &ValidationError{Field: "deckIds", Message: "register between 1 and 3 decks"}
	}

	if _, err := s.seasons.GetByID(ctx, req.SeasonID); err != nil {
		return nil, wrapStorage("load season", "season", req.SeasonID, err)
	}
	player, err := s.players.GetByID(ctx, req.PlayerID)
	if err != nil {
		return nil, wrapStorage("load player", "player", req.PlayerID, err)
	}

	if _, err := s.seasons.GetPlayerSeason(ctx, req.PlayerID, req.SeasonID); err == nil {
		return nil, &ValidationError{Field: "playerId", Message: "player is already registered for this season"}
	}

	reg := &models.PlayerSeason{
		PlayerID:          req.PlayerID,
		SeasonID:          req.SeasonID,
		DisplayName:       player.DisplayName,
		RegisteredDeckIDs: req.DeckIDs,
	}
	if err := s.seasons.RegisterPlayer(ctx, reg); err != nil {
		return nil, &PersistenceError{Op: "register player", Err: err}
	}

	s.logger.Info("registered player", "player", req.PlayerID, "season", req.SeasonID, "decks", len(req.DeckIDs))
	return reg, nil
}

// UpdateRegistration replaces the deck list of an existing registration.
// The one-to-three deck bound applies just as it does at registration.
func (s *SeasonService) UpdateRegistration(ctx context.Context, req RegisterRequest) (*models.PlayerSeason, error) {
	if req.PlayerID == "" {
		return nil, &ValidationError{Field: "playerId", Message: "player id is required"}
	}
	if len(req.DeckIDs) < minRegisteredDecks || len(req.DeckIDs) > maxRegisteredDecks {
		return nil, &ValidationError{Field: "deckIds", Message: "register between 1 and 3 decks"}
	}

	if err := s.seasons.UpdateRegisteredDecks(ctx, req.PlayerID, req.SeasonID, req.DeckIDs); err != nil {
		return nil, wrapStorage("update registration", "registration", req.PlayerID, err)
	}

	reg, err := s.seasons.GetPlayerSeason(ctx, req.PlayerID, req.SeasonID)
	if err != nil {
		return nil, wrapStorage("load registration", "registration", req.PlayerID, err)
	}

	s.logger.Info("updated registration", "player", req.PlayerID, "season", req.SeasonID, "decks", len(req.DeckIDs))
	return reg, nil
}

// ListPlayers retrieves all league participants ordered by name.
func (s *SeasonService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.players.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list players", Err: err}
	}
	return players, nil
}

// RenamePlayer changes a player's display name. Season registrations keep
// the name they were entered under; games already recorded are unaffected.
func (s *SeasonService) RenamePlayer(ctx context.Context, playerID, displayName string) (*models.Player, error) {
	if displayName == "" {
		return nil, &ValidationError{Field: "displayName", Message: "display name is required"}
	}
	if err := s.players.Rename(ctx, playerID, displayName); err != nil {
		return nil, wrapStorage("rename player", "player", playerID, err)
	}
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, wrapStorage("load player", "player", playerID, err)
	}
	return player, nil
}

// DeregisterPlayer removes a player's registration from a season.
func (s *SeasonService) DeregisterPlayer(ctx context.Context, seasonID, playerID string) error {
	if err := s.seasons.DeregisterPlayer(ctx, playerID, seasonID); err != nil {
		return wrapStorage("deregister player", "registration", playerID, err)
	}
	return nil
}
