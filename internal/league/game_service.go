package league

import (
	"context"
	"log/slog"
	"time"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/repository"
)

// GameService records and retrieves completed games.
type GameService struct {
	games    repository.GameRepository
	versions repository.DeckVersionRepository
	logger   *slog.Logger
}

// NewGameService creates a game service.
func NewGameService(games repository.GameRepository, versions repository.DeckVersionRepository, logger *slog.Logger) *GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameService{games: games, versions: versions, logger: logger}
}

// RecordGameRequest carries one completed match.
type RecordGameRequest struct {
	SeasonID  *string             `json:"seasonId,omitempty"`
	PlayedAt  time.Time           `json:"date"`
	WinnerID  string              `json:"winnerId"`
	TurnCount *int                `json:"turnCount,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	Players   []models.GamePlayer `json:"players"`
}

// RecordGame validates and persists a completed game. Participants may pin
// the deck version they played; pinned versions must exist.
func (s *GameService) RecordGame(ctx context.Context, req RecordGameRequest) (*models.Game, error) {
	if len(req.Players) < 2 {
		return nil, &ValidationError{Field: "players", Message: "a game needs at least two players"}
	}
	if req.WinnerID == "" {
		return nil, &ValidationError{Field: "winnerId", Message: "winner is required"}
	}

	winnerPlayed := false
	for _, p := range req.Players {
		if p.PlayerID == "" {
			return nil, &ValidationError{Field: "players", Message: "every participant needs a player id"}
		}
		if p.PlayerID == req.WinnerID {
			winnerPlayed = true
		}
		if p.DeckVersionID != nil {
			if _, err := s.versions.GetByID(ctx, *p.DeckVersionID); err != nil {
				return nil, wrapStorage("load pinned version", "version", *p.DeckVersionID, err)
			}
		}
	}
	if !winnerPlayed {
		return nil, &ValidationError{Field: "winnerId", Message: "winner must be one of the participants"}
	}

	playedAt := req.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}

	game := &models.Game{
		SeasonID:  req.SeasonID,
		PlayedAt:  playedAt,
		WinnerID:  req.WinnerID,
		TurnCount: req.TurnCount,
		Notes:     req.Notes,
		Players:   req.Players,
	}
	if err := s.games.Record(ctx, game); err != nil {
		return nil, &PersistenceError{Op: "record game", Err: err}
	}

	s.logger.Info("recorded game", "game", game.ID, "players", len(game.Players), "winner", game.WinnerID)
	return game, nil
}

// GetGame retrieves one game with its participants.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, wrapStorage("load game", "game", gameID, err)
	}
	return game, nil
}

// ListGames retrieves games newest first, optionally scoped to a season.
func (s *GameService) ListGames(ctx context.Context, seasonID string) ([]*models.Game, error) {
	games, err := s.games.List(ctx, seasonID)
	if err != nil {
		return nil, &PersistenceError{Op: "list games", Err: err}
	}
	return games, nil
}
