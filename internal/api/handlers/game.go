package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rookenthusiast/mtg-commander-league/internal/api/response"
	"github.com/rookenthusiast/mtg-commander-league/internal/league"
)

// GameHandler handles game-related API requests.
type GameHandler struct {
	games *league.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games *league.GameService) *GameHandler {
	return &GameHandler{games: games}
}

// RecordGame records a completed game and updates standings.
func (h *GameHandler) RecordGame(w http.ResponseWriter, r *http.Request) {
	var req league.RecordGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	game, err := h.games.RecordGame(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, game)
}

// GetGame returns a single game with its participants.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, game)
}

// GetGames returns games newest first, optionally filtered by season.
func (h *GameHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	seasonID := r.URL.Query().Get("seasonId")

	games, err := h.games.ListGames(r.Context(), seasonID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, games)
}
