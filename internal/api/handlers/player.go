package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rookenthusiast/mtg-commander-league/internal/api/response"
	"github.com/rookenthusiast/mtg-commander-league/internal/league"
)

// PlayerHandler handles league participant API requests.
type PlayerHandler struct {
	seasons *league.SeasonService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(seasons *league.SeasonService) *PlayerHandler {
	return &PlayerHandler{seasons: seasons}
}

// GetPlayers returns all league participants ordered by name.
func (h *PlayerHandler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.seasons.ListPlayers(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, players)
}

// RenamePlayer changes a player's display name.
func (h *PlayerHandler) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	var req struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	player, err := h.seasons.RenamePlayer(r.Context(), playerID, req.DisplayName)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, player)
}
