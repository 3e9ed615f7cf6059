package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rookenthusiast/mtg-commander-league/internal/api/response"
	"github.com/rookenthusiast/mtg-commander-league/internal/league"
)

// SeasonHandler handles season and leaderboard API requests.
type SeasonHandler struct {
	seasons     *league.SeasonService
	leaderboard *league.LeaderboardService
}

// NewSeasonHandler creates a new SeasonHandler.
func NewSeasonHandler(seasons *league.SeasonService, leaderboard *league.LeaderboardService) *SeasonHandler {
	return &SeasonHandler{seasons: seasons, leaderboard: leaderboard}
}

// GetSeasons returns all seasons, newest first.
func (h *SeasonHandler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.seasons.ListSeasons(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, seasons)
}

// GetActiveSeason returns the currently active season.
func (h *SeasonHandler) GetActiveSeason(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasons.GetActiveSeason(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, season)
}

// GetSeason returns a single season by ID.
func (h *SeasonHandler) GetSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")

	season, err := h.seasons.GetSeason(r.Context(), seasonID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, season)
}

// CreateSeason creates a new season. Admin only.
func (h *SeasonHandler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	var req league.CreateSeasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	season, err := h.seasons.CreateSeason(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, season)
}

// RegisterPlayer enrolls a player into a season with their decks.
func (h *SeasonHandler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req league.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	req.SeasonID = chi.URLParam(r, "seasonID")

	reg, err := h.seasons.RegisterPlayer(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, reg)
}

// UpdateRegistration replaces the decks on an existing registration.
func (h *SeasonHandler) UpdateRegistration(w http.ResponseWriter, r *http.Request) {
	var req league.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	req.SeasonID = chi.URLParam(r, "seasonID")

	reg, err := h.seasons.UpdateRegistration(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, reg)
}

// DeregisterPlayer removes a player's season registration. Admin only.
func (h *SeasonHandler) DeregisterPlayer(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	playerID := chi.URLParam(r, "playerID")

	if err := h.seasons.DeregisterPlayer(r.Context(), seasonID, playerID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// GetLeaderboard returns a season's ranked standings.
func (h *SeasonHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	sortBy := league.LeaderboardSort(r.URL.Query().Get("sortBy"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.BadRequest(w, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboard.Standings(r.Context(), seasonID, sortBy, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, entries)
}
