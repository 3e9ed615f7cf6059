// Package handlers contains the HTTP request handlers for the league API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rookenthusiast/mtg-commander-league/internal/api/middleware"
	"github.com/rookenthusiast/mtg-commander-league/internal/api/response"
	"github.com/rookenthusiast/mtg-commander-league/internal/league"
)

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	decks *league.DeckService
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks *league.DeckService) *DeckHandler {
	return &DeckHandler{decks: decks}
}

// UpdateDeck processes a decklist submission: parse, price, snapshot.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	var req league.UpdateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		req.UserID = identity.UserID
	}

	result, err := h.decks.UpdateDeck(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// GetDecks returns decks, optionally filtered by season or owner.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	seasonID := r.URL.Query().Get("seasonId")
	ownerID := r.URL.Query().Get("ownerId")

	decks, err := h.decks.ListDecks(r.Context(), seasonID, ownerID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, decks)
}

// CreateDeck registers a new deck for the caller.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req league.CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		req.OwnerID = identity.UserID
		req.OwnerName = identity.Name
	}

	deck, err := h.decks.CreateDeck(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, deck)
}

// GetDeck returns a single deck by ID.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	deck, err := h.decks.GetDeck(r.Context(), deckID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, deck)
}

// GetVersions returns a deck's version history, newest first. By default
// only the active version is included; includeAll=true returns the full
// history.
func (h *DeckHandler) GetVersions(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	includeAll := r.URL.Query().Get("includeAll") == "true"

	versions, err := h.decks.ListVersions(r.Context(), deckID, includeAll)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"versions": versions,
		"count":    len(versions),
	})
}

// GetVersion returns one version with its deck summary.
func (h *DeckHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	versionID := chi.URLParam(r, "versionID")

	detail, err := h.decks.GetVersion(r.Context(), deckID, versionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, detail)
}
