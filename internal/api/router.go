package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rookenthusiast/mtg-commander-league/internal/api/handlers"
	apimw "github.com/rookenthusiast/mtg-commander-league/internal/api/middleware"
	"github.com/rookenthusiast/mtg-commander-league/internal/api/response"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning, no auth)
	s.router.Get("/health", s.healthCheck)

	// API v1 routes, all behind bearer auth
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(apimw.Authenticator(s.jwtSecret))
		r.Use(s.syncIdentity)

		deckHandler := handlers.NewDeckHandler(s.services.Decks)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Post("/", deckHandler.CreateDeck)
			r.Post("/update", deckHandler.UpdateDeck)
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.Get("/{deckID}/versions", deckHandler.GetVersions)
			r.Get("/{deckID}/versions/{versionID}", deckHandler.GetVersion)
		})

		gameHandler := handlers.NewGameHandler(s.services.Games)
		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.GetGames)
			r.Post("/", gameHandler.RecordGame)
			r.Get("/{gameID}", gameHandler.GetGame)
		})

		seasonHandler := handlers.NewSeasonHandler(s.services.Seasons, s.services.Leaderboard)
		r.Route("/seasons", func(r chi.Router) {
			r.Get("/", seasonHandler.GetSeasons)
			r.Get("/active", seasonHandler.GetActiveSeason)
			r.Get("/{seasonID}", seasonHandler.GetSeason)
			r.Get("/{seasonID}/leaderboard", seasonHandler.GetLeaderboard)
			r.Post("/{seasonID}/register", seasonHandler.RegisterPlayer)
			r.Put("/{seasonID}/register", seasonHandler.UpdateRegistration)

			// Admin-only season management
			r.Group(func(r chi.Router) {
				r.Use(apimw.RequireAdmin)
				r.Post("/", seasonHandler.CreateSeason)
				r.Delete("/{seasonID}/players/{playerID}", seasonHandler.DeregisterPlayer)
			})
		})

		playerHandler := handlers.NewPlayerHandler(s.services.Seasons)
		r.Route("/players", func(r chi.Router) {
			r.Get("/", playerHandler.GetPlayers)
			r.Put("/{playerID}", playerHandler.RenamePlayer)
		})

		adminHandler := handlers.NewAdminHandler(s.services.Admin)
		r.Route("/admin", func(r chi.Router) {
			r.Use(apimw.RequireAdmin)
			r.Get("/users", adminHandler.GetUsers)
			r.Post("/users/{userID}/promote", adminHandler.PromoteUser)
			r.Post("/users/{userID}/demote", adminHandler.DemoteUser)
		})
	})
}

// syncIdentity mirrors the token's identity into the database on every
// authenticated request. First sight of an account also provisions its
// player row, so sign-in needs no separate registration call. A failed
// sync is logged and the request carries on; reads should not depend on
// the profile write.
func (s *Server) syncIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := apimw.IdentityFromContext(r.Context()); ok {
			user := &models.User{
				ID:          identity.UserID,
				Email:       identity.Email,
				DisplayName: identity.Name,
				IsAdmin:     identity.IsAdmin,
			}
			if err := s.services.Admin.SyncUser(r.Context(), user); err != nil {
				s.logger.Warn("identity sync failed", "user", identity.UserID, "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "commander-league-api",
	})
}
