// Package models defines the persisted entities of the commander league.
package models

import (
	"time"

	"github.com/rookenthusiast/mtg-commander-league/internal/pricing"
)

// User mirrors an identity-provider account inside the league database.
// The id is the provider's stable user identifier, never generated here.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Player is a league participant.
type Player struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"userId,omitempty"` // Nullable: legacy players without accounts
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Season is a scoring period of the league.
type Season struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	IsActive    bool      `json:"isActive"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlayerSeason is a player's standings row for one season.
type PlayerSeason struct {
	ID                string    `json:"id"`
	PlayerID          string    `json:"playerId"`
	SeasonID          string    `json:"seasonId"`
	DisplayName       string    `json:"displayName"`
	RegisteredDeckIDs []string  `json:"registeredDeckIds"`
	Points            int       `json:"points"`
	Wins              int       `json:"wins"`
	Losses            int       `json:"losses"`
	GamesPlayed       int       `json:"gamesPlayed"`
	RegisteredAt      time.Time `json:"registeredAt"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Deck is a registered deck. The current* fields are a denormalized cache of
// the active DeckVersion, re-derived whenever a new version is created; the
// version record stays the system of record for price.
type Deck struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Commander        string     `json:"commander"`
	Colors           []string   `json:"colors"`
	OwnerID          string     `json:"ownerId"`
	OwnerName        string     `json:"owner"`
	SeasonID         *string    `json:"seasonId,omitempty"`
	Description      string     `json:"description,omitempty"`
	Wins             int        `json:"wins"`
	Games            int        `json:"games"`
	DecklistText     string     `json:"decklistText"`
	CurrentVersionID *string    `json:"currentVersionId,omitempty"`
	CurrentPrice     float64    `json:"currentPrice"`
	LastPriceUpdate  *time.Time `json:"lastPriceUpdate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// DeckVersion is an immutable priced snapshot of a deck's decklist. Only the
// IsActive flag ever changes after creation; at most one version per deck is
// active at a time.
type DeckVersion struct {
	ID            string              `json:"id"`
	DeckID        string              `json:"deckId"`
	VersionNumber int                 `json:"versionNumber"`
	IsActive      bool                `json:"isActive"`
	DeckName      string              `json:"deckName"`
	TotalPrice    float64             `json:"totalPrice"`
	Currency      string              `json:"currency"`
	CardCount     int                 `json:"cardCount"`
	DecklistText  string              `json:"decklistText"`
	Cards         []pricing.CardPrice `json:"cards"`
	CreatedBy     string              `json:"createdBy"`
	Notes         *string             `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`

	// GamesCount is derived from game_players at read time, never stored.
	GamesCount int `json:"gamesCount,omitempty"`
}

// Game is an immutable record of a completed match.
type Game struct {
	ID        string       `json:"id"`
	SeasonID  *string      `json:"seasonId,omitempty"`
	PlayedAt  time.Time    `json:"date"`
	WinnerID  string       `json:"winnerId"`
	TurnCount *int         `json:"turnCount,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	Players   []GamePlayer `json:"players"`
	CreatedAt time.Time    `json:"createdAt"`
}

// GamePlayer is one participant in a game. DeckVersionID pins the exact
// priced snapshot in play; it is a weak reference looked up by equality.
type GamePlayer struct {
	PlayerID      string  `json:"playerId"`
	PlayerName    string  `json:"playerName"`
	DeckID        string  `json:"deckId"`
	DeckName      string  `json:"deckName"`
	DeckVersionID *string `json:"deckVersionId,omitempty"`
	Placement     *int    `json:"placement,omitempty"`
}
