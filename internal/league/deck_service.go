package league

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rookenthusiast/mtg-commander-league/internal/decklist"
	"github.com/rookenthusiast/mtg-commander-league/internal/pricing"
	"github.com/rookenthusiast/mtg-commander-league/internal/scryfall"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/repository"
)

// keepRecentVersions is how many snapshots retention leaves per deck,
// on top of any version pinned by a recorded game.
const keepRecentVersions = 5

// DeckPricer computes the priced snapshot for a decklist.
type DeckPricer interface {
	CalculateDeckPrice(ctx context.Context, deckName, decklistText string, entries []pricing.Entry) (*pricing.DeckPriceData, error)
}

// UpdateDeckRequest carries one decklist submission.
type UpdateDeckRequest struct {
	DeckID       string  `json:"deckId"`
	DecklistText string  `json:"decklistText"`
	DeckName     string  `json:"deckName,omitempty"`
	Commander    string  `json:"commander,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Force        bool    `json:"forceUpdate,omitempty"`

	// UserID comes from the auth token, never the request body.
	UserID string `json:"-"`
}

// UpdateDeckResult is the outcome of a decklist submission.
type UpdateDeckResult struct {
	Updated         bool                `json:"updated"`
	DeckID          string              `json:"deckId"`
	Version         *models.DeckVersion `json:"version,omitempty"`
	CurrentVersion  *models.DeckVersion `json:"currentVersion,omitempty"`
	PriceDifference *float64            `json:"priceDifference,omitempty"`
	Message         string              `json:"message"`
}

// DeckService orchestrates deck management: parsing submissions, pricing
// them, and recording versions.
type DeckService struct {
	decks    repository.DeckRepository
	versions repository.DeckVersionRepository
	pricer   DeckPricer
	logger   *slog.Logger
}

// NewDeckService creates a deck service.
func NewDeckService(decks repository.DeckRepository, versions repository.DeckVersionRepository, pricer DeckPricer, logger *slog.Logger) *DeckService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckService{decks: decks, versions: versions, pricer: pricer, logger: logger}
}

// UpdateDeck processes a decklist submission end to end: validate, parse,
// short-circuit unchanged lists, price, snapshot, prune.
//
// When the submitted text is byte-identical to the active version's stored
// text and Force is unset, no catalog request is made and no version is
// created.
func (s *DeckService) UpdateDeck(ctx context.Context, req UpdateDeckRequest) (*UpdateDeckResult, error) {
	if req.DeckID == "" {
		return nil, &ValidationError{Field: "deckId", Message: "deck id is required"}
	}
	if req.DecklistText == "" {
		return nil, &ValidationError{Field: "decklistText", Message: "decklist text is required"}
	}

	parsed := decklist.Parse(req.DecklistText)
	if err := decklist.Validate(parsed); err != nil {
		return nil, &ValidationError{Field: "decklistText", Message: err.Error()}
	}

	active, err := s.versions.GetActive(ctx, req.DeckID)
	if err != nil {
		return nil, &PersistenceError{Op: "load active version", Err: err}
	}

	if active != nil && !req.Force && active.DecklistText == req.DecklistText {
		return &UpdateDeckResult{
			Updated:        false,
			DeckID:         req.DeckID,
			CurrentVersion: active,
			Message:        "Decklist unchanged, no new version created",
		}, nil
	}

	deckName := req.DeckName
	if deckName == "" {
		deckName = decklist.ExtractDeckName(req.DecklistText)
	}

	entries := make([]pricing.Entry, 0, len(parsed.Cards))
	for _, card := range parsed.Cards {
		entries = append(entries, pricing.Entry{
			Name:     card.Name,
			Quantity: card.Quantity,
			IsFoil:   card.IsFoil,
		})
	}

	priceData, err := s.pricer.CalculateDeckPrice(ctx, deckName, req.DecklistText, entries)
	if err != nil {
		if errors.Is(err, scryfall.ErrRateLimited) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "price decklist", Err: err}
	}

	version, err := s.versions.Create(ctx, req.DeckID, priceData, req.UserID, req.Notes)
	if err != nil {
		return nil, wrapStorage("create version", "deck", req.DeckID, err)
	}

	// Retention is best-effort: a failed prune never fails the update.
	if _, err := s.versions.CleanupOld(ctx, req.DeckID, keepRecentVersions); err != nil {
		s.logger.Warn("version cleanup failed", "deck", req.DeckID, "error", err)
	}

	result := &UpdateDeckResult{
		Updated: true,
		DeckID:  req.DeckID,
		Version: version,
	}

	if active != nil {
		diff := math.Round((version.TotalPrice-active.TotalPrice)*100) / 100
		result.PriceDifference = &diff
		switch {
		case diff > 0:
			result.Message = fmt.Sprintf("Deck updated, price increased by %.2f %s", diff, version.Currency)
		case diff < 0:
			result.Message = fmt.Sprintf("Deck updated, price decreased by %.2f %s", -diff, version.Currency)
		default:
			result.Message = "Deck updated, price unchanged"
		}
	} else {
		result.Message = fmt.Sprintf("Deck priced at %.2f %s", version.TotalPrice, version.Currency)
	}

	return result, nil
}

// CreateDeckRequest carries a new deck registration.
type CreateDeckRequest struct {
	Name         string  `json:"name"`
	Commander    string  `json:"commander,omitempty"`
	DecklistText string  `json:"decklistText,omitempty"`
	SeasonID     *string `json:"seasonId,omitempty"`
	Description  string  `json:"description,omitempty"`

	OwnerID   string `json:"-"`
	OwnerName string `json:"-"`
}

// CreateDeck registers a deck shell. When decklist text is supplied the
// commander and colors are derived from it; pricing happens on the first
// UpdateDeck call.
func (s *DeckService) CreateDeck(ctx context.Context, req CreateDeckRequest) (*models.Deck, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "deck name is required"}
	}
	if req.OwnerID == "" {
		return nil, &ValidationError{Field: "ownerId", Message: "owner is required"}
	}

	commander := req.Commander
	var colors []string
	if req.DecklistText != "" {
		parsed := decklist.Parse(req.DecklistText)
		if commander == "" {
			commander = decklist.CommanderName(parsed)
		}
		names := make([]string, 0, len(parsed.Cards))
		for _, card := range parsed.Cards {
			names = append(names, card.Name)
		}
		colors = decklist.DetectColors(names)
	}

	now := time.Now().UTC()
	deck := &models.Deck{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Commander:    commander,
		Colors:       colors,
		OwnerID:      req.OwnerID,
		OwnerName:    req.OwnerName,
		SeasonID:     req.SeasonID,
		Description:  req.Description,
		DecklistText: req.DecklistText,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, &PersistenceError{Op: "create deck", Err: err}
	}
	return deck, nil
}

// GetDeck retrieves one deck.
func (s *DeckService) GetDeck(ctx context.Context, deckID string) (*models.Deck, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, wrapStorage("load deck", "deck", deckID, err)
	}
	return deck, nil
}

// ListDecks retrieves decks, optionally scoped to a season or owner.
func (s *DeckService) ListDecks(ctx context.Context, seasonID, ownerID string) ([]*models.Deck, error) {
	var (
		decks []*models.Deck
		err   error
	)
	switch {
	case seasonID != "":
		decks, err = s.decks.ListBySeason(ctx, seasonID)
	case ownerID != "":
		decks, err = s.decks.ListByOwner(ctx, ownerID)
	default:
		decks, err = s.decks.List(ctx)
	}
	if err != nil {
		return nil, &PersistenceError{Op: "list decks", Err: err}
	}
	return decks, nil
}

// ListVersions retrieves a deck's version history, newest first, each
// annotated with the number of recorded games pinned to it.
func (s *DeckService) ListVersions(ctx context.Context, deckID string, includeInactive bool) ([]*models.DeckVersion, error) {
	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		return nil, wrapStorage("load deck", "deck", deckID, err)
	}

	versions, err := s.versions.List(ctx, deckID, includeInactive)
	if err != nil {
		return nil, &PersistenceError{Op: "list versions", Err: err}
	}
	for _, version := range versions {
		count, err := s.versions.CountGameReferences(ctx, version.ID)
		if err != nil {
			return nil, &PersistenceError{Op: "count game references", Err: err}
		}
		version.GamesCount = count
	}
	return versions, nil
}

// VersionDetail is a version joined with its deck's summary.
type VersionDetail struct {
	Version *models.DeckVersion `json:"version"`
	Deck    DeckSummary         `json:"deck"`
}

// DeckSummary is the deck context returned alongside a version.
type DeckSummary struct {
	Name         string `json:"name"`
	DecklistText string `json:"decklistText"`
	Format       string `json:"format"`
}

// GetVersion retrieves one version and its deck summary. The version must
// belong to the given deck.
func (s *DeckService) GetVersion(ctx context.Context, deckID, versionID string) (*VersionDetail, error) {
	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, wrapStorage("load version", "version", versionID, err)
	}
	if version.DeckID != deckID {
		return nil, &ValidationError{Field: "versionId", Message: "version does not belong to this deck"}
	}

	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, wrapStorage("load deck", "deck", deckID, err)
	}

	count, err := s.versions.CountGameReferences(ctx, version.ID)
	if err != nil {
		return nil, &PersistenceError{Op: "count game references", Err: err}
	}
	version.GamesCount = count

	return &VersionDetail{
		Version: version,
		Deck: DeckSummary{
			Name:         deck.Name,
			DecklistText: deck.DecklistText,
			Format:       "commander",
		},
	}, nil
}
