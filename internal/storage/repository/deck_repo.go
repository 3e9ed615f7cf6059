package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
)

// DeckRepository handles database operations for decks.
type DeckRepository interface {
	// Create inserts a new deck shell. Pricing and versioning happen later
	// through the version repository.
	Create(ctx context.Context, deck *models.Deck) error

	// GetByID retrieves a deck by its ID.
	GetByID(ctx context.Context, id string) (*models.Deck, error)

	// List retrieves all decks.
	List(ctx context.Context) ([]*models.Deck, error)

	// ListBySeason retrieves all decks registered to a season.
	ListBySeason(ctx context.Context, seasonID string) ([]*models.Deck, error)

	// ListByOwner retrieves all decks owned by a user.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Deck, error)
}

// deckRepository is the concrete implementation of DeckRepository.
type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db *sql.DB) DeckRepository {
	return &deckRepository{db: db}
}

const deckColumns = `
	id, name, commander, colors, owner_id, owner_name, season_id, description,
	wins, games, decklist_text, current_version_id, current_price,
	last_price_update, created_at, updated_at
`

// Create inserts a new deck shell.
func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	colorsJSON, err := json.Marshal(deck.Colors)
	if err != nil {
		return fmt.Errorf("failed to encode colors: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO decks (`+deckColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		deck.ID,
		deck.Name,
		deck.Commander,
		string(colorsJSON),
		deck.OwnerID,
		deck.OwnerName,
		deck.SeasonID,
		deck.Description,
		deck.Wins,
		deck.Games,
		deck.DecklistText,
		deck.CurrentVersionID,
		deck.CurrentPrice,
		deck.LastPriceUpdate,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}

	return nil
}

// GetByID retrieves a deck by its ID.
func (r *deckRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+deckColumns+` FROM decks WHERE id = ?`, id)

	deck, err := scanDeck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deck %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return deck, nil
}

// List retrieves all decks ordered by name.
func (r *deckRepository) List(ctx context.Context) ([]*models.Deck, error) {
	return r.list(ctx, `SELECT `+deckColumns+` FROM decks ORDER BY name`)
}

// ListBySeason retrieves all decks registered to a season.
func (r *deckRepository) ListBySeason(ctx context.Context, seasonID string) ([]*models.Deck, error) {
	return r.list(ctx,
		`SELECT `+deckColumns+` FROM decks WHERE season_id = ? ORDER BY name`, seasonID)
}

// ListByOwner retrieves all decks owned by a user.
func (r *deckRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Deck, error) {
	return r.list(ctx,
		`SELECT `+deckColumns+` FROM decks WHERE owner_id = ? ORDER BY name`, ownerID)
}

func (r *deckRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Deck, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*models.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}

	return decks, nil
}

// scanDeck maps one decks row into a model.
func scanDeck(row rowScanner) (*models.Deck, error) {
	var deck models.Deck
	var colorsJSON string

	err := row.Scan(
		&deck.ID,
		&deck.Name,
		&deck.Commander,
		&colorsJSON,
		&deck.OwnerID,
		&deck.OwnerName,
		&deck.SeasonID,
		&deck.Description,
		&deck.Wins,
		&deck.Games,
		&deck.DecklistText,
		&deck.CurrentVersionID,
		&deck.CurrentPrice,
		&deck.LastPriceUpdate,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(colorsJSON), &deck.Colors); err != nil {
		return nil, fmt.Errorf("failed to decode colors: %w", err)
	}

	return &deck, nil
}
