package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rookenthusiast/mtg-commander-league/internal/pricing"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
)

// CleanupResult reports the outcome of a retention pass over a deck's versions.
type CleanupResult struct {
	Kept    int `json:"kept"`
	Deleted int `json:"deleted"`
}

// DeckVersionRepository handles database operations for deck version snapshots.
type DeckVersionRepository interface {
	// Create persists a new priced snapshot as the deck's active version.
	// Version numbering, sibling deactivation and the deck's cached summary
	// are all applied in one transaction, so readers never observe two
	// active versions or a deck cache that disagrees with its version.
	Create(ctx context.Context, deckID string, data *pricing.DeckPriceData, userID string, notes *string) (*models.DeckVersion, error)

	// GetByID retrieves a version by its ID.
	GetByID(ctx context.Context, id string) (*models.DeckVersion, error)

	// GetActive retrieves the deck's single active version, or nil.
	GetActive(ctx context.Context, deckID string) (*models.DeckVersion, error)

	// List retrieves versions for a deck ordered by version number descending.
	List(ctx context.Context, deckID string, includeInactive bool) ([]*models.DeckVersion, error)

	// CountGameReferences counts game participants pinned to a version.
	CountGameReferences(ctx context.Context, versionID string) (int, error)

	// CleanupOld deletes inactive versions beyond the newest keepRecent,
	// keeping any version referenced by a recorded game.
	CleanupOld(ctx context.Context, deckID string, keepRecent int) (*CleanupResult, error)
}

// deckVersionRepository is the concrete implementation of DeckVersionRepository.
type deckVersionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDeckVersionRepository creates a new deck version repository.
func NewDeckVersionRepository(db *sql.DB, logger *slog.Logger) DeckVersionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &deckVersionRepository{db: db, logger: logger}
}

const versionColumns = `
	id, deck_id, version_number, is_active, deck_name, total_price,
	currency, card_count, decklist_text, cards, created_by, notes, created_at
`

// Create inserts a new active version and updates the deck's cached summary.
//
// The version number is assigned inside the transaction from the current row
// count, so concurrent updates to the same deck serialize on the store's
// single-writer transaction instead of racing on a read-then-write.
func (r *deckVersionRepository) Create(ctx context.Context, deckID string, data *pricing.DeckPriceData, userID string, notes *string) (*models.DeckVersion, error) {
	cardsJSON, err := json.Marshal(data.Cards)
	if err != nil {
		return nil, fmt.Errorf("failed to encode card list: %w", err)
	}

	version := &models.DeckVersion{
		ID:           uuid.NewString(),
		DeckID:       deckID,
		IsActive:     true,
		DeckName:     data.DeckName,
		TotalPrice:   data.TotalPrice,
		Currency:     data.Currency,
		CardCount:    data.CardCount,
		DecklistText: data.DecklistText,
		Cards:        data.Cards,
		CreatedBy:    userID,
		Notes:        notes,
		CreatedAt:    time.Now().UTC(),
	}

	err = storage.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM deck_versions WHERE deck_id = ?`, deckID,
		).Scan(&version.VersionNumber); err != nil {
			return fmt.Errorf("failed to count versions: %w", err)
		}
		version.VersionNumber++

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO deck_versions (`+versionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			version.ID,
			version.DeckID,
			version.VersionNumber,
			version.IsActive,
			version.DeckName,
			version.TotalPrice,
			version.Currency,
			version.CardCount,
			version.DecklistText,
			string(cardsJSON),
			version.CreatedBy,
			version.Notes,
			version.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert version: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE deck_versions SET is_active = 0 WHERE deck_id = ? AND id != ?
		`, deckID, version.ID); err != nil {
			return fmt.Errorf("failed to deactivate previous versions: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE decks
			SET current_version_id = ?, current_price = ?, last_price_update = ?,
			    decklist_text = ?, updated_at = ?
			WHERE id = ?
		`,
			version.ID,
			version.TotalPrice,
			version.CreatedAt,
			version.DecklistText,
			version.CreatedAt,
			deckID,
		)
		if err != nil {
			return fmt.Errorf("failed to update deck summary: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("deck %s: %w", deckID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("created deck version",
		"deck", deckID, "version", version.VersionNumber, "totalPrice", version.TotalPrice)

	return version, nil
}

// GetByID retrieves a version by its ID.
func (r *deckVersionRepository) GetByID(ctx context.Context, id string) (*models.DeckVersion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM deck_versions WHERE id = ?`, id)

	version, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// GetActive retrieves the deck's active version, or nil when none exists.
func (r *deckVersionRepository) GetActive(ctx context.Context, deckID string) (*models.DeckVersion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+versionColumns+` FROM deck_versions
		WHERE deck_id = ? AND is_active = 1
		LIMIT 1
	`, deckID)

	version, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active version: %w", err)
	}
	return version, nil
}

// List retrieves versions for a deck, newest first.
func (r *deckVersionRepository) List(ctx context.Context, deckID string, includeInactive bool) ([]*models.DeckVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM deck_versions WHERE deck_id = ?`
	if !includeInactive {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY version_number DESC`

	rows, err := r.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []*models.DeckVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate versions: %w", err)
	}

	return versions, nil
}

// CountGameReferences counts game participants pinned to a version.
func (r *deckVersionRepository) CountGameReferences(ctx context.Context, versionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_players WHERE deck_version_id = ?`, versionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count game references: %w", err)
	}
	return count, nil
}

// CleanupOld prunes a deck's version history down to the newest keepRecent
// snapshots. Versions referenced by any recorded game are never deleted, no
// matter their age; the active version is never deleted either.
func (r *deckVersionRepository) CleanupOld(ctx context.Context, deckID string, keepRecent int) (*CleanupResult, error) {
	versions, err := r.List(ctx, deckID, true)
	if err != nil {
		return nil, err
	}

	if len(versions) <= keepRecent {
		return &CleanupResult{Kept: len(versions)}, nil
	}

	older := versions[keepRecent:]
	var toDelete []string

	for _, version := range older {
		refs, err := r.CountGameReferences(ctx, version.ID)
		if err != nil {
			return nil, err
		}
		if refs > 0 {
			r.logger.Info("keeping version referenced by games",
				"deck", deckID, "version", version.VersionNumber, "games", refs)
			continue
		}
		if version.IsActive {
			continue
		}
		toDelete = append(toDelete, version.ID)
	}

	if len(toDelete) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(toDelete)), ", ")
		args := make([]interface{}, len(toDelete))
		for i, id := range toDelete {
			args[i] = id
		}

		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM deck_versions WHERE is_active = 0 AND id IN (`+placeholders+`)`, args...,
		); err != nil {
			return nil, fmt.Errorf("failed to delete old versions: %w", err)
		}

		r.logger.Info("deleted old versions", "deck", deckID, "deleted", len(toDelete))
	}

	return &CleanupResult{
		Kept:    len(versions) - len(toDelete),
		Deleted: len(toDelete),
	}, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanVersion maps one deck_versions row into a model.
func scanVersion(row rowScanner) (*models.DeckVersion, error) {
	var version models.DeckVersion
	var cardsJSON string

	err := row.Scan(
		&version.ID,
		&version.DeckID,
		&version.VersionNumber,
		&version.IsActive,
		&version.DeckName,
		&version.TotalPrice,
		&version.Currency,
		&version.CardCount,
		&version.DecklistText,
		&cardsJSON,
		&version.CreatedBy,
		&version.Notes,
		&version.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(cardsJSON), &version.Cards); err != nil {
		return nil, fmt.Errorf("failed to decode card list: %w", err)
	}

	return &version, nil
}
