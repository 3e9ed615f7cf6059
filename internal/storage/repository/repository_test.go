package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
)

// newTestDB opens a migrated throwaway database under t.TempDir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := storage.DefaultConfig(filepath.Join(t.TempDir(), "league_test.db"))
	cfg.AutoMigrate = true

	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return db.Conn()
}

// seedDeck inserts a minimal deck row and returns its ID.
func seedDeck(t *testing.T, db *sql.DB, name string) string {
	t.Helper()

	deck := &models.Deck{
		ID:        uuid.NewString(),
		Name:      name,
		Commander: "Atraxa, Praetors' Voice",
		Colors:    []string{"W", "U", "B", "G"},
		OwnerID:   "user-1",
		OwnerName: "Alice",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := NewDeckRepository(db).Create(context.Background(), deck); err != nil {
		t.Fatalf("failed to seed deck: %v", err)
	}
	return deck.ID
}

// seedPlayer inserts a player row and returns its ID.
func seedPlayer(t *testing.T, db *sql.DB, name string) string {
	t.Helper()

	player := &models.Player{DisplayName: name}
	if err := NewPlayerRepository(db).Create(context.Background(), player); err != nil {
		t.Fatalf("failed to seed player: %v", err)
	}
	return player.ID
}

// seedSeason inserts a season row and returns its ID.
func seedSeason(t *testing.T, db *sql.DB, name string, active bool) string {
	t.Helper()

	season := &models.Season{
		Name:      name,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		IsActive:  active,
	}
	if err := NewSeasonRepository(db).Create(context.Background(), season); err != nil {
		t.Fatalf("failed to seed season: %v", err)
	}
	return season.ID
}
