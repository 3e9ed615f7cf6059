package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
)

func TestSeasonRepository_SetActive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSeasonRepository(db)

	first := seedSeason(t, db, "Spring", true)
	second := seedSeason(t, db, "Summer", false)

	if err := repo.SetActive(ctx, second); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	active, err := repo.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if active.ID != second {
		t.Errorf("active season = %s, want %s", active.ID, second)
	}

	old, err := repo.GetByID(ctx, first)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if old.IsActive {
		t.Error("previous season should have been deactivated")
	}

	if err := repo.SetActive(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSeasonRepository_GetActiveNone(t *testing.T) {
	db := newTestDB(t)

	_, err := NewSeasonRepository(db).GetActive(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetActive() error = %v, want ErrNotFound", err)
	}
}

func TestSeasonRepository_Registration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSeasonRepository(db)

	seasonID := seedSeason(t, db, "Season 1", true)
	playerID := seedPlayer(t, db, "Alice")

	reg := &models.PlayerSeason{
		PlayerID:          playerID,
		SeasonID:          seasonID,
		DisplayName:       "Alice",
		RegisteredDeckIDs: []string{"deck-1", "deck-2"},
	}
	if err := repo.RegisterPlayer(ctx, reg); err != nil {
		t.Fatalf("RegisterPlayer() error = %v", err)
	}

	// A player registers once per season.
	dup := &models.PlayerSeason{PlayerID: playerID, SeasonID: seasonID, DisplayName: "Alice"}
	if err := repo.RegisterPlayer(ctx, dup); err == nil {
		t.Error("duplicate registration should fail")
	}

	got, err := repo.GetPlayerSeason(ctx, playerID, seasonID)
	if err != nil {
		t.Fatalf("GetPlayerSeason() error = %v", err)
	}
	if len(got.RegisteredDeckIDs) != 2 {
		t.Errorf("got %d registered decks, want 2", len(got.RegisteredDeckIDs))
	}

	if err := repo.UpdateRegisteredDecks(ctx, playerID, seasonID, []string{"deck-3"}); err != nil {
		t.Fatalf("UpdateRegisteredDecks() error = %v", err)
	}
	got, err = repo.GetPlayerSeason(ctx, playerID, seasonID)
	if err != nil {
		t.Fatalf("GetPlayerSeason() error = %v", err)
	}
	if len(got.RegisteredDeckIDs) != 1 || got.RegisteredDeckIDs[0] != "deck-3" {
		t.Errorf("registered decks = %v, want [deck-3]", got.RegisteredDeckIDs)
	}

	if err := repo.DeregisterPlayer(ctx, playerID, seasonID); err != nil {
		t.Fatalf("DeregisterPlayer() error = %v", err)
	}
	if _, err := repo.GetPlayerSeason(ctx, playerID, seasonID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPlayerSeason() after deregister error = %v, want ErrNotFound", err)
	}
	if err := repo.DeregisterPlayer(ctx, playerID, seasonID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeregisterPlayer() twice error = %v, want ErrNotFound", err)
	}
}

func TestSeasonRepository_ListStandingsOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSeasonRepository(db)

	seasonID := seedSeason(t, db, "Season 1", true)

	register := func(name string, points, wins int) {
		playerID := seedPlayer(t, db, name)
		reg := &models.PlayerSeason{
			PlayerID:    playerID,
			SeasonID:    seasonID,
			DisplayName: name,
			Points:      points,
			Wins:        wins,
		}
		if err := repo.RegisterPlayer(ctx, reg); err != nil {
			t.Fatalf("RegisterPlayer(%s) error = %v", name, err)
		}
	}

	register("Alice", 9, 3)
	register("Bob", 12, 4)
	register("Cara", 9, 2)

	standings, err := repo.ListStandings(ctx, seasonID)
	if err != nil {
		t.Fatalf("ListStandings() error = %v", err)
	}

	want := []string{"Bob", "Alice", "Cara"}
	if len(standings) != len(want) {
		t.Fatalf("got %d rows, want %d", len(standings), len(want))
	}
	for i, name := range want {
		if standings[i].DisplayName != name {
			t.Errorf("standings[%d] = %s, want %s", i, standings[i].DisplayName, name)
		}
	}
}
