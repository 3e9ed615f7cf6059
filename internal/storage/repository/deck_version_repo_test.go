package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rookenthusiast/mtg-commander-league/internal/pricing"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
)

func priceData(name string, total float64) *pricing.DeckPriceData {
	return &pricing.DeckPriceData{
		DeckName:   name,
		TotalPrice: total,
		Currency:   pricing.Currency,
		CardCount:  2,
		Cards: []pricing.CardPrice{
			{Name: "Sol Ring", Quantity: 1, UnitPrice: total / 2, LineTotal: total / 2, SetCode: "c21"},
			{Name: "Arcane Signet", Quantity: 1, UnitPrice: total / 2, LineTotal: total / 2, SetCode: "c21"},
		},
		DecklistText: fmt.Sprintf("1 Sol Ring\n1 Arcane Signet // %.2f", total),
	}
}

func TestDeckVersionRepository_Create(t *testing.T) {
	db := newTestDB(t)
	deckID := seedDeck(t, db, "Atraxa Superfriends")
	repo := NewDeckVersionRepository(db, nil)
	ctx := context.Background()

	first, err := repo.Create(ctx, deckID, priceData("Atraxa Superfriends", 10.00), "user-1", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.VersionNumber != 1 {
		t.Errorf("first version number = %d, want 1", first.VersionNumber)
	}
	if !first.IsActive {
		t.Error("first version should be active")
	}

	second, err := repo.Create(ctx, deckID, priceData("Atraxa Superfriends", 12.50), "user-1", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if second.VersionNumber != 2 {
		t.Errorf("second version number = %d, want 2", second.VersionNumber)
	}

	// The previous version must have been deactivated in the same step.
	versions, err := repo.List(ctx, deckID, true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(versions))
	}

	activeCount := 0
	for _, v := range versions {
		if v.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("got %d active versions, want exactly 1", activeCount)
	}

	active, err := repo.GetActive(ctx, deckID)
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if active == nil || active.ID != second.ID {
		t.Errorf("active version = %+v, want version %s", active, second.ID)
	}
}

func TestDeckVersionRepository_CreateUpdatesDeckCache(t *testing.T) {
	db := newTestDB(t)
	deckID := seedDeck(t, db, "Krenko Goblins")
	repo := NewDeckVersionRepository(db, nil)
	deckRepo := NewDeckRepository(db)
	ctx := context.Background()

	version, err := repo.Create(ctx, deckID, priceData("Krenko Goblins", 42.10), "user-1", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deck, err := deckRepo.GetByID(ctx, deckID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if deck.CurrentVersionID == nil || *deck.CurrentVersionID != version.ID {
		t.Errorf("deck cache current version = %v, want %s", deck.CurrentVersionID, version.ID)
	}
	if deck.CurrentPrice != 42.10 {
		t.Errorf("deck cache price = %.2f, want 42.10", deck.CurrentPrice)
	}
	if deck.DecklistText != version.DecklistText {
		t.Errorf("deck cache decklist = %q, want %q", deck.DecklistText, version.DecklistText)
	}
}

func TestDeckVersionRepository_CreateUnknownDeck(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeckVersionRepository(db, nil)

	_, err := repo.Create(context.Background(), "no-such-deck", priceData("Ghost", 1.00), "user-1", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestDeckVersionRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	deckID := seedDeck(t, db, "Meren Reanimator")
	repo := NewDeckVersionRepository(db, nil)
	ctx := context.Background()

	notes := "swapped in a better tutor"
	created, err := repo.Create(ctx, deckID, priceData("Meren Reanimator", 77.77), "user-1", &notes)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.TotalPrice != 77.77 {
		t.Errorf("total price = %.2f, want 77.77", got.TotalPrice)
	}
	if got.Notes == nil || *got.Notes != notes {
		t.Errorf("notes = %v, want %q", got.Notes, notes)
	}
	if len(got.Cards) != 2 {
		t.Errorf("got %d cards, want 2", len(got.Cards))
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeckVersionRepository_ListFiltersInactive(t *testing.T) {
	db := newTestDB(t)
	deckID := seedDeck(t, db, "Yuriko Ninjas")
	repo := NewDeckVersionRepository(db, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, deckID, priceData("Yuriko Ninjas", float64(i+1)), "user-1", nil); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	activeOnly, err := repo.List(ctx, deckID, false)
	if err != nil {
		t.Fatalf("List(active) error = %v", err)
	}
	if len(activeOnly) != 1 {
		t.Fatalf("got %d active versions, want 1", len(activeOnly))
	}
	if activeOnly[0].VersionNumber != 3 {
		t.Errorf("active version number = %d, want 3", activeOnly[0].VersionNumber)
	}

	all, err := repo.List(ctx, deckID, true)
	if err != nil {
		t.Fatalf("List(all) error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d versions, want 3", len(all))
	}
	// Newest first.
	for i, want := range []int{3, 2, 1} {
		if all[i].VersionNumber != want {
			t.Errorf("versions[%d] = %d, want %d", i, all[i].VersionNumber, want)
		}
	}
}

func TestDeckVersionRepository_CleanupOld(t *testing.T) {
	db := newTestDB(t)
	deckID := seedDeck(t, db, "Tatyova Landfall")
	repo := NewDeckVersionRepository(db, nil)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := repo.Create(ctx, deckID, priceData("Tatyova Landfall", float64(i+1)), "user-1", nil); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	result, err := repo.CleanupOld(ctx, deckID, 5)
	if err != nil {
		t.Fatalf("CleanupOld() error = %v", err)
	}
	if result.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", result.Deleted)
	}
	if result.Kept != 5 {
		t.Errorf("kept = %d, want 5", result.Kept)
	}

	remaining, err := repo.List(ctx, deckID, true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(remaining) != 5 {
		t.Fatalf("got %d versions after cleanup, want 5", len(remaining))
	}
	// The oldest surviving version is number 3.
	if got := remaining[len(remaining)-1].VersionNumber; got != 3 {
		t.Errorf("oldest surviving version = %d, want 3", got)
	}
}

func TestDeckVersionRepository_CleanupOldNothingToDo(t *testing.T) {
	db := newTestDB(t)
	deckID := seedDeck(t, db, "Light Deck")
	repo := NewDeckVersionRepository(db, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, deckID, priceData("Light Deck", float64(i+1)), "user-1", nil); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	result, err := repo.CleanupOld(ctx, deckID, 5)
	if err != nil {
		t.Fatalf("CleanupOld() error = %v", err)
	}
	if result.Deleted != 0 || result.Kept != 3 {
		t.Errorf("result = %+v, want kept 3 deleted 0", result)
	}
}

func TestDeckVersionRepository_CleanupKeepsGameReferencedVersions(t *testing.T) {
	db := newTestDB(t)
	deckID := seedDeck(t, db, "Edgar Vampires")
	repo := NewDeckVersionRepository(db, nil)
	ctx := context.Background()

	var versions []*models.DeckVersion
	for i := 0; i < 7; i++ {
		v, err := repo.Create(ctx, deckID, priceData("Edgar Vampires", float64(i+1)), "user-1", nil)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		versions = append(versions, v)
	}

	// Pin the oldest version to a recorded game.
	playerID := seedPlayer(t, db, "Bob")
	game := &models.Game{
		WinnerID: playerID,
		PlayedAt: versions[0].CreatedAt,
		Players: []models.GamePlayer{{
			PlayerID:      playerID,
			PlayerName:    "Bob",
			DeckID:        deckID,
			DeckName:      "Edgar Vampires",
			DeckVersionID: &versions[0].ID,
		}},
	}
	if err := NewGameRepository(db).Record(ctx, game); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	result, err := repo.CleanupOld(ctx, deckID, 5)
	if err != nil {
		t.Fatalf("CleanupOld() error = %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", result.Deleted)
	}
	if result.Kept != 6 {
		t.Errorf("kept = %d, want 6", result.Kept)
	}

	// The pinned version 1 survives; the unreferenced version 2 is gone.
	if _, err := repo.GetByID(ctx, versions[0].ID); err != nil {
		t.Errorf("referenced version was deleted: %v", err)
	}
	if _, err := repo.GetByID(ctx, versions[1].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("unreferenced old version should be deleted, got err = %v", err)
	}
}

func TestDeckVersionRepository_CountGameReferences(t *testing.T) {
	db := newTestDB(t)
	deckID := seedDeck(t, db, "Count Deck")
	repo := NewDeckVersionRepository(db, nil)
	ctx := context.Background()

	version, err := repo.Create(ctx, deckID, priceData("Count Deck", 5.00), "user-1", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	count, err := repo.CountGameReferences(ctx, version.ID)
	if err != nil {
		t.Fatalf("CountGameReferences() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	playerID := seedPlayer(t, db, "Cara")
	for i := 0; i < 2; i++ {
		game := &models.Game{
			WinnerID: playerID,
			PlayedAt: version.CreatedAt,
			Players: []models.GamePlayer{{
				PlayerID:      playerID,
				PlayerName:    "Cara",
				DeckID:        deckID,
				DeckName:      "Count Deck",
				DeckVersionID: &version.ID,
			}},
		}
		if err := NewGameRepository(db).Record(ctx, game); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	count, err = repo.CountGameReferences(ctx, version.ID)
	if err != nil {
		t.Fatalf("CountGameReferences() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
