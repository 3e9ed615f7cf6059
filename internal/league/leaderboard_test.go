package league

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/repository"
)

func seedStandings(t *testing.T, db *sql.DB) string {
	t.Helper()
	ctx := context.Background()
	seasons := repository.NewSeasonRepository(db)

	season := &models.Season{
		Name:      "Season 1",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	if err := seasons.Create(ctx, season); err != nil {
		t.Fatalf("failed to seed season: %v", err)
	}

	rows := []struct {
		name                       string
		points, wins, losses, games int
	}{
		{"Alice", 9, 3, 1, 4},
		{"Bob", 12, 4, 4, 8},
		{"Cara", 9, 2, 0, 2},
	}
	for _, row := range rows {
		playerID := seedLeaguePlayer(t, db, row.name)
		reg := &models.PlayerSeason{
			PlayerID:    playerID,
			SeasonID:    season.ID,
			DisplayName: row.name,
			Points:      row.points,
			Wins:        row.wins,
			Losses:      row.losses,
			GamesPlayed: row.games,
		}
		if err := seasons.RegisterPlayer(ctx, reg); err != nil {
			t.Fatalf("failed to seed standings for %s: %v", row.name, err)
		}
	}
	return season.ID
}

func TestLeaderboardService_Standings(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(repository.NewSeasonRepository(db))
	seasonID := seedStandings(t, db)
	ctx := context.Background()

	tests := []struct {
		name   string
		sortBy LeaderboardSort
		limit  int
		want   []string
	}{
		{"by points", SortByPoints, 0, []string{"Bob", "Alice", "Cara"}},
		{"by wins", SortByWins, 0, []string{"Bob", "Alice", "Cara"}},
		{"by games", SortByGames, 0, []string{"Bob", "Alice", "Cara"}},
		{"limited", SortByPoints, 2, []string{"Bob", "Alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := svc.Standings(ctx, seasonID, tt.sortBy, tt.limit)
			if err != nil {
				t.Fatalf("Standings() error = %v", err)
			}
			if len(entries) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tt.want))
			}
			for i, name := range tt.want {
				if entries[i].DisplayName != name {
					t.Errorf("entries[%d] = %s, want %s", i, entries[i].DisplayName, name)
				}
				if entries[i].Rank != i+1 {
					t.Errorf("entries[%d].Rank = %d, want %d", i, entries[i].Rank, i+1)
				}
			}
		})
	}
}

func TestLeaderboardService_WinRate(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(repository.NewSeasonRepository(db))
	seasonID := seedStandings(t, db)

	entries, err := svc.Standings(context.Background(), seasonID, SortByPoints, 0)
	if err != nil {
		t.Fatalf("Standings() error = %v", err)
	}

	// Bob: 4 wins over 8 games.
	if entries[0].WinRate != 0.5 {
		t.Errorf("win rate = %.3f, want 0.500", entries[0].WinRate)
	}
	// Cara: 2 wins over 2 games.
	if entries[2].WinRate != 1.0 {
		t.Errorf("win rate = %.3f, want 1.000", entries[2].WinRate)
	}
}

func TestLeaderboardService_UnknownSeason(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(repository.NewSeasonRepository(db))

	_, err := svc.Standings(context.Background(), "missing", SortByPoints, 0)
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Errorf("Standings() error = %v, want NotFoundError", err)
	}
}
