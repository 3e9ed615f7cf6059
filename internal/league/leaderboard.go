package league

import (
	"context"
	"math"
	"sort"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage/repository"
)

// LeaderboardSort selects the standings ordering.
type LeaderboardSort string

const (
	SortByPoints LeaderboardSort = "points"
	SortByWins   LeaderboardSort = "wins"
	SortByGames  LeaderboardSort = "gamesPlayed"
)

// LeaderboardEntry is one ranked standings row.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"playerId"`
	DisplayName string  `json:"displayName"`
	Points      int     `json:"points"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	GamesPlayed int     `json:"gamesPlayed"`
	WinRate     float64 `json:"winRate"`
}

// LeaderboardService ranks a season's standings.
type LeaderboardService struct {
	seasons repository.SeasonRepository
}

// NewLeaderboardService creates a leaderboard service.
func NewLeaderboardService(seasons repository.SeasonRepository) *LeaderboardService {
	return &LeaderboardService{seasons: seasons}
}

// Standings returns a season's ranked leaderboard. sortBy defaults to
// points; limit 0 means no limit.
func (s *LeaderboardService) Standings(ctx context.Context, seasonID string, sortBy LeaderboardSort, limit int) ([]LeaderboardEntry, error) {
	if _, err := s.seasons.GetByID(ctx, seasonID); err != nil {
		return nil, wrapStorage("load season", "season", seasonID, err)
	}

	rows, err := s.seasons.ListStandings(ctx, seasonID)
	if err != nil {
		return nil, &PersistenceError{Op: "list standings", Err: err}
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entry := LeaderboardEntry{
			PlayerID:    row.PlayerID,
			DisplayName: row.DisplayName,
			Points:      row.Points,
			Wins:        row.Wins,
			Losses:      row.Losses,
			GamesPlayed: row.GamesPlayed,
		}
		if row.GamesPlayed > 0 {
			entry.WinRate = math.Round(float64(row.Wins)/float64(row.GamesPlayed)*1000) / 1000
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch sortBy {
		case SortByWins:
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
		case SortByGames:
			if a.GamesPlayed != b.GamesPlayed {
				return a.GamesPlayed > b.GamesPlayed
			}
		default:
			if a.Points != b.Points {
				return a.Points > b.Points
			}
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.DisplayName < b.DisplayName
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
