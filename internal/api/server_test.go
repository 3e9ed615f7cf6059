package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rookenthusiast/mtg-commander-league/internal/league"
	"github.com/rookenthusiast/mtg-commander-league/internal/pricing"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/repository"
)

const testJWTSecret = "server-test-secret"

// flatPricer prices every card at one euro.
type flatPricer struct{}

func (flatPricer) CalculateDeckPrice(_ context.Context, deckName, decklistText string, entries []pricing.Entry) (*pricing.DeckPriceData, error) {
	data := &pricing.DeckPriceData{
		DeckName:     deckName,
		Currency:     pricing.Currency,
		DecklistText: decklistText,
	}
	for _, e := range entries {
		data.Cards = append(data.Cards, pricing.CardPrice{
			Name:      e.Name,
			Quantity:  e.Quantity,
			UnitPrice: 1.00,
			LineTotal: float64(e.Quantity),
		})
		data.CardCount += e.Quantity
		data.TotalPrice += float64(e.Quantity)
	}
	return data, nil
}

func newTestServer(t *testing.T) (*Server, *sql.DB) {
	t.Helper()

	cfg := storage.DefaultConfig(filepath.Join(t.TempDir(), "api_test.db"))
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	conn := db.Conn()
	deckRepo := repository.NewDeckRepository(conn)
	versionRepo := repository.NewDeckVersionRepository(conn, nil)
	gameRepo := repository.NewGameRepository(conn)
	seasonRepo := repository.NewSeasonRepository(conn)
	playerRepo := repository.NewPlayerRepository(conn)
	userRepo := repository.NewUserRepository(conn)

	services := &Services{
		Decks:       league.NewDeckService(deckRepo, versionRepo, flatPricer{}, nil),
		Games:       league.NewGameService(gameRepo, versionRepo, nil),
		Seasons:     league.NewSeasonService(seasonRepo, playerRepo, nil),
		Leaderboard: league.NewLeaderboardService(seasonRepo),
		Admin:       league.NewAdminService(userRepo, playerRepo, nil),
	}

	return NewServer(&Config{Port: 0, JWTSecret: testJWTSecret, AllowedOrigins: []string{"*"}}, services, nil), conn
}

func bearerToken(t *testing.T, subject string, admin bool) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   subject,
		"name":  "Test User",
		"admin": admin,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, srv *Server, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthNoAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}
}

func TestServer_RequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/decks", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestServer_DeckUpdateFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	auth := bearerToken(t, "user-1", false)

	// Create a deck shell.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/decks", auth, map[string]interface{}{
		"name": "Test Deck",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create deck status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	deckID := created.Data.ID

	// Submit a decklist.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/decks/update", auth, map[string]interface{}{
		"deckId":       deckID,
		"decklistText": "1 Sol Ring\n2x Island",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Data league.UpdateDeckResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode update response: %v", err)
	}
	if !updated.Data.Updated {
		t.Error("updated = false, want true")
	}
	if updated.Data.Version == nil || updated.Data.Version.TotalPrice != 3.00 {
		t.Errorf("version = %+v, want total 3.00", updated.Data.Version)
	}

	// Identical resubmission creates nothing.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/decks/update", auth, map[string]interface{}{
		"deckId":       deckID,
		"decklistText": "1 Sol Ring\n2x Island",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("resubmit status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode resubmit response: %v", err)
	}
	if updated.Data.Updated {
		t.Error("identical resubmission should not create a version")
	}

	// Version history.
	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/decks/%s/versions?includeAll=true", deckID), auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("versions status = %d", rec.Code)
	}
	var history struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("failed to decode versions response: %v", err)
	}
	if history.Data.Count != 1 {
		t.Errorf("version count = %d, want 1", history.Data.Count)
	}
}

func TestServer_ForceUpdateReprices(t *testing.T) {
	srv, _ := newTestServer(t)
	auth := bearerToken(t, "user-1", false)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/decks", auth, map[string]interface{}{
		"name": "Reprice Deck",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create deck status = %d", rec.Code)
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}

	submit := map[string]interface{}{
		"deckId":       created.Data.ID,
		"decklistText": "1 Sol Ring",
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/decks/update", auth, submit); rec.Code != http.StatusOK {
		t.Fatalf("first update status = %d, body %s", rec.Code, rec.Body.String())
	}

	// The wire field is forceUpdate; an identical resubmission carrying it
	// must create a new version instead of short-circuiting.
	submit["forceUpdate"] = true
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/decks/update", auth, submit)
	if rec.Code != http.StatusOK {
		t.Fatalf("forced update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Data league.UpdateDeckResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode forced update response: %v", err)
	}
	if !updated.Data.Updated {
		t.Error("forceUpdate resubmission should create a version")
	}
	if updated.Data.Version == nil || updated.Data.Version.VersionNumber != 2 {
		t.Errorf("version = %+v, want number 2", updated.Data.Version)
	}
}

func TestServer_AuthenticatedRequestProvisionsIdentity(t *testing.T) {
	srv, conn := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/decks", bearerToken(t, "auth0|carol", false), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var users int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM users WHERE id = ?`, "auth0|carol").Scan(&users); err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if users != 1 {
		t.Fatalf("got %d user rows, want 1", users)
	}

	var playerName string
	err := conn.QueryRow(`SELECT display_name FROM players WHERE user_id = ?`, "auth0|carol").Scan(&playerName)
	if err != nil {
		t.Fatalf("player row missing after authenticated request: %v", err)
	}
	if playerName != "Test User" {
		t.Errorf("player display name = %q, want Test User", playerName)
	}

	// A second request reuses the player instead of duplicating it.
	if rec := doJSON(t, srv, http.MethodGet, "/api/v1/decks", bearerToken(t, "auth0|carol", false), nil); rec.Code != http.StatusOK {
		t.Fatalf("second request status = %d", rec.Code)
	}
	var players int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM players WHERE user_id = ?`, "auth0|carol").Scan(&players); err != nil {
		t.Fatalf("failed to count players: %v", err)
	}
	if players != 1 {
		t.Errorf("got %d player rows, want 1", players)
	}
}

func TestServer_UpdateValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	auth := bearerToken(t, "user-1", false)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/decks/update", auth, map[string]interface{}{
		"decklistText": "1 Sol Ring",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing deckId status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/decks/update", auth, map[string]interface{}{
		"deckId":       "some-deck",
		"decklistText": "// nothing here",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty decklist status = %d, want 400", rec.Code)
	}
}

func TestServer_PlayerRosterAndRegistration(t *testing.T) {
	srv, _ := newTestServer(t)
	auth := bearerToken(t, "auth0|dave", false)

	// The sync middleware provisions the player before the handler runs.
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/players", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("players status = %d", rec.Code)
	}
	var roster struct {
		Data []struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &roster); err != nil {
		t.Fatalf("failed to decode roster: %v", err)
	}
	if len(roster.Data) != 1 {
		t.Fatalf("got %d players, want 1", len(roster.Data))
	}
	playerID := roster.Data[0].ID

	rec = doJSON(t, srv, http.MethodPut, "/api/v1/players/"+playerID, auth, map[string]interface{}{
		"displayName": "Dave the Brave",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/seasons", bearerToken(t, "admin-2", true), map[string]interface{}{
		"name":      "Season R",
		"startDate": "2026-01-01T00:00:00Z",
		"endDate":   "2026-06-30T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create season status = %d, body %s", rec.Code, rec.Body.String())
	}
	var season struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &season); err != nil {
		t.Fatalf("failed to decode season: %v", err)
	}

	register := map[string]interface{}{"playerId": playerID, "deckIds": []string{"deck-a"}}
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/seasons/"+season.Data.ID+"/register", auth, register)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	register["deckIds"] = []string{"deck-a", "deck-b"}
	rec = doJSON(t, srv, http.MethodPut, "/api/v1/seasons/"+season.Data.ID+"/register", auth, register)
	if rec.Code != http.StatusOK {
		t.Fatalf("update registration status = %d, body %s", rec.Code, rec.Body.String())
	}
	var reg struct {
		Data struct {
			RegisteredDeckIDs []string `json:"registeredDeckIds"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("failed to decode registration: %v", err)
	}
	if len(reg.Data.RegisteredDeckIDs) != 2 {
		t.Errorf("registered decks = %v, want 2", reg.Data.RegisteredDeckIDs)
	}
}

func TestServer_AdminGating(t *testing.T) {
	srv, _ := newTestServer(t)

	season := map[string]interface{}{
		"name":      "Season 1",
		"startDate": "2026-01-01T00:00:00Z",
		"endDate":   "2026-06-30T00:00:00Z",
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/seasons", bearerToken(t, "user-1", false), season)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin create season status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/seasons", bearerToken(t, "admin-1", true), season)
	if rec.Code != http.StatusCreated {
		t.Errorf("admin create season status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
}

func TestServer_VersionDetailErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	auth := bearerToken(t, "user-1", false)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/decks/some-deck/versions/missing", auth, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing version status = %d, want 404", rec.Code)
	}
}
