package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/geohunt/internal/database"
	"github.com/huntworks/geohunt/internal/game"
	"github.com/huntworks/geohunt/internal/geo"
	"github.com/huntworks/geohunt/internal/migrations"
	"github.com/huntworks/geohunt/internal/narrative"
	"github.com/huntworks/geohunt/internal/places"
	"github.com/huntworks/geohunt/internal/trust"
)

var testOrigin = geo.Coordinate{Lat: -12.0464, Lng: -77.0428}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testHarness wires the full stack on in-memory storage: sqlite sessions,
// in-memory location history, fallback POIs, template narratives.
type testHarness struct {
	router *chi.Mux
	store  *game.SQLiteStore
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	store := game.NewSQLiteStore(db)
	history := trust.NewMemoryHistory()
	detector := trust.NewSpoofDetector(history)
	validator := trust.NewValidator()

	games := game.NewService(store, places.NewClient("", logger), narrative.NewTemplates(1), store, logger)
	discoveries := game.NewCoordinator(store, detector, validator, logger)

	r := chi.NewRouter()
	addRoutes(r, logger, Deps{Games: games, Discoveries: discoveries, DB: db})
	return &testHarness{router: r, store: store}
}

func (h *testHarness) do(t *testing.T, method, path, playerID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *testHarness) createGame(t *testing.T, playerID string) GameView {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/games", playerID, NewGameRequest{
		Location:   testOrigin,
		Difficulty: "easy",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var view GameView
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("decode game view: %v", err)
	}
	return view
}

// session fetches the raw stored session, including the fields the API
// hides from clients.
func (h *testHarness) session(t *testing.T, gameID string) *game.Session {
	t.Helper()
	sess, err := h.store.Get(context.Background(), gameID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return sess
}

// fixAt builds a fresh, trustworthy GPS fix at the given coordinate.
func fixAt(c geo.Coordinate) LocationPayload {
	return LocationPayload{
		Lat:        c.Lat,
		Lng:        c.Lng,
		Accuracy:   5,
		CapturedAt: time.Now(),
		Provider:   "gps",
	}
}

// coordAtDistance returns a point the given number of meters due north.
func coordAtDistance(origin geo.Coordinate, meters float64) geo.Coordinate {
	return geo.Coordinate{
		Lat: origin.Lat + meters/6371000*(180/math.Pi),
		Lng: origin.Lng,
	}
}

func TestCreateAndGetGame(t *testing.T) {
	h := newTestHarness(t)
	view := h.createGame(t, "player-1")

	if view.Status != game.StatusActive {
		t.Errorf("status = %s, want active", view.Status)
	}
	if view.TotalEvidence < 3 {
		t.Errorf("expected at least 3 evidence items, got %d", view.TotalEvidence)
	}
	if view.Culprit != "" || view.Motive != "" {
		t.Error("culprit and motive must stay hidden while the game is active")
	}
	for _, ev := range view.Evidence {
		if ev.Location != nil {
			t.Errorf("undiscovered evidence %s leaked its location", ev.ID)
		}
		if ev.DiscoveryText != "" {
			t.Errorf("undiscovered evidence %s leaked its discovery text", ev.ID)
		}
	}

	w := h.do(t, http.MethodGet, "/api/games/"+view.GameID, "player-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get game: expected 200, got %d", w.Code)
	}

	w = h.do(t, http.MethodGet, "/api/games/"+view.GameID, "someone-else", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign player: expected 403, got %d", w.Code)
	}

	w = h.do(t, http.MethodGet, "/api/games/"+view.GameID, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing player id: expected 401, got %d", w.Code)
	}
}

func TestListGames(t *testing.T) {
	h := newTestHarness(t)
	h.createGame(t, "player-1")
	h.createGame(t, "player-1")
	h.createGame(t, "player-2")

	w := h.do(t, http.MethodGet, "/api/games", "player-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list games: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var views []GameView
	json.NewDecoder(w.Body).Decode(&views)
	if len(views) != 2 {
		t.Errorf("expected 2 games for player-1, got %d", len(views))
	}
}

func TestCreateGameValidation(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodPost, "/api/games", "player-1", NewGameRequest{
		Location:   geo.Coordinate{Lat: 95, Lng: 0},
		Difficulty: "easy",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid location: expected 400, got %d", w.Code)
	}

	w = h.do(t, http.MethodPost, "/api/games", "player-1", NewGameRequest{
		Location:   testOrigin,
		Difficulty: "nightmare",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid difficulty: expected 400, got %d", w.Code)
	}
}

func TestDiscoverFlow(t *testing.T) {
	h := newTestHarness(t)
	view := h.createGame(t, "player-1")
	sess := h.session(t, view.GameID)
	target := sess.EvidenceList[0]

	w := h.do(t, http.MethodPost, "/api/games/"+view.GameID+"/discover", "player-1", DiscoverRequest{
		EvidenceID: target.ID,
		Location:   fixAt(target.Location),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("discover: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var outcome game.DiscoveryOutcome
	json.NewDecoder(w.Body).Decode(&outcome)
	if outcome.Code != game.CodeDiscovered || !outcome.Success {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.BonusPoints <= 0 {
		t.Errorf("expected a discovery bonus, got %d", outcome.BonusPoints)
	}

	// Second attempt is an idempotent no-op.
	w = h.do(t, http.MethodPost, "/api/games/"+view.GameID+"/discover", "player-1", DiscoverRequest{
		EvidenceID: target.ID,
		Location:   fixAt(target.Location),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("repeat discover: expected 200, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&outcome)
	if outcome.Code != game.CodeAlreadyDiscovered {
		t.Errorf("repeat discover code = %s, want already_discovered", outcome.Code)
	}

	// The view now reveals the discovered item's location.
	w = h.do(t, http.MethodGet, "/api/games/"+view.GameID, "player-1", nil)
	var after GameView
	json.NewDecoder(w.Body).Decode(&after)
	if after.DiscoveredCount != 1 || after.Score <= 0 {
		t.Errorf("discoveredCount=%d score=%d after discovery", after.DiscoveredCount, after.Score)
	}
	for _, ev := range after.Evidence {
		if ev.ID == target.ID && ev.Location == nil {
			t.Error("discovered evidence should reveal its location")
		}
	}
}

func TestDiscoverRejectsDistantFix(t *testing.T) {
	h := newTestHarness(t)
	view := h.createGame(t, "player-1")
	sess := h.session(t, view.GameID)
	target := sess.EvidenceList[0]

	w := h.do(t, http.MethodPost, "/api/games/"+view.GameID+"/discover", "player-1", DiscoverRequest{
		EvidenceID: target.ID,
		Location:   fixAt(coordAtDistance(target.Location, 500)),
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	var outcome game.DiscoveryOutcome
	json.NewDecoder(w.Body).Decode(&outcome)
	if outcome.Code != game.CodeTooFar {
		t.Errorf("code = %s, want too_far", outcome.Code)
	}
}

func TestDiscoverRejectsStaleFix(t *testing.T) {
	h := newTestHarness(t)
	view := h.createGame(t, "player-1")
	sess := h.session(t, view.GameID)
	target := sess.EvidenceList[0]

	stale := fixAt(target.Location)
	stale.CapturedAt = time.Now().Add(-10 * time.Minute)

	w := h.do(t, http.MethodPost, "/api/games/"+view.GameID+"/discover", "player-1", DiscoverRequest{
		EvidenceID: target.ID,
		Location:   stale,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	var outcome game.DiscoveryOutcome
	json.NewDecoder(w.Body).Decode(&outcome)
	if outcome.Code != game.CodeInvalidReading {
		t.Errorf("code = %s, want invalid_reading", outcome.Code)
	}
}

func TestHintIncrementsUse(t *testing.T) {
	h := newTestHarness(t)
	view := h.createGame(t, "player-1")
	evidenceID := view.Evidence[0].ID

	w := h.do(t, http.MethodGet, "/api/games/"+view.GameID+"/evidence/"+evidenceID+"/hint", "player-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("hint: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var hint game.Hint
	json.NewDecoder(w.Body).Decode(&hint)
	if hint.Text == "" || hint.Penalty == 0 {
		t.Errorf("hint = %+v", hint)
	}

	w = h.do(t, http.MethodGet, "/api/games/"+view.GameID, "player-1", nil)
	var after GameView
	json.NewDecoder(w.Body).Decode(&after)
	if after.HintsUsed != 1 {
		t.Errorf("hintsUsed = %d, want 1", after.HintsUsed)
	}
}

func TestHintUnknownEvidence(t *testing.T) {
	h := newTestHarness(t)
	view := h.createGame(t, "player-1")

	w := h.do(t, http.MethodGet, "/api/games/"+view.GameID+"/evidence/no-such-id/hint", "player-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["error"] != "evidence not found" {
		t.Errorf("error = %q, want it to name the evidence, not the game", body["error"])
	}
}

func TestNearbyEvidence(t *testing.T) {
	h := newTestHarness(t)
	view := h.createGame(t, "player-1")
	sess := h.session(t, view.GameID)
	target := sess.EvidenceList[0]

	path := "/api/games/" + view.GameID + "/evidence/nearby?lat=" +
		formatFloat(target.Location.Lat) + "&lng=" + formatFloat(target.Location.Lng)
	w := h.do(t, http.MethodGet, path, "player-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("nearby: expected 200, got %d", w.Code)
	}

	var resp NearbyEvidenceResponse
	json.NewDecoder(w.Body).Decode(&resp)
	found := false
	for _, item := range resp.Nearby {
		if item.ID == target.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("evidence %s should be in range at its own coordinate: %+v", target.ID, resp.Nearby)
	}

	w = h.do(t, http.MethodGet, "/api/games/"+view.GameID+"/evidence/nearby?lat=bad", "player-1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad query: expected 400, got %d", w.Code)
	}
}

func TestRouteOrdersRemainingEvidence(t *testing.T) {
	h := newTestHarness(t)
	view := h.createGame(t, "player-1")

	path := "/api/games/" + view.GameID + "/route?lat=" +
		formatFloat(testOrigin.Lat) + "&lng=" + formatFloat(testOrigin.Lng)
	w := h.do(t, http.MethodGet, path, "player-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("route: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RouteResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Stops) != view.TotalEvidence {
		t.Errorf("stops = %d, want %d", len(resp.Stops), view.TotalEvidence)
	}
	if resp.TotalDistanceMeters <= 0 {
		t.Errorf("total distance should be positive, got %f", resp.TotalDistanceMeters)
	}
}

func TestDeductionCompletesGame(t *testing.T) {
	h := newTestHarness(t)
	view := h.createGame(t, "player-1")
	sess := h.session(t, view.GameID)

	w := h.do(t, http.MethodPost, "/api/games/"+view.GameID+"/deduction", "player-1", DeductionRequest{
		Suspect:   sess.Scenario.Culprit,
		Reasoning: "the evidence all points one way",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("deduction: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result game.DeductionResult
	json.NewDecoder(w.Body).Decode(&result)
	if !result.Correct {
		t.Error("accusing the culprit should be correct")
	}
	if result.Score.TotalScore <= 0 {
		t.Errorf("total score = %d", result.Score.TotalScore)
	}

	// The completed view reveals the solution.
	w = h.do(t, http.MethodGet, "/api/games/"+view.GameID, "player-1", nil)
	var after GameView
	json.NewDecoder(w.Body).Decode(&after)
	if after.Status != game.StatusCompleted {
		t.Errorf("status = %s, want completed", after.Status)
	}
	if after.Culprit == "" || after.Motive == "" {
		t.Error("completed game should reveal culprit and motive")
	}

	// No second deduction.
	w = h.do(t, http.MethodPost, "/api/games/"+view.GameID+"/deduction", "player-1", DeductionRequest{
		Suspect: sess.Scenario.Culprit,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("second deduction: expected 409, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", w.Code)
	}
	var checks HealthResponse
	json.NewDecoder(w.Body).Decode(&checks)
	if checks["sqlite"].Status != "ok" {
		t.Errorf("sqlite status = %q", checks["sqlite"].Status)
	}
	if _, ok := checks["redis"]; ok {
		t.Error("redis check should be absent when redis is not configured")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
