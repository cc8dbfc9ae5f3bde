package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/huntworks/geohunt/internal/game"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoHunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the GeoHunt location mystery game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/games
	postGame, _ := r.NewOperationContext(http.MethodPost, "/api/games")
	postGame.SetSummary("Create game")
	postGame.SetDescription("Creates a new mystery anchored at the player's location. Requires X-Player-ID header.")
	postGame.AddReqStructure(NewGameRequest{})
	postGame.AddRespStructure(GameView{}, openapi.WithHTTPStatus(http.StatusCreated))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postGame)

	// GET /api/games
	listGames, _ := r.NewOperationContext(http.MethodGet, "/api/games")
	listGames.SetSummary("List games")
	listGames.SetDescription("Returns every game owned by the calling player.")
	listGames.AddRespStructure([]GameView{}, openapi.WithHTTPStatus(http.StatusOK))
	listGames.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listGames)

	// GET /api/games/{gameID}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}")
	getGame.SetSummary("Get game")
	getGame.SetDescription("Returns the player's view of a game. Undiscovered evidence locations are hidden.")
	getGame.AddRespStructure(GameView{}, openapi.WithHTTPStatus(http.StatusOK))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(getGame)

	// POST /api/games/{gameID}/discover
	postDiscover, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/discover")
	postDiscover.SetSummary("Attempt discovery")
	postDiscover.SetDescription("Submits a GPS fix to claim a piece of evidence. The fix is validated before the discovery is granted.")
	postDiscover.AddReqStructure(DiscoverRequest{})
	postDiscover.AddRespStructure(game.DiscoveryOutcome{}, openapi.WithHTTPStatus(http.StatusOK))
	postDiscover.AddRespStructure(game.DiscoveryOutcome{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postDiscover.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postDiscover.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postDiscover)

	// GET /api/games/{gameID}/evidence/nearby
	getNearby, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/evidence/nearby")
	getNearby.SetSummary("Nearby evidence")
	getNearby.SetDescription("Lists undiscovered evidence within discovery range of the given lat/lng.")
	getNearby.AddRespStructure(NearbyEvidenceResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getNearby.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getNearby)

	// GET /api/games/{gameID}/evidence/{evidenceID}/hint
	getHint, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/evidence/{evidenceID}/hint")
	getHint.SetSummary("Evidence hint")
	getHint.SetDescription("Returns a hint for one evidence item. Each hint costs score at deduction time.")
	getHint.AddRespStructure(game.Hint{}, openapi.WithHTTPStatus(http.StatusOK))
	getHint.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getHint)

	// GET /api/games/{gameID}/route
	getRoute, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/route")
	getRoute.SetSummary("Suggested route")
	getRoute.SetDescription("Returns a short walking order over the remaining evidence from the given lat/lng.")
	getRoute.AddRespStructure(RouteResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getRoute.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getRoute)

	// POST /api/games/{gameID}/deduction
	postDeduction, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/deduction")
	postDeduction.SetSummary("Submit deduction")
	postDeduction.SetDescription("Accuses a suspect, computes the final score, and completes the game.")
	postDeduction.AddReqStructure(DeductionRequest{})
	postDeduction.AddRespStructure(game.DeductionResult{}, openapi.WithHTTPStatus(http.StatusOK))
	postDeduction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postDeduction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postDeduction)

	// GET /api/games/{gameID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream for discovery and completion events. Pass playerId as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
