package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("GeoHunt API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.DB, deps.Redis))

	// Player routes. Identity comes from the X-Player-ID header (or the
	// playerId query parameter for EventSource, which cannot set headers).
	r.Route("/api/games", func(r chi.Router) {
		r.Use(playerMiddleware)
		r.Post("/", handleNewGame(deps.Games))
		r.Get("/", handleListGames(deps.Games))
		r.Get("/{gameID}", handleGetGame(deps.Games))
		r.Post("/{gameID}/discover", handleDiscover(deps.Discoveries, deps.Games, broker))
		r.Get("/{gameID}/evidence/nearby", handleNearbyEvidence(deps.Games))
		r.Get("/{gameID}/evidence/{evidenceID}/hint", handleHint(deps.Games))
		r.Get("/{gameID}/route", handleRoute(deps.Games))
		r.Post("/{gameID}/deduction", handleDeduction(deps.Games, broker))
		r.Get("/{gameID}/events", handleEvents(deps.Games, broker))
	})
}
