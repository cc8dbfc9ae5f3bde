package server

import (
	"net/http"
	"strings"

	"github.com/huntworks/geohunt/internal/game"
)

type DeductionRequest struct {
	Suspect   string `json:"suspect"`
	Reasoning string `json:"reasoning"`
}

func handleDeduction(games *game.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeductionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Suspect = strings.TrimSpace(req.Suspect)
		if req.Suspect == "" {
			writeError(w, http.StatusBadRequest, "suspect is required")
			return
		}

		gameID := gameIDFrom(r)
		result, err := games.SubmitDeduction(r.Context(), gameID, playerFrom(r), req.Suspect, req.Reasoning)
		if err != nil {
			writeGameError(w, err)
			return
		}

		correct := result.Correct
		broker.Publish(gameID, SSEEvent{
			Type:       "game_completed",
			Correct:    &correct,
			TotalScore: result.Score.TotalScore,
		})

		writeJSON(w, http.StatusOK, result)
	}
}
