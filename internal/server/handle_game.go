package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/huntworks/geohunt/internal/game"
	"github.com/huntworks/geohunt/internal/geo"
)

type NewGameRequest struct {
	Location   geo.Coordinate `json:"location"`
	Difficulty string         `json:"difficulty"`
}

// EvidenceView is the client-safe projection of evidence: exact
// coordinates stay hidden until the item is discovered, otherwise the
// trust gate could be bypassed by reading the API.
type EvidenceView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Importance    game.Importance `json:"importance"`
	POIName       string          `json:"poiName"`
	POIType       geo.POIType     `json:"poiType"`
	Discovered    bool            `json:"discovered"`
	DiscoveredAt  *time.Time      `json:"discoveredAt,omitempty"`
	Description   string          `json:"description,omitempty"`
	DiscoveryText string          `json:"discoveryText,omitempty"`
	Location      *geo.Coordinate `json:"location,omitempty"`
}

// GameView is the client-safe projection of a session. The culprit and
// motive are only revealed once the game is completed.
type GameView struct {
	GameID          string           `json:"gameId"`
	Status          game.Status      `json:"status"`
	Difficulty      game.Difficulty  `json:"difficulty"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Suspects        []game.Suspect   `json:"suspects"`
	Evidence        []EvidenceView   `json:"evidence"`
	DiscoveredCount int              `json:"discoveredCount"`
	TotalEvidence   int              `json:"totalEvidence"`
	Score           int              `json:"score"`
	HintsUsed       int              `json:"hintsUsed"`
	DiscoveryRadius float64          `json:"discoveryRadius"`
	CreatedAt       time.Time        `json:"createdAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	FinalScore      *game.FinalScore `json:"finalScore,omitempty"`
	Culprit         string           `json:"culprit,omitempty"`
	Motive          string           `json:"motive,omitempty"`
}

func gameView(sess *game.Session) GameView {
	completed := sess.Status == game.StatusCompleted

	evidence := make([]EvidenceView, 0, len(sess.EvidenceList))
	for _, ev := range sess.EvidenceList {
		discovered := sess.Discovered(ev.ID)
		view := EvidenceView{
			ID:           ev.ID,
			Name:         ev.Name,
			Importance:   ev.Importance,
			POIName:      ev.POIName,
			POIType:      ev.POIType,
			Discovered:   discovered,
			DiscoveredAt: ev.DiscoveredAt,
		}
		if discovered || completed {
			view.Description = ev.Description
			view.DiscoveryText = ev.DiscoveryText
			loc := ev.Location
			view.Location = &loc
		}
		evidence = append(evidence, view)
	}

	view := GameView{
		GameID:          sess.GameID,
		Status:          sess.Status,
		Difficulty:      sess.Difficulty,
		Title:           sess.Scenario.Title,
		Description:     sess.Scenario.Description,
		Suspects:        sess.Scenario.Suspects,
		Evidence:        evidence,
		DiscoveredCount: len(sess.DiscoveredEvidence),
		TotalEvidence:   len(sess.EvidenceList),
		Score:           sess.Score,
		HintsUsed:       sess.HintsUsed,
		DiscoveryRadius: sess.Rules.DiscoveryRadius,
		CreatedAt:       sess.CreatedAt,
		CompletedAt:     sess.CompletedAt,
		FinalScore:      sess.FinalScore,
	}
	if completed {
		view.Culprit = sess.Scenario.Culprit
		view.Motive = sess.Scenario.Motive
	}
	return view
}

func handleNewGame(games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NewGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		difficulty := game.Difficulty(req.Difficulty)
		switch difficulty {
		case "":
			difficulty = game.DifficultyNormal
		case game.DifficultyEasy, game.DifficultyNormal, game.DifficultyHard:
		default:
			writeError(w, http.StatusBadRequest, "difficulty must be easy, normal, or hard")
			return
		}

		sess, err := games.NewGame(r.Context(), playerFrom(r), req.Location, difficulty)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, gameView(sess))
	}
}

func handleListGames(games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := games.ListGames(r.Context(), playerFrom(r))
		if err != nil {
			writeGameError(w, err)
			return
		}

		views := make([]GameView, 0, len(sessions))
		for _, sess := range sessions {
			views = append(views, gameView(sess))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleGetGame(games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := games.Get(r.Context(), gameIDFrom(r), playerFrom(r))
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, gameView(sess))
	}
}

func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrEvidenceNotFound):
		writeError(w, http.StatusNotFound, "evidence not found")
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, game.ErrForbidden):
		writeError(w, http.StatusForbidden, "you do not own this game")
	case errors.Is(err, game.ErrGameNotActive):
		writeError(w, http.StatusConflict, "game is not active")
	case errors.Is(err, game.ErrTooManyGames):
		writeError(w, http.StatusConflict, "too many active games, finish one first")
	case errors.Is(err, game.ErrInvalidLocation):
		writeError(w, http.StatusBadRequest, "invalid location")
	case errors.Is(err, game.ErrNotEnoughPOIs):
		writeError(w, http.StatusUnprocessableEntity, "not enough points of interest nearby to build a game")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
