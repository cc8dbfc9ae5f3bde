package server

import (
	"net/http"
	"time"

	"github.com/huntworks/geohunt/internal/game"
	"github.com/huntworks/geohunt/internal/geo"
	"github.com/huntworks/geohunt/internal/trust"
)

// LocationPayload is a raw GPS fix as reported by the client device.
type LocationPayload struct {
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	Accuracy         float64   `json:"accuracy"`
	VerticalAccuracy *float64  `json:"verticalAccuracy,omitempty"`
	CapturedAt       time.Time `json:"capturedAt"`
	Provider         string    `json:"provider"`
	Speed            *float64  `json:"speed,omitempty"`
	Bearing          *float64  `json:"bearing,omitempty"`
	Altitude         *float64  `json:"altitude,omitempty"`
}

func (p LocationPayload) sample() trust.LocationSample {
	return trust.LocationSample{
		Coordinate: geo.Coordinate{Lat: p.Lat, Lng: p.Lng},
		Accuracy: trust.AccuracyReport{
			HorizontalAccuracyMeters: p.Accuracy,
			VerticalAccuracyMeters:   p.VerticalAccuracy,
			CapturedAt:               p.CapturedAt,
			Provider:                 trust.Provider(p.Provider).Normalize(),
		},
		SpeedMetersPerSecond: p.Speed,
		BearingDegrees:       p.Bearing,
		AltitudeMeters:       p.Altitude,
	}
}

type DiscoverRequest struct {
	EvidenceID string          `json:"evidenceId"`
	Location   LocationPayload `json:"location"`
}

func handleDiscover(discoveries *game.Coordinator, games *game.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DiscoverRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.EvidenceID == "" {
			writeError(w, http.StatusBadRequest, "evidenceId is required")
			return
		}

		gameID := gameIDFrom(r)
		outcome, err := discoveries.AttemptDiscovery(r.Context(), gameID, playerFrom(r), req.EvidenceID, req.Location.sample())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if outcome.Code == game.CodeDiscovered {
			totalScore := 0
			if sess, err := games.Get(r.Context(), gameID, playerFrom(r)); err == nil {
				totalScore = sess.Score
			}
			broker.Publish(gameID, SSEEvent{
				Type:         "evidence_discovered",
				EvidenceID:   req.EvidenceID,
				EvidenceName: outcome.Evidence.Name,
				BonusPoints:  outcome.BonusPoints,
				NextClue:     outcome.NextClue,
				TotalScore:   totalScore,
			})
		}

		writeJSON(w, discoverStatus(outcome.Code), outcome)
	}
}

// discoverStatus maps outcome codes onto HTTP statuses. Validation
// rejections are 422: the request was well-formed, the fix just did not
// pass the trust gate.
func discoverStatus(code game.OutcomeCode) int {
	switch code {
	case game.CodeDiscovered, game.CodeAlreadyDiscovered:
		return http.StatusOK
	case game.CodeNotFound:
		return http.StatusNotFound
	case game.CodeForbidden:
		return http.StatusForbidden
	case game.CodeGameNotActive:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
