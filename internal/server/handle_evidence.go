package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/geohunt/internal/game"
	"github.com/huntworks/geohunt/internal/geo"
)

// NearbyEvidenceResponse lists undiscovered evidence within discovery
// range of the player, names only.
type NearbyEvidenceResponse struct {
	Nearby []NearbyEvidenceItem `json:"nearby"`
}

type NearbyEvidenceItem struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	POIName string      `json:"poiName"`
	POIType geo.POIType `json:"poiType"`
}

func handleNearbyEvidence(games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := coordinateQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "lat and lng query parameters are required")
			return
		}

		nearby, err := games.NearbyEvidence(r.Context(), gameIDFrom(r), playerFrom(r), loc)
		if err != nil {
			writeGameError(w, err)
			return
		}

		resp := NearbyEvidenceResponse{Nearby: []NearbyEvidenceItem{}}
		for _, ev := range nearby {
			resp.Nearby = append(resp.Nearby, NearbyEvidenceItem{
				ID:      ev.ID,
				Name:    ev.Name,
				POIName: ev.POIName,
				POIType: ev.POIType,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleHint(games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hint, err := games.EvidenceHint(r.Context(), gameIDFrom(r), playerFrom(r), chi.URLParam(r, "evidenceID"))
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, hint)
	}
}

func coordinateQuery(r *http.Request) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.Coordinate{Lat: lat, Lng: lng}, nil
}
