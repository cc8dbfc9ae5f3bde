package server

import (
	"net/http"

	"github.com/huntworks/geohunt/internal/game"
	"github.com/huntworks/geohunt/internal/geo"
	"github.com/huntworks/geohunt/internal/route"
)

// RouteResponse is a suggested visit order for the remaining evidence,
// starting from the player's position. Stops name the POI, never the
// exact coordinate.
type RouteResponse struct {
	Stops               []RouteStop `json:"stops"`
	TotalDistanceMeters float64     `json:"totalDistanceMeters"`
}

type RouteStop struct {
	EvidenceID string      `json:"evidenceId"`
	POIName    string      `json:"poiName"`
	POIType    geo.POIType `json:"poiType"`
}

func handleRoute(games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := coordinateQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "lat and lng query parameters are required")
			return
		}

		sess, err := games.Get(r.Context(), gameIDFrom(r), playerFrom(r))
		if err != nil {
			writeGameError(w, err)
			return
		}

		remaining := sess.Remaining()
		if len(remaining) == 0 {
			writeJSON(w, http.StatusOK, RouteResponse{Stops: []RouteStop{}})
			return
		}

		points := make([]geo.Coordinate, 0, len(remaining)+1)
		points = append(points, loc)
		for _, ev := range remaining {
			points = append(points, ev.Location)
		}

		sol := route.Solve(points)

		resp := RouteResponse{TotalDistanceMeters: sol.TotalDistance}
		for _, idx := range sol.Order[1:] {
			ev := remaining[idx-1]
			resp.Stops = append(resp.Stops, RouteStop{
				EvidenceID: ev.ID,
				POIName:    ev.POIName,
				POIType:    ev.POIType,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
