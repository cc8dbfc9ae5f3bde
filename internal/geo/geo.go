// Package geo defines the core geospatial types and math shared by the
// whole service.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is within the representable
// latitude/longitude ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Distance returns the great-circle distance between a and b in meters,
// computed with the haversine formula. Symmetric; zero for identical points.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// POIType classifies a point of interest. The set mirrors what the Places
// lookup returns; unlisted types are carried through as plain strings.
type POIType string

const (
	POIRestaurant POIType = "restaurant"
	POIPark       POIType = "park"
	POILandmark   POIType = "landmark"
	POICafe       POIType = "cafe"
	POIStation    POIType = "station"
	POIShop       POIType = "shop"
	POIOffice     POIType = "office"
	POISchool     POIType = "school"
	POIHospital   POIType = "hospital"
	POILibrary    POIType = "library"
)

// POI is a named place a piece of evidence can be attached to.
type POI struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     POIType    `json:"type"`
	Location Coordinate `json:"location"`
	Address  string     `json:"address,omitempty"`
}

// DistanceFrom returns the distance in meters from loc to the POI.
func (p POI) DistanceFrom(loc Coordinate) float64 {
	return Distance(loc, p.Location)
}

// SuitableForEvidence reports whether the POI type works as an evidence
// site. Hospitals, offices and schools are excluded.
func (p POI) SuitableForEvidence() bool {
	switch p.Type {
	case POIRestaurant, POICafe, POIPark, POILandmark, POIShop, POILibrary:
		return true
	}
	return false
}
