package trust

import "github.com/huntworks/geohunt/internal/geo"

const (
	// discoveryBaseRadiusMeters is the fixed gating threshold applied to
	// the accuracy-adjusted distance. This is the only radius that decides
	// acceptance.
	discoveryBaseRadiusMeters = 50.0

	minAdvisoryRadius = 20.0
	maxAdvisoryRadius = 100.0
)

// poiRadiusModifiers widen or narrow the advisory radius by place type.
// Parks are large, cafes are small.
var poiRadiusModifiers = map[geo.POIType]float64{
	geo.POIPark:       1.5,
	geo.POILandmark:   1.3,
	geo.POIStation:    1.2,
	geo.POILibrary:    1.0,
	geo.POICafe:       0.8,
	geo.POIRestaurant: 0.8,
}

// AdviseRadius computes the "get within Xm" guidance shown to the player
// for a target of the given POI type, widened when the device accuracy is
// poor. Advisory only: the accept/reject decision always uses the fixed
// base radius, never this value.
func AdviseRadius(horizontalAccuracyMeters float64, poiType geo.POIType) float64 {
	accuracyFactor := horizontalAccuracyMeters / 10.0
	if accuracyFactor > 2.0 {
		accuracyFactor = 2.0
	}

	radius := discoveryBaseRadiusMeters + accuracyFactor*10.0

	if mod, ok := poiRadiusModifiers[poiType]; ok {
		radius *= mod
	}

	if radius < minAdvisoryRadius {
		return minAdvisoryRadius
	}
	if radius > maxAdvisoryRadius {
		return maxAdvisoryRadius
	}
	return radius
}
