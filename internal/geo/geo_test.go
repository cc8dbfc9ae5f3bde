package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	p := Coordinate{Lat: 35.4437, Lng: 139.6380} // Yokohama
	if d := Distance(p, p); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Coordinate{Lat: 35.6812, Lng: 139.7671} // Tokyo station
	b := Coordinate{Lat: 35.6586, Lng: 139.7454} // Tokyo tower

	d1 := Distance(a, b)
	d2 := Distance(b, a)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Tokyo station to Tokyo tower is roughly 3.1 km.
	a := Coordinate{Lat: 35.6812, Lng: 139.7671}
	b := Coordinate{Lat: 35.6586, Lng: 139.7454}

	d := Distance(a, b)
	if d < 3000 || d > 3400 {
		t.Errorf("expected ~3.1km, got %.0fm", d)
	}
}

func TestDistanceSmallOffset(t *testing.T) {
	// ~0.001 degrees of latitude is about 111m.
	a := Coordinate{Lat: 35.0, Lng: 139.0}
	b := Coordinate{Lat: 35.001, Lng: 139.0}

	d := Distance(a, b)
	if d < 105 || d > 117 {
		t.Errorf("expected ~111m, got %.1fm", d)
	}
}

func TestCoordinateValid(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinate
		want bool
	}{
		{"ok", Coordinate{Lat: 35.0, Lng: 139.0}, true},
		{"lat too high", Coordinate{Lat: 90.01, Lng: 0}, false},
		{"lat too low", Coordinate{Lat: -90.01, Lng: 0}, false},
		{"lng too high", Coordinate{Lat: 0, Lng: 180.01}, false},
		{"lng too low", Coordinate{Lat: 0, Lng: -180.01}, false},
		{"boundary", Coordinate{Lat: 90, Lng: -180}, true},
	}
	for _, tc := range cases {
		if got := tc.c.Valid(); got != tc.want {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSuitableForEvidence(t *testing.T) {
	if !(POI{Type: POICafe}).SuitableForEvidence() {
		t.Error("cafe should be suitable")
	}
	if (POI{Type: POIHospital}).SuitableForEvidence() {
		t.Error("hospital should not be suitable")
	}
}
