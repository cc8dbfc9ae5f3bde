package route

import (
	"math"
	"testing"

	"github.com/huntworks/geohunt/internal/geo"
)

// offsetNorth returns a point the given number of meters due north of origin.
func offsetNorth(origin geo.Coordinate, meters float64) geo.Coordinate {
	return geo.Coordinate{
		Lat: origin.Lat + meters/6371000*(180/math.Pi),
		Lng: origin.Lng,
	}
}

func TestSolveEmptyAndSingle(t *testing.T) {
	got := Solve(nil)
	if len(got.Order) != 0 || got.TotalDistance != 0 {
		t.Fatalf("empty input: got %+v", got)
	}

	got = Solve([]geo.Coordinate{{Lat: -12.05, Lng: -77.03}})
	if len(got.Order) != 1 || got.Order[0] != 0 {
		t.Fatalf("single point: got %+v", got)
	}
}

func TestSolveOrdersCollinearPoints(t *testing.T) {
	origin := geo.Coordinate{Lat: -12.0464, Lng: -77.0428}
	// Points given out of order; the shortest tour from the start walks
	// them north in increasing distance.
	points := []geo.Coordinate{
		origin,
		offsetNorth(origin, 300),
		offsetNorth(origin, 100),
		offsetNorth(origin, 200),
	}

	got := Solve(points)
	want := []int{0, 2, 3, 1}
	for i := range want {
		if got.Order[i] != want[i] {
			t.Fatalf("order = %v, want %v", got.Order, want)
		}
	}
	if math.Abs(got.TotalDistance-300) > 1 {
		t.Errorf("total distance = %.1f, want ~300", got.TotalDistance)
	}
}

func TestSolveBruteForceBeatsGreedyTrap(t *testing.T) {
	// Greedy from the start grabs the nearby point first and then has to
	// backtrack; the exact solver should find the cheaper sweep.
	origin := geo.Coordinate{Lat: -12.0464, Lng: -77.0428}
	points := []geo.Coordinate{
		origin,
		offsetNorth(origin, 50),
		offsetNorth(origin, -40),
		offsetNorth(origin, 120),
	}

	got := Solve(points)
	greedy := solveNearestNeighbor(DistanceMatrix(points))
	if got.TotalDistance > greedy.TotalDistance+0.01 {
		t.Errorf("exact tour %.1f worse than greedy %.1f", got.TotalDistance, greedy.TotalDistance)
	}
	if got.Order[0] != 0 {
		t.Errorf("tour must start at the player position, got %v", got.Order)
	}
}

func TestSolveLargeSetUsesEveryPoint(t *testing.T) {
	origin := geo.Coordinate{Lat: -12.0464, Lng: -77.0428}
	points := []geo.Coordinate{origin}
	for i := 1; i <= 11; i++ {
		points = append(points, offsetNorth(origin, float64(i*37)))
	}

	got := Solve(points)
	if len(got.Order) != len(points) {
		t.Fatalf("order has %d entries, want %d", len(got.Order), len(points))
	}
	seen := make(map[int]bool)
	for _, idx := range got.Order {
		if seen[idx] {
			t.Fatalf("index %d visited twice in %v", idx, got.Order)
		}
		seen[idx] = true
	}
}
