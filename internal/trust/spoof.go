package trust

import (
	"context"

	"github.com/huntworks/geohunt/internal/geo"
)

const (
	// impossibleSpeedMetersPerSecond (~100 km/h) between consecutive
	// samples flags fabricated movement.
	impossibleSpeedMetersPerSecond = 28.0

	// suspiciousAccuracyMeters: real receivers do not report sub-meter
	// horizontal accuracy.
	suspiciousAccuracyMeters = 1.0

	// A jump of more than jumpDistanceMeters in under jumpWindowSeconds
	// flags a teleport.
	jumpDistanceMeters = 100.0
	jumpWindowSeconds  = 5.0

	// maxWalkingSpeedMetersPerSecond is the informational movement check
	// attached to diagnostics. It does not gate validity or spoof flags.
	maxWalkingSpeedMetersPerSecond = 5.0

	// spoofLookback is how many history entries movement analysis inspects.
	spoofLookback = 5
)

// SpoofDetector inspects samples against a player's recent history for
// anomaly indicators. It is a heuristic deterrent, not a proof system.
type SpoofDetector struct {
	history HistoryStore
}

func NewSpoofDetector(history HistoryStore) *SpoofDetector {
	return &SpoofDetector{history: history}
}

// Assess raises the four spoofing indicators for the sample and records it
// in the player's history. Every call appends, so retries build up the
// movement trail the next call is judged against. The informational
// movement check is computed here too, against the trail as it stood
// before this sample was recorded.
func (d *SpoofDetector) Assess(ctx context.Context, playerID string, sample LocationSample) (SpoofingAssessment, error) {
	var ind SpoofIndicators

	if sample.Accuracy.HorizontalAccuracyMeters < suspiciousAccuracyMeters {
		ind.SuspiciousAccuracy = true
	}

	recent, err := d.history.Recent(ctx, playerID, spoofLookback)
	if err != nil {
		return SpoofingAssessment{}, err
	}
	movement := CheckMovement(recent, sample)
	if len(recent) > 0 {
		analyzeMovement(recent, sample, &ind)
	}

	if err := d.history.Append(ctx, playerID, sample); err != nil {
		return SpoofingAssessment{}, err
	}

	count := 0
	for _, raised := range []bool{ind.SuspiciousAccuracy, ind.ImpossibleMovement, ind.LocationJump, ind.ProviderInconsistency} {
		if raised {
			count++
		}
	}

	return SpoofingAssessment{
		IsLikelySpoofed: count > 0,
		Indicators:      ind,
		RiskScore:       float64(count) / 4.0,
		Movement:        movement,
	}, nil
}

func analyzeMovement(recent []LocationSample, current LocationSample, ind *SpoofIndicators) {
	prev := recent[len(recent)-1]

	dt := current.Accuracy.CapturedAt.Sub(prev.Accuracy.CapturedAt).Seconds()
	if dt > 0 {
		dist := geo.Distance(current.Coordinate, prev.Coordinate)

		if dist/dt > impossibleSpeedMetersPerSecond {
			ind.ImpossibleMovement = true
		}
		if dt < jumpWindowSeconds && dist > jumpDistanceMeters {
			ind.LocationJump = true
		}
	}

	// Mixing gps with other providers across the last few samples is a
	// known pattern of mock-location apps.
	start := len(recent) - 3
	if start < 0 {
		start = 0
	}
	providers := make(map[Provider]struct{})
	sawGPS := false
	for _, r := range recent[start:] {
		p := r.Accuracy.Provider.Normalize()
		providers[p] = struct{}{}
		if p == ProviderGPS {
			sawGPS = true
		}
	}
	if len(providers) > 1 && sawGPS {
		ind.ProviderInconsistency = true
	}
}

// CheckMovement computes the informational walking-speed check against the
// player's previous sample. The result is attached to validation
// diagnostics and never gates acceptance.
func CheckMovement(recent []LocationSample, current LocationSample) *MovementCheck {
	if len(recent) == 0 {
		return &MovementCheck{Validation: "no_history", IsPlausible: true}
	}

	prev := recent[len(recent)-1]
	dt := current.Accuracy.CapturedAt.Sub(prev.Accuracy.CapturedAt).Seconds()
	if dt <= 0 {
		return &MovementCheck{Validation: "invalid_time", IsPlausible: false}
	}

	dist := geo.Distance(current.Coordinate, prev.Coordinate)
	speed := dist / dt

	return &MovementCheck{
		Validation:          "movement_check",
		IsPlausible:         speed <= maxWalkingSpeedMetersPerSecond,
		ImpliedSpeed:        speed,
		SecondsSinceLastFix: dt,
		DistanceMoved:       dist,
	}
}
