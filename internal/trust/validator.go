package trust

import (
	"errors"
	"time"

	"github.com/huntworks/geohunt/internal/geo"
)

// Target is the server-held coordinate a discovery attempt is validated
// against. Owned by the game session store; read-only here.
type Target struct {
	Coordinate geo.Coordinate
	POIType    geo.POIType
}

// minConfidence is the trust score a sample must reach to be accepted.
const minConfidence = 0.7

// Validator turns one sample plus one target into an accept/reject
// decision with diagnostics. Pure synchronous compute over the inputs;
// callers pass the current time explicitly so tests control staleness.
// The informational movement check lives on SpoofingAssessment, where the
// history is read before the current sample is recorded; the caller
// attaches it to the diagnostics.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDiscovery runs the decision pipeline:
//
//  1. basic sanity check (fails closed with the specific reason)
//  2. haversine distance to target
//  3. confidence score
//  4. accuracy-adjusted distance = max(0, distance - accuracy)
//  5. accept iff adjusted distance <= the fixed base radius AND
//     confidence >= 0.7
//
// The advisory radius appears in diagnostics for player messaging but
// never participates in step 5.
func (v *Validator) ValidateDiscovery(sample LocationSample, target Target, now time.Time) ValidationResult {
	if err := CheckReading(sample, now); err != nil {
		var re *ReadingError
		reason := err.Error()
		if errors.As(err, &re) {
			reason = re.Reason
		}
		return ValidationResult{
			IsValid: false,
			Diagnostics: Diagnostics{
				Reason:            reason,
				GPSAccuracyMeters: sample.Accuracy.HorizontalAccuracyMeters,
				Provider:          sample.Accuracy.Provider.Normalize(),
			},
		}
	}

	distance := geo.Distance(sample.Coordinate, target.Coordinate)
	confidence := ConfidenceScore(sample, distance, now)

	adjusted := distance - sample.Accuracy.HorizontalAccuracyMeters
	if adjusted < 0 {
		adjusted = 0
	}

	diag := Diagnostics{
		RawDistanceMeters: distance,
		GPSAccuracyMeters: sample.Accuracy.HorizontalAccuracyMeters,
		AdvisoryRadius:    AdviseRadius(sample.Accuracy.HorizontalAccuracyMeters, target.POIType),
		HighAccuracy:      sample.Accuracy.HorizontalAccuracyMeters <= 10,
		SecondsSinceFix:   now.Sub(sample.Accuracy.CapturedAt).Seconds(),
		Provider:          sample.Accuracy.Provider.Normalize(),
	}

	return ValidationResult{
		IsValid:                        adjusted <= discoveryBaseRadiusMeters && confidence >= minConfidence,
		ConfidenceScore:                confidence,
		DistanceToTargetMeters:         distance,
		AccuracyAdjustedDistanceMeters: adjusted,
		Diagnostics:                    diag,
	}
}
