// Package trust decides whether a player-submitted GPS fix can be trusted:
// it sanity-checks raw readings, scores their confidence, keeps a short
// per-player movement history, and flags fixes that look fabricated.
package trust

import (
	"time"

	"github.com/huntworks/geohunt/internal/geo"
)

// Provider identifies the source of a location fix as reported by the
// client device.
type Provider string

const (
	ProviderGPS     Provider = "gps"
	ProviderNetwork Provider = "network"
	ProviderPassive Provider = "passive"
	ProviderUnknown Provider = "unknown"
)

// Normalize maps unrecognized provider strings to ProviderUnknown.
func (p Provider) Normalize() Provider {
	switch p {
	case ProviderGPS, ProviderNetwork, ProviderPassive:
		return p
	}
	return ProviderUnknown
}

// AccuracyReport carries the device's own estimate of fix quality.
type AccuracyReport struct {
	HorizontalAccuracyMeters float64   `json:"horizontalAccuracy"`
	VerticalAccuracyMeters   *float64  `json:"verticalAccuracy,omitempty"`
	CapturedAt               time.Time `json:"capturedAt"`
	Provider                 Provider  `json:"provider"`
}

// LocationSample is one GPS fix submitted with a discovery attempt.
// Immutable once created.
type LocationSample struct {
	Coordinate           geo.Coordinate `json:"coordinate"`
	Accuracy             AccuracyReport `json:"accuracy"`
	SpeedMetersPerSecond *float64       `json:"speed,omitempty"`
	BearingDegrees       *float64       `json:"bearing,omitempty"`
	AltitudeMeters       *float64       `json:"altitude,omitempty"`
}

// ValidationResult is the outcome of validating one sample against one
// target coordinate.
type ValidationResult struct {
	IsValid                        bool        `json:"isValid"`
	ConfidenceScore                float64     `json:"confidenceScore"`
	DistanceToTargetMeters         float64     `json:"distanceToTarget"`
	AccuracyAdjustedDistanceMeters float64     `json:"accuracyAdjustedDistance"`
	Diagnostics                    Diagnostics `json:"diagnostics"`
}

// Diagnostics collects the detail behind a validation decision. The
// advisory radius and movement check are surfaced for user-facing
// messaging only; neither gates the decision.
type Diagnostics struct {
	Reason             string         `json:"reason,omitempty"`
	RawDistanceMeters  float64        `json:"rawDistance"`
	GPSAccuracyMeters  float64        `json:"gpsAccuracy"`
	AdvisoryRadius     float64        `json:"advisoryRadius"`
	HighAccuracy       bool           `json:"highAccuracy"`
	SecondsSinceFix    float64        `json:"secondsSinceFix"`
	Provider           Provider       `json:"provider"`
	MovementValidation *MovementCheck `json:"movementValidation,omitempty"`
}

// MovementCheck is informational movement-validation data computed against
// the previous history entry. It never gates validity.
type MovementCheck struct {
	Validation          string  `json:"validation"`
	IsPlausible         bool    `json:"isPlausible"`
	ImpliedSpeed        float64 `json:"impliedSpeed,omitempty"`
	SecondsSinceLastFix float64 `json:"secondsSinceLastFix,omitempty"`
	DistanceMoved       float64 `json:"distanceMoved,omitempty"`
}

// SpoofingAssessment is the outcome of inspecting one sample against the
// player's recent history. Movement is the informational walking-speed
// check, computed before the sample itself entered the history.
type SpoofingAssessment struct {
	IsLikelySpoofed bool            `json:"isLikelySpoofed"`
	Indicators      SpoofIndicators `json:"indicators"`
	RiskScore       float64         `json:"riskScore"`
	Movement        *MovementCheck  `json:"movement,omitempty"`
}

// SpoofIndicators are the four independent anomaly flags.
type SpoofIndicators struct {
	SuspiciousAccuracy    bool `json:"suspiciousAccuracy"`
	ImpossibleMovement    bool `json:"impossibleMovement"`
	LocationJump          bool `json:"locationJump"`
	ProviderInconsistency bool `json:"providerInconsistency"`
}
