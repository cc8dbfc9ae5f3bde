package trust

import "time"

// ConfidenceScore turns accuracy, distance-to-target, fix age and provider
// metadata into a [0,1] trust score. Starts at 1.0 and deducts for each
// weakness, then scales by the provider factor.
func ConfidenceScore(sample LocationSample, distanceMeters float64, now time.Time) float64 {
	score := 1.0

	if acc := sample.Accuracy.HorizontalAccuracyMeters; acc > 10 {
		score -= (acc - 10) * 0.01
	}

	if distanceMeters > 20 {
		score -= (distanceMeters - 20) * 0.01
	}

	if age := now.Sub(sample.Accuracy.CapturedAt).Seconds(); age > 10 {
		score -= age * 0.001
	}

	score *= providerFactor(sample.Accuracy.Provider)

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func providerFactor(p Provider) float64 {
	switch p.Normalize() {
	case ProviderGPS:
		return 1.0
	case ProviderNetwork:
		return 0.8
	case ProviderPassive:
		return 0.6
	default:
		return 0.5
	}
}
