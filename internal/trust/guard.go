package trust

import (
	"fmt"
	"math"
	"time"
)

const (
	// maxAccuracyMeters is the minimum acceptable fix quality. Anything
	// coarser is rejected before the pipeline runs.
	maxAccuracyMeters = 100.0

	// maxFixAgeSeconds rejects stale or future-dated fixes.
	maxFixAgeSeconds = 300.0

	// maxSpeedMetersPerSecond is implausible for a pedestrian game.
	maxSpeedMetersPerSecond = 50.0
)

// ReadingError reports why a sample failed the basic sanity check.
type ReadingError struct {
	Reason string
}

func (e *ReadingError) Error() string {
	return "invalid reading: " + e.Reason
}

// CheckReading runs the basic sanity checks on a raw sample. It fails
// closed: any failure returns a *ReadingError with a specific reason and
// no further computation should occur.
func CheckReading(sample LocationSample, now time.Time) error {
	if sample.Coordinate.Lat < -90 || sample.Coordinate.Lat > 90 {
		return &ReadingError{Reason: fmt.Sprintf("latitude out of range: %f", sample.Coordinate.Lat)}
	}
	if sample.Coordinate.Lng < -180 || sample.Coordinate.Lng > 180 {
		return &ReadingError{Reason: fmt.Sprintf("longitude out of range: %f", sample.Coordinate.Lng)}
	}

	if sample.Accuracy.HorizontalAccuracyMeters > maxAccuracyMeters {
		return &ReadingError{Reason: fmt.Sprintf("accuracy too low: %.1fm", sample.Accuracy.HorizontalAccuracyMeters)}
	}

	age := math.Abs(now.Sub(sample.Accuracy.CapturedAt).Seconds())
	if age > maxFixAgeSeconds {
		return &ReadingError{Reason: fmt.Sprintf("fix timestamp too old or in the future: %.0fs", age)}
	}

	if sample.SpeedMetersPerSecond != nil && *sample.SpeedMetersPerSecond > maxSpeedMetersPerSecond {
		return &ReadingError{Reason: fmt.Sprintf("implausible speed: %.1fm/s", *sample.SpeedMetersPerSecond)}
	}

	return nil
}
