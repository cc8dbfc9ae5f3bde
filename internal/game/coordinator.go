package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/huntworks/geohunt/internal/trust"
)

// OutcomeCode classifies a discovery attempt. All expected conditions are
// returned as codes, never as errors.
type OutcomeCode string

const (
	CodeDiscovered        OutcomeCode = "discovered"
	CodeAlreadyDiscovered OutcomeCode = "already_discovered"
	CodeNotFound          OutcomeCode = "not_found"
	CodeGameNotActive     OutcomeCode = "game_not_active"
	CodeForbidden         OutcomeCode = "forbidden"
	CodeInvalidReading    OutcomeCode = "invalid_reading"
	CodeTooFar            OutcomeCode = "too_far"
	CodeLowAccuracy       OutcomeCode = "low_accuracy"
	CodeLikelySpoofed     OutcomeCode = "likely_spoofed"
)

// DiscoveryOutcome is the result of one discovery attempt.
type DiscoveryOutcome struct {
	Success        bool                    `json:"success"`
	Code           OutcomeCode             `json:"code"`
	Evidence       *Evidence               `json:"evidence,omitempty"`
	DistanceMeters float64                 `json:"distance"`
	BonusPoints    int                     `json:"bonusPoints"`
	NextClue       string                  `json:"nextClue,omitempty"`
	Message        string                  `json:"message"`
	Validation     *trust.ValidationResult `json:"validation,omitempty"`
}

// Coordinator applies validated discovery attempts to game sessions. The
// per-game mutex is the only critical section in the engine: it guarantees
// two concurrent duplicate requests cannot both award points.
type Coordinator struct {
	sessions  SessionStore
	detector  *trust.SpoofDetector
	validator *trust.Validator
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(sessions SessionStore, detector *trust.SpoofDetector, validator *trust.Validator, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		sessions:  sessions,
		detector:  detector,
		validator: validator,
		logger:    logger,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// gameLock returns the mutex serializing mutations of one game session.
func (c *Coordinator) gameLock(gameID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[gameID] = l
	}
	return l
}

// dropGameLock prunes the serialization entry for a game that can no
// longer change (missing or out of StatusActive), keeping the lock map
// from growing for the process lifetime.
func (c *Coordinator) dropGameLock(gameID string) {
	c.mu.Lock()
	delete(c.locks, gameID)
	c.mu.Unlock()
}

// AttemptDiscovery runs the full discovery pipeline for one evidence item:
// idempotency check, evidence lookup, spoof assessment, location-trust
// validation, and finally the one-way state transition with scoring.
// Unexpected faults fail closed: the discovery is rejected, never
// default-accepted.
func (c *Coordinator) AttemptDiscovery(ctx context.Context, gameID, playerID, evidenceID string, sample trust.LocationSample) (DiscoveryOutcome, error) {
	lock := c.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := c.sessions.Get(ctx, gameID)
	if errors.Is(err, ErrNotFound) {
		c.dropGameLock(gameID)
		return DiscoveryOutcome{Code: CodeNotFound, Message: "game not found"}, nil
	}
	if err != nil {
		return DiscoveryOutcome{}, err
	}

	if sess.PlayerID != playerID {
		return DiscoveryOutcome{Code: CodeForbidden, Message: "player does not own this game"}, nil
	}
	if sess.Status != StatusActive {
		c.dropGameLock(gameID)
		return DiscoveryOutcome{Code: CodeGameNotActive, Message: "game is not active"}, nil
	}

	// Idempotent re-entry: success-shaped no-op, no score change.
	if sess.Discovered(evidenceID) {
		return DiscoveryOutcome{
			Success:  true,
			Code:     CodeAlreadyDiscovered,
			Evidence: sess.Evidence(evidenceID),
			Message:  "this evidence has already been discovered",
		}, nil
	}

	evidence := sess.Evidence(evidenceID)
	if evidence == nil {
		return DiscoveryOutcome{Code: CodeNotFound, Message: "evidence not found"}, nil
	}

	assessment, err := c.detector.Assess(ctx, playerID, sample)
	if err != nil {
		return DiscoveryOutcome{}, fmt.Errorf("assessing sample: %w", err)
	}
	if assessment.IsLikelySpoofed {
		// Soft signal: generic message to the player, detail to the logs.
		c.logger.Warn("likely spoofed location",
			"game_id", gameID,
			"player_id", playerID,
			"risk_score", assessment.RiskScore,
			"indicators", assessment.Indicators,
		)
		return DiscoveryOutcome{
			Code:    CodeLikelySpoofed,
			Message: "we had a problem verifying your location, please try again",
		}, nil
	}

	target := trust.Target{Coordinate: evidence.Location, POIType: evidence.POIType}
	result := c.validator.ValidateDiscovery(sample, target, c.now())
	// The detector saw the history before this sample was recorded, so its
	// movement check reflects actual displacement since the previous fix.
	result.Diagnostics.MovementValidation = assessment.Movement
	if !result.IsValid {
		return c.rejectOutcome(result), nil
	}

	now := c.now()
	if !sess.MarkDiscovered(evidenceID, now) {
		// Lost a race we should have won under the game lock; treat as the
		// idempotent case anyway.
		return DiscoveryOutcome{Success: true, Code: CodeAlreadyDiscovered, Evidence: evidence}, nil
	}

	bonus := DiscoveryBonus(evidence.Importance, result.DistanceToTargetMeters)
	sess.Score += bonus

	outcome := DiscoveryOutcome{
		Success:        true,
		Code:           CodeDiscovered,
		Evidence:       evidence,
		DistanceMeters: result.DistanceToTargetMeters,
		BonusPoints:    bonus,
		NextClue:       nextClue(sess.Remaining()),
		Message:        fmt.Sprintf("You discovered %q!", evidence.Name),
		Validation:     &result,
	}

	if err := c.sessions.Put(ctx, sess); err != nil {
		return DiscoveryOutcome{}, fmt.Errorf("persisting discovery: %w", err)
	}

	c.logger.Info("evidence discovered",
		"game_id", gameID,
		"player_id", playerID,
		"evidence_id", evidenceID,
		"distance_m", result.DistanceToTargetMeters,
		"bonus", bonus,
	)

	return outcome, nil
}

func (c *Coordinator) rejectOutcome(result trust.ValidationResult) DiscoveryOutcome {
	d := result.Diagnostics

	if d.Reason != "" {
		return DiscoveryOutcome{
			Code:       CodeInvalidReading,
			Message:    "invalid location reading: " + d.Reason,
			Validation: &result,
		}
	}

	code := CodeLowAccuracy
	if result.AccuracyAdjustedDistanceMeters > 50 {
		code = CodeTooFar
	}
	return DiscoveryOutcome{
		Code:           code,
		DistanceMeters: result.DistanceToTargetMeters,
		Message: fmt.Sprintf("You are %.1fm away (GPS accuracy %.1fm). Get within %.0fm of the target.",
			result.DistanceToTargetMeters, d.GPSAccuracyMeters, d.AdvisoryRadius),
		Validation: &result,
	}
}

// nextClue points the player at what is left to find.
func nextClue(remaining []Evidence) string {
	switch {
	case len(remaining) == 0:
		return "You've found every piece of evidence. Time to name the culprit."
	case len(remaining) == 1:
		return fmt.Sprintf("The last piece of evidence should be near %s.", remaining[0].POIName)
	case len(remaining) <= 3:
		names := make([]string, 0, 2)
		for _, ev := range remaining[:2] {
			names = append(names, ev.POIName)
		}
		return fmt.Sprintf("Try searching around %s.", strings.Join(names, ", "))
	}
	return ""
}
