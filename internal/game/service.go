package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/huntworks/geohunt/internal/geo"
)

var (
	ErrEvidenceNotFound = errors.New("evidence not found")

	ErrGameNotActive   = errors.New("game is not active")
	ErrForbidden       = errors.New("player does not own this game")
	ErrTooManyGames    = errors.New("too many active games")
	ErrInvalidLocation = errors.New("invalid location")
	ErrNotEnoughPOIs   = errors.New("not enough points of interest nearby")
)

// POIFinder locates candidate evidence sites around the player.
type POIFinder interface {
	NearbyPOIs(ctx context.Context, center geo.Coordinate, radiusMeters int) ([]geo.POI, error)
}

// StoryTeller generates the narrative: scenario, evidence text, and
// deduction reactions. Implementations may call an LLM or fall back to
// templates.
type StoryTeller interface {
	GenerateScenario(ctx context.Context, req ScenarioRequest) (Scenario, error)
	GenerateEvidence(ctx context.Context, scenario Scenario, pois []geo.POI, count int) ([]Evidence, error)
	JudgeDeduction(ctx context.Context, scenario Scenario, suspectName, reasoning string) ([]CharacterReaction, error)
}

// ScenarioRequest parameterizes scenario generation.
type ScenarioRequest struct {
	Difficulty   Difficulty
	POITypes     []geo.POIType
	SuspectRange [2]int
}

// CharacterReaction is a suspect's response to an accusation.
type CharacterReaction struct {
	CharacterName string `json:"characterName"`
	Reaction      string `json:"reaction"`
}

// DeductionResult is the verdict on a submitted accusation.
type DeductionResult struct {
	Correct     bool                `json:"correct"`
	Culprit     string              `json:"culprit"`
	Reactions   []CharacterReaction `json:"reactions"`
	Score       FinalScore          `json:"score"`
	Explanation string              `json:"explanation"`
}

// Hint is an indirect pointer to an undiscovered evidence location. Using
// one costs score at deduction time.
type Hint struct {
	EvidenceID string `json:"evidenceId"`
	Text       string `json:"hint"`
	Discovered bool   `json:"discovered"`
	Penalty    int    `json:"penalty"`
}

// Service owns game lifecycle outside the discovery hot path: creation,
// hints, nearby lookup, and deduction.
type Service struct {
	sessions SessionStore
	pois     POIFinder
	stories  StoryTeller
	history  CompletionLog // optional
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(sessions SessionStore, pois POIFinder, stories StoryTeller, history CompletionLog, logger *slog.Logger) *Service {
	return &Service{
		sessions: sessions,
		pois:     pois,
		stories:  stories,
		history:  history,
		logger:   logger,
		now:      time.Now,
	}
}

const (
	maxActiveGamesPerPlayer = 3
	poiSearchRadiusMeters   = 1000
	hintPenalty             = 5
)

// NewGame builds a fresh session anchored at the player's location: finds
// nearby POIs, generates a scenario and evidence placements, persists the
// session.
func (s *Service) NewGame(ctx context.Context, playerID string, location geo.Coordinate, difficulty Difficulty) (*Session, error) {
	if !location.Valid() {
		return nil, ErrInvalidLocation
	}

	active, err := s.sessions.ActiveCountByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if active >= maxActiveGamesPerPlayer {
		return nil, ErrTooManyGames
	}

	pois, err := s.pois.NearbyPOIs(ctx, location, poiSearchRadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("finding nearby POIs: %w", err)
	}

	suitable := make([]geo.POI, 0, len(pois))
	for _, p := range pois {
		if p.SuitableForEvidence() {
			suitable = append(suitable, p)
		}
	}
	if len(suitable) < 3 {
		return nil, ErrNotEnoughPOIs
	}

	poiTypes := make([]geo.POIType, 0, len(suitable))
	for _, p := range suitable {
		poiTypes = append(poiTypes, p.Type)
	}

	scenario, err := s.stories.GenerateScenario(ctx, ScenarioRequest{
		Difficulty:   difficulty,
		POITypes:     poiTypes,
		SuspectRange: suspectRange(difficulty),
	})
	if err != nil {
		return nil, fmt.Errorf("generating scenario: %w", err)
	}

	count := evidenceCount(difficulty)
	if count > len(suitable) {
		count = len(suitable)
	}
	evidence, err := s.stories.GenerateEvidence(ctx, scenario, suitable[:count], count)
	if err != nil {
		return nil, fmt.Errorf("generating evidence: %w", err)
	}

	now := s.now()
	sess := &Session{
		GameID:             uuid.NewString(),
		PlayerID:           playerID,
		Status:             StatusActive,
		Difficulty:         difficulty,
		Scenario:           scenario,
		EvidenceList:       evidence,
		DiscoveredEvidence: []string{},
		PlayerLocation:     location,
		Rules:              DefaultRules(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	s.logger.Info("game created",
		"game_id", sess.GameID,
		"player_id", playerID,
		"difficulty", difficulty,
		"evidence_count", len(evidence),
	)
	return sess, nil
}

// ListGames returns every session the player owns, active or finished.
func (s *Service) ListGames(ctx context.Context, playerID string) ([]*Session, error) {
	return s.sessions.ListByPlayer(ctx, playerID)
}

// Get loads a session, enforcing ownership.
func (s *Service) Get(ctx context.Context, gameID, playerID string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if sess.PlayerID != playerID {
		return nil, ErrForbidden
	}
	return sess, nil
}

// NearbyEvidence lists undiscovered evidence within the session's
// discovery radius of the player.
func (s *Service) NearbyEvidence(ctx context.Context, gameID, playerID string, location geo.Coordinate) ([]Evidence, error) {
	sess, err := s.Get(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	var nearby []Evidence
	for _, ev := range sess.Remaining() {
		if geo.Distance(location, ev.Location) <= sess.Rules.DiscoveryRadius {
			nearby = append(nearby, ev)
		}
	}
	return nearby, nil
}

// EvidenceHint returns a POI-flavored hint for one evidence item and
// records the hint use on the session.
func (s *Service) EvidenceHint(ctx context.Context, gameID, playerID, evidenceID string) (Hint, error) {
	sess, err := s.Get(ctx, gameID, playerID)
	if err != nil {
		return Hint{}, err
	}

	ev := sess.Evidence(evidenceID)
	if ev == nil {
		return Hint{}, ErrEvidenceNotFound
	}

	if sess.Discovered(evidenceID) {
		return Hint{EvidenceID: evidenceID, Text: "This evidence has already been discovered.", Discovered: true}, nil
	}

	text := fmt.Sprintf("Try searching near %s.", ev.POIName)
	if flavor, ok := poiHints[ev.POIType]; ok {
		text += " " + flavor
	}

	sess.HintsUsed++
	sess.UpdatedAt = s.now()
	if err := s.sessions.Put(ctx, sess); err != nil {
		return Hint{}, fmt.Errorf("recording hint use: %w", err)
	}

	return Hint{EvidenceID: evidenceID, Text: text, Penalty: hintPenalty}, nil
}

var poiHints = map[geo.POIType]string{
	geo.POIRestaurant: "Somewhere that smells of good food.",
	geo.POICafe:       "Follow the smell of coffee.",
	geo.POIPark:       "Somewhere green and open.",
	geo.POIStation:    "A busy place where people come and go.",
	geo.POILandmark:   "A spot this area is famous for.",
	geo.POIShop:       "Somewhere you could buy something.",
	geo.POILibrary:    "A quiet place full of stories.",
}

// SubmitDeduction judges the accusation, computes the final score, and
// completes the game.
func (s *Service) SubmitDeduction(ctx context.Context, gameID, playerID, suspectName, reasoning string) (DeductionResult, error) {
	sess, err := s.Get(ctx, gameID, playerID)
	if err != nil {
		return DeductionResult{}, err
	}
	if sess.Status != StatusActive {
		return DeductionResult{}, ErrGameNotActive
	}

	correct := sess.Scenario.IsCulprit(suspectName)

	reactions, err := s.stories.JudgeDeduction(ctx, sess.Scenario, suspectName, reasoning)
	if err != nil {
		// Narrative flavor is optional; the verdict is not.
		s.logger.Warn("deduction reactions unavailable", "game_id", gameID, "error", err)
		reactions = nil
	}

	now := s.now()
	elapsed := int(now.Sub(sess.CreatedAt).Seconds())
	score := CalculateFinalScore(
		len(sess.DiscoveredEvidence),
		len(sess.EvidenceList),
		correct,
		elapsed,
		sess.Difficulty,
		sess.HintsUsed,
		sess.Score,
	)

	sess.Complete(score, now)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return DeductionResult{}, fmt.Errorf("persisting completion: %w", err)
	}

	if s.history != nil {
		foundRate := 0.0
		if len(sess.EvidenceList) > 0 {
			foundRate = float64(len(sess.DiscoveredEvidence)) / float64(len(sess.EvidenceList))
		}
		rec := CompletionRecord{
			GameID:       sess.GameID,
			PlayerID:     sess.PlayerID,
			Title:        sess.Scenario.Title,
			Difficulty:   sess.Difficulty,
			Score:        score.TotalScore,
			DurationSecs: elapsed,
			FoundRate:    foundRate,
			CompletedAt:  now.UTC().Format(time.RFC3339),
		}
		if err := s.history.RecordCompletion(ctx, rec); err != nil {
			s.logger.Warn("recording game history failed", "game_id", gameID, "error", err)
		}
	}

	s.logger.Info("deduction submitted",
		"game_id", gameID,
		"player_id", playerID,
		"correct", correct,
		"total_score", score.TotalScore,
	)

	return DeductionResult{
		Correct:     correct,
		Culprit:     sess.Scenario.Culprit,
		Reactions:   reactions,
		Score:       score,
		Explanation: fmt.Sprintf("The culprit was %s. Motive: %s", sess.Scenario.Culprit, sess.Scenario.Motive),
	}, nil
}

func suspectRange(d Difficulty) [2]int {
	switch d {
	case DifficultyEasy:
		return [2]int{3, 4}
	case DifficultyHard:
		return [2]int{6, 8}
	default:
		return [2]int{4, 6}
	}
}

func evidenceCount(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return 3
	case DifficultyHard:
		return 7
	default:
		return 5
	}
}
