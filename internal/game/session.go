// Package game holds the mystery-game domain: sessions, evidence, scoring,
// and the discovery coordinator that applies validated location fixes to
// game state.
package game

import (
	"time"

	"github.com/huntworks/geohunt/internal/geo"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
	StatusExpired   Status = "expired"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// Importance ranks how much a piece of evidence matters to the case.
type Importance string

const (
	ImportanceCritical   Importance = "critical"
	ImportanceImportant  Importance = "important"
	ImportanceMisleading Importance = "misleading"
	ImportanceBackground Importance = "background"
)

// Rules are the per-session game settings.
type Rules struct {
	DiscoveryRadius float64 `json:"discoveryRadius"`
	TimeLimit       *int    `json:"timeLimit,omitempty"`
	MaxEvidence     int     `json:"maxEvidence"`
	HintEnabled     bool    `json:"hintEnabled"`
}

func DefaultRules() Rules {
	return Rules{DiscoveryRadius: 50, MaxEvidence: 8, HintEnabled: true}
}

// Suspect is one character in the scenario.
type Suspect struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Alibi       string `json:"alibi,omitempty"`
}

// Scenario is the generated mystery the session plays out.
type Scenario struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Suspects    []Suspect `json:"suspects"`
	Culprit     string    `json:"culprit"`
	Motive      string    `json:"motive"`
}

// IsCulprit reports whether the named suspect is the culprit.
func (s Scenario) IsCulprit(name string) bool {
	return name != "" && name == s.Culprit
}

// Evidence is one discoverable item placed at a POI. Its location is the
// target coordinate the trust engine validates against.
type Evidence struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	DiscoveryText string         `json:"discoveryText"`
	Importance    Importance     `json:"importance"`
	Location      geo.Coordinate `json:"location"`
	POIName       string         `json:"poiName"`
	POIType       geo.POIType    `json:"poiType"`
	DiscoveredAt  *time.Time     `json:"discoveredAt,omitempty"`
}

// Session is one running game for one player.
type Session struct {
	GameID             string         `json:"gameId"`
	PlayerID           string         `json:"playerId"`
	Status             Status         `json:"status"`
	Difficulty         Difficulty     `json:"difficulty"`
	Scenario           Scenario       `json:"scenario"`
	EvidenceList       []Evidence     `json:"evidenceList"`
	DiscoveredEvidence []string       `json:"discoveredEvidence"`
	PlayerLocation     geo.Coordinate `json:"playerLocation"`
	Rules              Rules          `json:"rules"`
	HintsUsed          int            `json:"hintsUsed"`
	Score              int            `json:"score"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	CompletedAt        *time.Time     `json:"completedAt,omitempty"`
	FinalScore         *FinalScore    `json:"finalScore,omitempty"`
}

// Evidence returns the evidence with the given id, or nil.
func (s *Session) Evidence(id string) *Evidence {
	for i := range s.EvidenceList {
		if s.EvidenceList[i].ID == id {
			return &s.EvidenceList[i]
		}
	}
	return nil
}

// Discovered reports whether the evidence id has already been found.
func (s *Session) Discovered(id string) bool {
	for _, d := range s.DiscoveredEvidence {
		if d == id {
			return true
		}
	}
	return false
}

// MarkDiscovered records the one-way UNDISCOVERED -> DISCOVERED transition.
// Returns false if the evidence was already discovered.
func (s *Session) MarkDiscovered(id string, at time.Time) bool {
	if s.Discovered(id) {
		return false
	}
	s.DiscoveredEvidence = append(s.DiscoveredEvidence, id)
	if ev := s.Evidence(id); ev != nil {
		t := at
		ev.DiscoveredAt = &t
	}
	s.UpdatedAt = at
	return true
}

// Remaining returns the undiscovered evidence in placement order.
func (s *Session) Remaining() []Evidence {
	var out []Evidence
	for _, ev := range s.EvidenceList {
		if !s.Discovered(ev.ID) {
			out = append(out, ev)
		}
	}
	return out
}

// Complete moves the session to its terminal state.
func (s *Session) Complete(score FinalScore, at time.Time) {
	s.Status = StatusCompleted
	s.CompletedAt = &at
	s.FinalScore = &score
	s.UpdatedAt = at
}
