// Package narrative generates the mystery content: scenarios, evidence
// placed at real POIs, and suspect reactions to an accusation. The primary
// implementation calls the Anthropic API; Templates is the offline
// fallback used when no key is configured.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/huntworks/geohunt/internal/game"
	"github.com/huntworks/geohunt/internal/geo"
)

const (
	defaultModel = "claude-sonnet-4-20250514"
	maxRetries   = 3
)

// Generator produces narrative content through the Anthropic messages API.
type Generator struct {
	client anthropic.Client
	model  anthropic.Model
	logger *slog.Logger
}

func NewGenerator(apiKey string, logger *slog.Logger) *Generator {
	return &Generator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(defaultModel),
		logger: logger,
	}
}

// GenerateScenario implements game.StoryTeller.
func (g *Generator) GenerateScenario(ctx context.Context, req game.ScenarioRequest) (game.Scenario, error) {
	prompt := fmt.Sprintf(`Create a short detective mystery scenario for a location-based game.

Difficulty: %s
Number of suspects: between %d and %d
The evidence will be hidden at places of these kinds: %s

Respond with ONLY a JSON object in this exact shape:
{
  "title": "...",
  "description": "2-3 sentence setup for the player",
  "suspects": [{"name": "...", "description": "...", "alibi": "..."}],
  "culprit": "name of one suspect",
  "motive": "one sentence"
}`,
		req.Difficulty, req.SuspectRange[0], req.SuspectRange[1], joinPOITypes(req.POITypes))

	text, err := g.complete(ctx, prompt, 2048)
	if err != nil {
		return game.Scenario{}, err
	}

	var scenario game.Scenario
	if err := json.Unmarshal([]byte(extractJSON(text)), &scenario); err != nil {
		return game.Scenario{}, fmt.Errorf("parsing scenario response: %w", err)
	}
	if scenario.Title == "" || len(scenario.Suspects) == 0 || scenario.Culprit == "" {
		return game.Scenario{}, errors.New("scenario response missing required fields")
	}
	if !scenario.IsCulprit(scenario.Culprit) || !suspectNamed(scenario, scenario.Culprit) {
		return game.Scenario{}, fmt.Errorf("culprit %q is not one of the suspects", scenario.Culprit)
	}
	return scenario, nil
}

// GenerateEvidence implements game.StoryTeller. Each item is bound to one
// of the supplied POIs; the model only writes the fiction.
func (g *Generator) GenerateEvidence(ctx context.Context, scenario game.Scenario, pois []geo.POI, count int) ([]game.Evidence, error) {
	if count > len(pois) {
		count = len(pois)
	}
	if count == 0 {
		return nil, errors.New("no POIs to place evidence at")
	}

	sites := make([]string, 0, count)
	for _, p := range pois[:count] {
		sites = append(sites, fmt.Sprintf("%s (%s)", p.Name, p.Type))
	}

	prompt := fmt.Sprintf(`Write %d pieces of evidence for this mystery, one per location, in order.

Mystery: %s. %s
Culprit: %s. Motive: %s.

Locations: %s

Importance balance: exactly one "critical", 2-3 "important", 1-2 "misleading", the rest "background".

Respond with ONLY a JSON array in this exact shape:
[{"name": "...", "description": "...", "discoveryText": "dramatic text shown on discovery", "importance": "critical|important|misleading|background"}]`,
		count, scenario.Title, scenario.Description, scenario.Culprit, scenario.Motive, strings.Join(sites, "; "))

	text, err := g.complete(ctx, prompt, 3072)
	if err != nil {
		return nil, err
	}

	var items []struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		DiscoveryText string `json:"discoveryText"`
		Importance    string `json:"importance"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &items); err != nil {
		return nil, fmt.Errorf("parsing evidence response: %w", err)
	}
	if len(items) == 0 {
		return nil, errors.New("evidence response was empty")
	}

	evidence := make([]game.Evidence, 0, count)
	for i := 0; i < count; i++ {
		poi := pois[i]
		ev := game.Evidence{
			ID:         fmt.Sprintf("evidence-%d", i+1),
			Importance: game.ImportanceBackground,
			Location:   poi.Location,
			POIName:    poi.Name,
			POIType:    poi.Type,
		}
		if i < len(items) {
			ev.Name = items[i].Name
			ev.Description = items[i].Description
			ev.DiscoveryText = items[i].DiscoveryText
			ev.Importance = normalizeImportance(items[i].Importance)
		}
		if ev.Name == "" {
			ev.Name = fmt.Sprintf("Clue near %s", poi.Name)
		}
		if ev.DiscoveryText == "" {
			ev.DiscoveryText = fmt.Sprintf("You found %s at %s. It looks important to the case.", ev.Name, poi.Name)
		}
		evidence = append(evidence, ev)
	}
	ensureCritical(evidence)
	return evidence, nil
}

// JudgeDeduction implements game.StoryTeller.
func (g *Generator) JudgeDeduction(ctx context.Context, scenario game.Scenario, suspectName, reasoning string) ([]game.CharacterReaction, error) {
	prompt := fmt.Sprintf(`In the mystery "%s", the player accuses %s with this reasoning: %q.
The real culprit is %s.

Write a short in-character reaction from the accused and from the real culprit (one entry if they are the same person).

Respond with ONLY a JSON array: [{"characterName": "...", "reaction": "..."}]`,
		scenario.Title, suspectName, reasoning, scenario.Culprit)

	text, err := g.complete(ctx, prompt, 1024)
	if err != nil {
		return nil, err
	}

	var reactions []game.CharacterReaction
	if err := json.Unmarshal([]byte(extractJSON(text)), &reactions); err != nil {
		return nil, fmt.Errorf("parsing reactions response: %w", err)
	}
	return reactions, nil
}

// complete sends one prompt and returns the concatenated text blocks,
// retrying transient failures with exponential backoff.
func (g *Generator) complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	var lastErr error
	backoff := time.Second
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     g.model,
			MaxTokens: maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			lastErr = err
			g.logger.Warn("narrative model call failed", "attempt", attempt, "error", err)
			continue
		}

		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		if text.Len() == 0 {
			lastErr = errors.New("model response had no text content")
			continue
		}
		return text.String(), nil
	}
	return "", fmt.Errorf("narrative generation failed after %d attempts: %w", maxRetries, lastErr)
}

// extractJSON strips markdown code fences and surrounding prose so the
// payload can be unmarshaled directly. Models occasionally wrap JSON even
// when told not to.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}

func normalizeImportance(s string) game.Importance {
	switch game.Importance(strings.ToLower(strings.TrimSpace(s))) {
	case game.ImportanceCritical:
		return game.ImportanceCritical
	case game.ImportanceImportant:
		return game.ImportanceImportant
	case game.ImportanceMisleading:
		return game.ImportanceMisleading
	default:
		return game.ImportanceBackground
	}
}

// ensureCritical promotes the first item when the model marked nothing
// critical, so every case has a decisive clue.
func ensureCritical(evidence []game.Evidence) {
	for _, ev := range evidence {
		if ev.Importance == game.ImportanceCritical {
			return
		}
	}
	if len(evidence) > 0 {
		evidence[0].Importance = game.ImportanceCritical
	}
}

func suspectNamed(s game.Scenario, name string) bool {
	for _, sus := range s.Suspects {
		if sus.Name == name {
			return true
		}
	}
	return false
}

func joinPOITypes(types []geo.POIType) string {
	seen := make(map[geo.POIType]bool)
	var out []string
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			out = append(out, string(t))
		}
	}
	return strings.Join(out, ", ")
}
