package narrative

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/huntworks/geohunt/internal/game"
	"github.com/huntworks/geohunt/internal/geo"
)

// Templates is an offline StoryTeller built from canned material. It keeps
// development and tests independent of the model API; the stories repeat
// but the game mechanics are identical.
type Templates struct {
	mu   sync.Mutex // rand.Rand is not safe for concurrent use
	rand *rand.Rand
}

func NewTemplates(seed int64) *Templates {
	return &Templates{rand: rand.New(rand.NewSource(seed))}
}

var templateCases = []struct {
	title       string
	description string
	motive      string
}{
	{
		"The Vanished Manuscript",
		"A priceless manuscript disappeared from a private collection overnight. The collector swears the room was locked; someone in their circle is lying.",
		"gambling debts that the manuscript's sale would cover",
	},
	{
		"The Midnight Recipe",
		"A famous chef's secret recipe book was stolen the night before a career-defining competition. Only a few people knew where it was kept.",
		"a rival kitchen promised a fortune for the recipes",
	},
	{
		"The Counterfeit Canvas",
		"An appraiser discovered that a gallery's prize painting is a forgery, and the original is gone. The swap happened sometime this week.",
		"years of resentment over an inheritance that went to the gallery",
	},
}

var templateSuspects = []game.Suspect{
	{Name: "Marisol Quispe", Description: "A meticulous archivist with a photographic memory.", Alibi: "Claims to have been cataloguing in the basement all evening."},
	{Name: "Viktor Braun", Description: "A retired locksmith who still keeps his tools.", Alibi: "Says he was at a chess club meeting, but left early."},
	{Name: "Ines Okonkwo", Description: "A journalist chasing a story about the owner.", Alibi: "Was seen at a cafe nearby around the time in question."},
	{Name: "Tomas Herrera", Description: "The owner's estranged business partner.", Alibi: "Insists he was on a video call, though the log is missing."},
	{Name: "Agnes Lindqvist", Description: "A conservator with unrestricted access.", Alibi: "Her keycard shows an entry she cannot explain."},
	{Name: "Rafael Donoso", Description: "A courier who made an unscheduled delivery.", Alibi: "His route sheet has an unexplained ninety-minute gap."},
	{Name: "Petra Szabo", Description: "An insurance investigator who arrived suspiciously fast.", Alibi: "Claims she was already in town on another case."},
	{Name: "Dmitri Volkov", Description: "A collector who lost the bidding war for the piece.", Alibi: "Was hosting a dinner party, according to his staff."},
}

var evidenceTemplates = map[game.Importance][]string{
	game.ImportanceCritical:   {"Torn Ledger Page", "Engraved Lockpick"},
	game.ImportanceImportant:  {"Muddy Footprint Cast", "Burner Phone", "Crumpled Train Ticket"},
	game.ImportanceMisleading: {"Borrowed Umbrella", "Unsigned Love Letter"},
	game.ImportanceBackground: {"Old Receipt", "Faded Photograph", "Broken Pocket Watch", "Empty Matchbook"},
}

// GenerateScenario implements game.StoryTeller.
func (t *Templates) GenerateScenario(_ context.Context, req game.ScenarioRequest) (game.Scenario, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := templateCases[t.rand.Intn(len(templateCases))]

	n := req.SuspectRange[0]
	if span := req.SuspectRange[1] - req.SuspectRange[0]; span > 0 {
		n += t.rand.Intn(span + 1)
	}
	if n < 2 {
		n = 3
	}
	if n > len(templateSuspects) {
		n = len(templateSuspects)
	}

	perm := t.rand.Perm(len(templateSuspects))
	suspects := make([]game.Suspect, 0, n)
	for _, idx := range perm[:n] {
		suspects = append(suspects, templateSuspects[idx])
	}

	return game.Scenario{
		Title:       c.title,
		Description: c.description,
		Suspects:    suspects,
		Culprit:     suspects[t.rand.Intn(len(suspects))].Name,
		Motive:      c.motive,
	}, nil
}

// GenerateEvidence implements game.StoryTeller. Importance follows the
// standard balance: one critical, then important, one misleading, the
// rest background.
func (t *Templates) GenerateEvidence(_ context.Context, scenario game.Scenario, pois []geo.POI, count int) ([]game.Evidence, error) {
	if count > len(pois) {
		count = len(pois)
	}

	plan := importancePlan(count)
	used := make(map[game.Importance]int)

	evidence := make([]game.Evidence, 0, count)
	for i := 0; i < count; i++ {
		imp := plan[i]
		names := evidenceTemplates[imp]
		name := names[used[imp]%len(names)]
		used[imp]++

		evidence = append(evidence, game.Evidence{
			ID:            fmt.Sprintf("evidence-%d", i+1),
			Name:          name,
			Description:   fmt.Sprintf("%s connected to the case of %s.", name, scenario.Title),
			DiscoveryText: fmt.Sprintf("Tucked away at %s you find the %s. This changes things.", pois[i].Name, name),
			Importance:    imp,
			Location:      pois[i].Location,
			POIName:       pois[i].Name,
			POIType:       pois[i].Type,
		})
	}
	return evidence, nil
}

func importancePlan(count int) []game.Importance {
	plan := make([]game.Importance, 0, count)
	plan = append(plan, game.ImportanceCritical)
	for len(plan) < count && len(plan) < 3 {
		plan = append(plan, game.ImportanceImportant)
	}
	if len(plan) < count {
		plan = append(plan, game.ImportanceMisleading)
	}
	for len(plan) < count {
		plan = append(plan, game.ImportanceBackground)
	}
	return plan[:count]
}

// JudgeDeduction implements game.StoryTeller.
func (t *Templates) JudgeDeduction(_ context.Context, scenario game.Scenario, suspectName, _ string) ([]game.CharacterReaction, error) {
	if suspectName == scenario.Culprit {
		return []game.CharacterReaction{{
			CharacterName: suspectName,
			Reaction:      "Their composure cracks. \"Fine. You want the truth? You would have done the same.\"",
		}}, nil
	}
	return []game.CharacterReaction{
		{
			CharacterName: suspectName,
			Reaction:      "\"Me? You have the wrong person entirely, detective.\"",
		},
		{
			CharacterName: scenario.Culprit,
			Reaction:      "A flicker of relief crosses their face before they compose themselves.",
		},
	}, nil
}
