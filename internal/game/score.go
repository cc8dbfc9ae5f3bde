package game

// discoveryBase is the per-importance base for discovery bonus points.
var discoveryBase = map[Importance]int{
	ImportanceCritical:   50,
	ImportanceImportant:  30,
	ImportanceMisleading: 20,
	ImportanceBackground: 10,
}

// DiscoveryBonus scores one discovery: the importance base times a
// distance multiplier that rewards getting close.
func DiscoveryBonus(importance Importance, distanceMeters float64) int {
	base, ok := discoveryBase[importance]
	if !ok {
		base = 10
	}

	var mult float64
	switch {
	case distanceMeters <= 10:
		mult = 1.5
	case distanceMeters <= 30:
		mult = 1.2
	case distanceMeters <= 50:
		mult = 1.0
	default:
		mult = 0.8
	}

	return int(float64(base) * mult)
}

// FinalScore is the end-of-game tally produced when a deduction is
// submitted.
type FinalScore struct {
	EvidenceFound        int     `json:"evidenceFound"`
	TotalEvidence        int     `json:"totalEvidence"`
	CorrectDeduction     bool    `json:"correctDeduction"`
	DiscoveryBonus       int     `json:"discoveryBonus"`
	TimeBonus            int     `json:"timeBonus"`
	DifficultyMultiplier float64 `json:"difficultyMultiplier"`
	HintsPenalty         int     `json:"hintsPenalty"`
	TotalScore           int     `json:"totalScore"`
}

// CalculateFinalScore tallies the game: evidence share is worth up to 50,
// a correct deduction another 50, time under ten minutes earns a bonus,
// hints cost 5 each, and the difficulty scales the lot. Never negative.
func CalculateFinalScore(evidenceFound, totalEvidence int, correct bool, elapsedSeconds int, difficulty Difficulty, hintsUsed, discoveryBonus int) FinalScore {
	var evidenceScore float64
	if totalEvidence > 0 {
		evidenceScore = float64(evidenceFound) / float64(totalEvidence) * 50
	}

	deductionScore := 0.0
	if correct {
		deductionScore = 50
	}

	timeBonus := (600 - elapsedSeconds) / 60 * 2
	if timeBonus < 0 {
		timeBonus = 0
	}

	mult := 1.0
	switch difficulty {
	case DifficultyNormal:
		mult = 1.2
	case DifficultyHard:
		mult = 1.5
	}

	penalty := hintsUsed * 5

	total := int((evidenceScore + deductionScore + float64(discoveryBonus) + float64(timeBonus) - float64(penalty)) * mult)
	if total < 0 {
		total = 0
	}

	return FinalScore{
		EvidenceFound:        evidenceFound,
		TotalEvidence:        totalEvidence,
		CorrectDeduction:     correct,
		DiscoveryBonus:       discoveryBonus,
		TimeBonus:            timeBonus,
		DifficultyMultiplier: mult,
		HintsPenalty:         penalty,
		TotalScore:           total,
	}
}
