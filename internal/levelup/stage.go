package levelup

// Stages is the fixed difficulty progression. A stage index of len(Stages)
// means every stage has been passed.
var Stages = []string{"easy", "medium", "hard"}

// StageDifficulty maps a stage index to its difficulty tag. ok is false for
// the terminal index and anything out of range.
func StageDifficulty(stage int) (string, bool) {
	if stage < 0 || stage >= len(Stages) {
		return "", false
	}
	return Stages[stage], true
}

// IsTerminal reports whether the stage index is past the last difficulty.
func IsTerminal(stage int) bool {
	return stage >= len(Stages)
}
