package scoring

// Classification thresholds. The reaction band is inclusive on the lower
// bound and exclusive on the upper bound; support of exactly 2.0 is NOT low.
const (
	highReactionThreshold   = 3.0
	mediumReactionThreshold = 2.0
	highJobStressThreshold  = 3.0
	lowSupportThreshold     = 2.0
)

// IsHighStress applies the clinical-style classification rule to the three
// relevant sub-scale scores. Deterministic: same inputs, same answer.
func IsHighStress(stressReaction, jobStress, support float64) bool {
	// Rule 1: stress reaction alone is high.
	if stressReaction >= highReactionThreshold {
		return true
	}

	// Rules 2 and 3 only apply inside the medium reaction band.
	if stressReaction >= mediumReactionThreshold && stressReaction < highReactionThreshold {
		if jobStress >= highJobStressThreshold {
			return true
		}
		if support < lowSupportThreshold {
			return true
		}
	}

	return false
}
