// Package scoring implements the 57-item stress questionnaire scoring and
// the high-stress risk classification. Everything in here is a pure function
// over an answer map; no I/O, no shared state, safe for concurrent use.
package scoring

import "fmt"

// QuestionCount is the number of items in the standardized questionnaire.
const QuestionCount = 57

// Answer values are expected in [MinAnswer, MaxAnswer]. Range enforcement is
// a caller-side validation concern; Calculate itself never fails.
const (
	MinAnswer = 1
	MaxAnswer = 4
)

// ScoreResult holds the four sub-scale scores (each on a 1-4 scale when all
// contributing answers are present) and the headline total.
type ScoreResult struct {
	JobStressScore      float64 `json:"job_stress_score"`
	StressReactionScore float64 `json:"stress_reaction_score"`
	SupportScore        float64 `json:"support_score"`
	SatisfactionScore   float64 `json:"satisfaction_score"`
	TotalScore          int     `json:"total_score"`
}

// Calculate derives all sub-scale scores from a raw answer map.
//
// Missing keys contribute 0 to their group's average rather than being
// excluded from the denominator, so a partial map silently drags its
// sub-scales toward 0. This matches the scoring used by reports already in
// production and is deliberate; do not "fix" it without a product decision.
func Calculate(answers map[string]int) ScoreResult {
	// Job stress factors: five groups, unweighted mean of group averages.
	jobQuantity := groupAverage(answers, 1, 4)
	jobQuality := groupAverage(answers, 5, 8)
	control := groupAverage(answers, 9, 11)
	suitability := groupAverage(answers, 12, 14)
	relationships := groupAverage(answers, 15, 17)
	jobStress := (jobQuantity + jobQuality + control + suitability + relationships) / 5

	// Physical and mental stress reactions: six groups.
	vitality := groupAverage(answers, 18, 22)
	irritation := groupAverage(answers, 23, 27)
	fatigue := groupAverage(answers, 28, 32)
	anxiety := groupAverage(answers, 33, 37)
	depression := groupAverage(answers, 38, 42)
	physical := groupAverage(answers, 43, 46)
	reaction := (vitality + irritation + fatigue + anxiety + depression + physical) / 6

	// Workplace and personal support: three groups.
	supervisor := groupAverage(answers, 47, 49)
	colleague := groupAverage(answers, 50, 52)
	family := groupAverage(answers, 53, 55)
	support := (supervisor + colleague + family) / 3

	satisfaction := groupAverage(answers, 56, 57)

	total := 0
	for _, v := range answers {
		total += v
	}

	return ScoreResult{
		JobStressScore:      jobStress,
		StressReactionScore: reaction,
		SupportScore:        support,
		SatisfactionScore:   satisfaction,
		TotalScore:          total,
	}
}

// groupAverage averages q{first}..q{last} inclusive. Absent keys count as 0.
func groupAverage(answers map[string]int, first, last int) float64 {
	sum := 0
	for i := first; i <= last; i++ {
		sum += answers[QuestionID(i)]
	}
	return float64(sum) / float64(last-first+1)
}

// QuestionID returns the canonical key for the n-th item, e.g. "q12".
func QuestionID(n int) string {
	return fmt.Sprintf("q%d", n)
}
