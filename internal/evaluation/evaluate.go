package evaluation

import "fmt"

// Daily check-in thresholds. Both are strict: a score of exactly
// QuizThreshold or exactly FocusThreshold minutes is a failure.
const (
	QuizThreshold  = 7
	FocusThreshold = 60
)

// Verdict is the outcome of scoring one check-in. Reasons lists every
// predicate that failed, in focus / quiz / cheat order; it is empty iff
// IsSuccess is true.
type Verdict struct {
	IsSuccess bool
	Reasons   []string
}

// Evaluate scores a daily check-in. Success requires quizScore > 7 and
// focusMinutes > 60 with no cheat flag; the cheat flag is a hard override
// regardless of the numeric scores.
func Evaluate(focusMinutes, quizScore int, cheaterDetected bool) Verdict {
	var reasons []string
	if focusMinutes <= FocusThreshold {
		reasons = append(reasons, fmt.Sprintf("Low focus time: %d minutes (needed > %d)", focusMinutes, FocusThreshold))
	}
	if quizScore <= QuizThreshold {
		reasons = append(reasons, fmt.Sprintf("Low quiz score: %d (needed > %d)", quizScore, QuizThreshold))
	}
	if cheaterDetected {
		reasons = append(reasons, "Cheater detection triggered (tab switch / hidden window)")
	}
	return Verdict{
		IsSuccess: len(reasons) == 0,
		Reasons:   reasons,
	}
}
