package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateSuccess(t *testing.T) {
	v := Evaluate(90, 9, false)
	assert.True(t, v.IsSuccess)
	assert.Empty(t, v.Reasons)
}

func TestEvaluateFailures(t *testing.T) {
	cases := []struct {
		name            string
		focusMinutes    int
		quizScore       int
		cheaterDetected bool
		wantReasons     int
	}{
		{"low focus only", 30, 9, false, 1},
		{"low quiz only", 90, 5, false, 1},
		{"cheat flag only", 90, 9, true, 1},
		{"low focus and quiz", 30, 5, false, 2},
		{"everything failed", 10, 2, true, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Evaluate(tc.focusMinutes, tc.quizScore, tc.cheaterDetected)
			assert.False(t, v.IsSuccess)
			assert.Len(t, v.Reasons, tc.wantReasons)
		})
	}
}

func TestEvaluateBoundaryValuesFail(t *testing.T) {
	// Thresholds are strict inequalities: 60 minutes and a score of 7 are
	// both failures, and each must carry its own reason.
	v := Evaluate(60, 9, false)
	assert.False(t, v.IsSuccess)
	assert.Len(t, v.Reasons, 1)
	assert.Contains(t, v.Reasons[0], "Low focus time: 60")

	v = Evaluate(90, 7, false)
	assert.False(t, v.IsSuccess)
	assert.Len(t, v.Reasons, 1)
	assert.Contains(t, v.Reasons[0], "Low quiz score: 7")
}

func TestEvaluateReasonOrder(t *testing.T) {
	v := Evaluate(10, 2, true)
	assert.Len(t, v.Reasons, 3)
	assert.Contains(t, v.Reasons[0], "Low focus time")
	assert.Contains(t, v.Reasons[1], "Low quiz score")
	assert.Contains(t, v.Reasons[2], "Cheater detection")
}

func TestEvaluateCheatOverridesPassingScores(t *testing.T) {
	v := Evaluate(120, 10, true)
	assert.False(t, v.IsSuccess)
	assert.Len(t, v.Reasons, 1)
	assert.Contains(t, v.Reasons[0], "Cheater detection")
}
