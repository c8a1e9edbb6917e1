// Package verify applies the pipeline's terminal consistency checks. A
// single evaluation per request, no I/O, no state across calls.
package verify

import (
	"math"
	"strings"

	"maintpilot/internal/planner"
	"maintpilot/internal/retrieval"
	"maintpilot/internal/solver"
)

const (
	feedbackPassed         = "通过校验"
	feedbackMissingContext = "缺少检索上下文，建议人工复核"
	feedbackEmptyAnswer    = "生成内容为空，建议重试"
)

// Result is the terminal artifact of one pipeline run.
type Result struct {
	Passed   bool
	Answer   string
	Feedback string

	// Confidence is in [0, 1], rounded to two decimal places.
	Confidence float64
}

// Verifier performs minimal consistency checks on solver output.
type Verifier struct{}

// New returns a Verifier.
func New() *Verifier {
	return &Verifier{}
}

// Verify gates the composed answer. The check passes when context was
// retrieved and the answer is non-blank. Confidence is the retrieval
// score when positive, otherwise 0.2 for a pass and 0.0 for a failure.
func (v *Verifier) Verify(plan planner.TaskPlan, solved solver.Result, ret retrieval.Result) Result {
	hasContext := ret.Context != ""
	answerOK := strings.TrimSpace(solved.Answer) != ""
	passed := hasContext && answerOK

	feedback := feedbackPassed
	switch {
	case passed:
	case !hasContext:
		feedback = feedbackMissingContext
	default:
		feedback = feedbackEmptyAnswer
	}

	confidence := ret.Score
	if confidence <= 0 {
		if passed {
			confidence = 0.2
		} else {
			confidence = 0.0
		}
	}

	return Result{
		Passed:     passed,
		Answer:     solved.Answer,
		Feedback:   feedback,
		Confidence: round2(confidence),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
