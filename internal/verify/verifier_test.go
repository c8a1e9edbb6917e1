package verify

import (
	"math"
	"testing"

	"maintpilot/internal/planner"
	"maintpilot/internal/retrieval"
	"maintpilot/internal/solver"
)

func TestVerifyPasses(t *testing.T) {
	v := New()
	ret := retrieval.Result{Context: "ctx", Score: 0.4567}
	solved := solver.Result{Answer: "【告警诊断结果】..."}

	result := v.Verify(planner.TaskPlan{}, solved, ret)
	if !result.Passed {
		t.Fatalf("passed = false, want true")
	}
	if got, want := result.Feedback, "通过校验"; got != want {
		t.Fatalf("feedback = %q, want %q", got, want)
	}
	if got, want := result.Confidence, 0.46; got != want {
		t.Fatalf("confidence = %v, want %v (rounded to two decimals)", got, want)
	}
	if got, want := result.Answer, solved.Answer; got != want {
		t.Fatalf("answer = %q, want %q", got, want)
	}
}

func TestVerifyMissingContext(t *testing.T) {
	v := New()
	ret := retrieval.Result{Warning: "no matching entry"}
	solved := solver.Result{Answer: "未检索到相关知识，请转人工或补充更多信息。"}

	result := v.Verify(planner.TaskPlan{}, solved, ret)
	if result.Passed {
		t.Fatal("passed = true, want false without context")
	}
	if got, want := result.Feedback, "缺少检索上下文，建议人工复核"; got != want {
		t.Fatalf("feedback = %q, want %q", got, want)
	}
	if result.Confidence != 0.0 {
		t.Fatalf("confidence = %v, want 0.0", result.Confidence)
	}
}

func TestVerifyEmptyAnswer(t *testing.T) {
	// Only reachable if the solver is replaced or misbehaves; the gate
	// still has to answer deterministically.
	v := New()
	ret := retrieval.Result{Context: "ctx", Score: 0.3}

	result := v.Verify(planner.TaskPlan{}, solver.Result{Answer: "   "}, ret)
	if result.Passed {
		t.Fatal("passed = true, want false for a blank answer")
	}
	if got, want := result.Feedback, "生成内容为空，建议重试"; got != want {
		t.Fatalf("feedback = %q, want %q", got, want)
	}
}

func TestVerifyConfidenceFloorOnPass(t *testing.T) {
	// Context present but a zero score: the pass still carries a small
	// non-zero confidence.
	v := New()
	ret := retrieval.Result{Context: "ctx", Score: 0}

	result := v.Verify(planner.TaskPlan{}, solver.Result{Answer: "a"}, ret)
	if !result.Passed {
		t.Fatal("passed = false, want true")
	}
	if got, want := result.Confidence, 0.2; got != want {
		t.Fatalf("confidence = %v, want %v", got, want)
	}
}

func TestVerifyConfidenceBoundsAndRounding(t *testing.T) {
	v := New()
	for _, score := range []float64{0.005, 0.333333, 0.999, 1.0} {
		ret := retrieval.Result{Context: "ctx", Score: score}
		result := v.Verify(planner.TaskPlan{}, solver.Result{Answer: "a"}, ret)
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Fatalf("confidence %v out of [0,1] for score %v", result.Confidence, score)
		}
		if rounded := math.Round(result.Confidence*100) / 100; rounded != result.Confidence {
			t.Fatalf("confidence %v not expressed in two decimals for score %v", result.Confidence, score)
		}
	}
}
