package solver

import (
	"strings"
	"testing"

	"maintpilot/internal/planner"
	"maintpilot/internal/retrieval"
)

func TestSolveRefusalWithoutContext(t *testing.T) {
	s := New()
	plan := planner.TaskPlan{
		Task:     planner.TaskAnomalyDiagnosis,
		Tool:     planner.ToolAnomalyDiagnosis,
		Query:    "设备告警",
		Priority: planner.PriorityStandard,
	}
	ret := retrieval.Result{Task: plan.Task, Query: plan.Query, Warning: "no matching entry"}

	result := s.Solve(plan, ret)
	if !strings.Contains(result.Answer, "未检索到相关知识") {
		t.Fatalf("answer = %q, want the refusal message", result.Answer)
	}
	if len(result.References) != 0 {
		t.Fatalf("references = %v, want empty", result.References)
	}
}

func TestSolveAnswerContainsContext(t *testing.T) {
	s := New()
	context := "告警 ALM-1001：伺服电机振动异常\n可能原因：轴承磨损\n推荐措施：停机检查"
	plan := planner.TaskPlan{
		Task:     planner.TaskAnomalyDiagnosis,
		Tool:     planner.ToolAnomalyDiagnosis,
		Query:    "伺服电机振动",
		Priority: planner.PriorityHigh,
	}
	ret := retrieval.Result{
		Task:       plan.Task,
		Query:      plan.Query,
		Context:    context,
		Source:     "diagnostics#ALM-1001",
		Score:      0.4567,
		Attributes: map[string]string{"alert_id": "ALM-1001"},
	}

	result := s.Solve(plan, ret)
	if !strings.HasPrefix(result.Answer, "【告警诊断结果】") {
		t.Fatalf("answer missing diagnosis header: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, context) {
		t.Fatalf("answer does not contain the retrieved context: %q", result.Answer)
	}
	if got, want := result.References["source"], "diagnostics#ALM-1001"; got != want {
		t.Fatalf("source reference = %q, want %q", got, want)
	}
	if got, want := result.References["score"], "0.46"; got != want {
		t.Fatalf("score reference = %q, want %q", got, want)
	}
	if got, want := result.References["alert_id"], "ALM-1001"; got != want {
		t.Fatalf("alert_id reference = %q, want %q", got, want)
	}
}

func TestSolveTemplatePerTask(t *testing.T) {
	s := New()
	cases := []struct {
		task   planner.TaskType
		header string
	}{
		{planner.TaskAnomalyDiagnosis, "【告警诊断结果】"},
		{planner.TaskSOPLookup, "【SOP 建议】"},
		{planner.TaskWorkorderRecommendation, "【工单推荐】"},
		{planner.TaskType("inventory_check"), "【通用响应】"},
	}
	for _, c := range cases {
		plan := planner.TaskPlan{Task: c.task, Tool: planner.ToolName(c.task), Query: "q"}
		ret := retrieval.Result{Task: c.task, Query: "q", Context: "ctx", Source: "s", Score: 0.5}
		result := s.Solve(plan, ret)
		if !strings.HasPrefix(result.Answer, c.header) {
			t.Fatalf("task %s: answer = %q, want prefix %q", c.task, result.Answer, c.header)
		}
	}
}

func TestSolveAttributesOverwriteBaseReferences(t *testing.T) {
	// Record attributes win on key collision with the base source/score
	// pair; this keeps reference merging deterministic.
	s := New()
	plan := planner.TaskPlan{Task: planner.TaskSOPLookup, Tool: planner.ToolSOPLookup, Query: "q"}
	ret := retrieval.Result{
		Task:       plan.Task,
		Query:      "q",
		Context:    "ctx",
		Source:     "sop#注塑机-03",
		Score:      0.5,
		Attributes: map[string]string{"source": "override"},
	}

	result := s.Solve(plan, ret)
	if got, want := result.References["source"], "override"; got != want {
		t.Fatalf("source reference = %q, want %q", got, want)
	}
}

func TestSolveReasoning(t *testing.T) {
	s := New()
	plan := planner.TaskPlan{
		Task:     planner.TaskSOPLookup,
		Tool:     planner.ToolSOPLookup,
		Query:    "q",
		Priority: planner.PriorityHigh,
	}
	result := s.Solve(plan, retrieval.Result{})
	if got, want := result.Reasoning, "tool=sop_lookup; priority=high"; got != want {
		t.Fatalf("reasoning = %q, want %q", got, want)
	}

	plan.Priority = ""
	result = s.Solve(plan, retrieval.Result{})
	if got, want := result.Reasoning, "tool=sop_lookup; priority=standard"; got != want {
		t.Fatalf("reasoning without priority = %q, want %q", got, want)
	}
}
