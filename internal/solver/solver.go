// Package solver renders a templated answer from retrieved context, or
// a fixed refusal when retrieval found nothing.
package solver

import (
	"fmt"

	"maintpilot/internal/planner"
	"maintpilot/internal/retrieval"
)

// refusal is the fixed answer when no context was retrieved.
const refusal = "未检索到相关知识，请转人工或补充更多信息。"

// Result is the composed answer with attribution.
type Result struct {
	Answer string
	Plan   planner.TaskPlan

	// References maps attribution keys to values: "source" and "score"
	// from the retrieval, then the retrieval's record attributes, which
	// overwrite on key collision. Empty when the answer is a refusal.
	References map[string]string

	// Reasoning is a short diagnostic of the tool and priority used.
	Reasoning string
}

// Solver composes templated responses. Stateless; safe for concurrent use.
type Solver struct{}

// New returns a Solver.
func New() *Solver {
	return &Solver{}
}

// Solve renders the answer for a plan and its retrieval. It never
// fails: an empty retrieval context produces the refusal answer.
func (s *Solver) Solve(plan planner.TaskPlan, ret retrieval.Result) Result {
	result := Result{
		Plan:      plan,
		Reasoning: fmt.Sprintf("tool=%s; priority=%s", plan.Tool, priorityOrStandard(plan.Priority)),
	}
	if ret.Context == "" {
		result.Answer = refusal
		return result
	}

	result.Answer = composeAnswer(plan.Task, ret.Context)
	refs := map[string]string{
		"source": ret.Source,
		"score":  fmt.Sprintf("%.2f", ret.Score),
	}
	for k, v := range ret.Attributes {
		refs[k] = v
	}
	result.References = refs
	return result
}

func composeAnswer(task planner.TaskType, context string) string {
	switch task {
	case planner.TaskAnomalyDiagnosis:
		return "【告警诊断结果】\n" +
			fmt.Sprintf("- 诊断要点：%s\n", context) +
			"- 请按照推荐措施执行，并记录处理结果用于后续追踪。"
	case planner.TaskSOPLookup:
		return "【SOP 建议】\n" +
			fmt.Sprintf("- 检索结果：%s\n", context) +
			"- 请严格对照 SOP 步骤执行，并在执行单上完成签字确认。"
	case planner.TaskWorkorderRecommendation:
		return "【工单推荐】\n" +
			fmt.Sprintf("- 推荐依据：%s\n", context) +
			"- 若需停机，请提前与生产协调确认窗口。"
	default:
		return "【通用响应】\n" +
			fmt.Sprintf("- 参考信息：%s\n", context) +
			"- 建议复核需求类型以获取更准确建议。"
	}
}

func priorityOrStandard(p planner.Priority) planner.Priority {
	if p == "" {
		return planner.PriorityStandard
	}
	return p
}
