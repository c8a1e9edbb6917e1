// Package retrieval selects the best-matching corpus record for a task
// plan using the similarity ratio, and composes the retrieved context
// the solver renders into an answer.
package retrieval

import (
	"fmt"
	"strings"

	"maintpilot/internal/corpus"
	"maintpilot/internal/planner"
	"maintpilot/internal/similarity"
)

// Result carries retrieved context plus provenance for one plan.
// Context is empty exactly when Score is 0 and nothing matched (or the
// tool was unknown); Warning/ToolError explain why.
type Result struct {
	Task    planner.TaskType
	Query   string
	Context string
	Source  string
	Score   float64

	// Warning is set when the corpus held no record with a score above
	// zero (including an empty corpus).
	Warning string

	// ToolError names a tool that maps to no corpus.
	ToolError string

	// Attributes holds record-specific attribution (alert id,
	// equipment, asset, work order) for the solver's references.
	Attributes map[string]string
}

// Retriever answers plans from a read-only corpus store. The store is
// never mutated, so one Retriever serves concurrent pipeline runs.
type Retriever struct {
	store *corpus.Store
}

// New returns a Retriever over the given store.
func New(store *corpus.Store) *Retriever {
	return &Retriever{store: store}
}

// toolSpec binds a tool to its corpus, the record fields searched for
// similarity, and the context/attribution composers. Adding a task type
// means adding a case to specFor, which keeps the mapping exhaustive.
type toolSpec struct {
	kind    corpus.Kind
	fields  []string
	keyName string
	compose func(corpus.Record) string
	attrs   func(corpus.Record) map[string]string
}

func specFor(tool planner.ToolName) (toolSpec, bool) {
	switch tool {
	case planner.ToolAnomalyDiagnosis:
		return toolSpec{
			kind:    corpus.KindDiagnostics,
			fields:  []string{"symptom", "probable_causes"},
			keyName: "alert_id",
			compose: func(rec corpus.Record) string {
				return fmt.Sprintf("告警 %s：%s\n可能原因：%s\n推荐措施：%s",
					rec.Field("alert_id"), rec.Field("symptom"),
					rec.Field("probable_causes"), rec.Field("recommended_actions"))
			},
			attrs: func(rec corpus.Record) map[string]string {
				return map[string]string{"alert_id": rec.Field("alert_id")}
			},
		}, true
	case planner.ToolSOPLookup:
		return toolSpec{
			kind:    corpus.KindSOP,
			fields:  []string{"equipment", "issue"},
			keyName: "equipment",
			compose: func(rec corpus.Record) string {
				return fmt.Sprintf("设备 %s 的问题：%s\nSOP 步骤：%s",
					rec.Field("equipment"), rec.Field("issue"), rec.Field("sop_steps"))
			},
			attrs: func(rec corpus.Record) map[string]string {
				return map[string]string{"equipment": rec.Field("equipment")}
			},
		}, true
	case planner.ToolWorkorderRecommendation:
		return toolSpec{
			kind:    corpus.KindWorkorders,
			fields:  []string{"asset", "issue"},
			keyName: "asset",
			compose: func(rec corpus.Record) string {
				return fmt.Sprintf("单元 %s 的问题：%s\n建议工单：%s\n执行建议：%s",
					rec.Field("asset"), rec.Field("issue"),
					rec.Field("work_order"), rec.Field("advice"))
			},
			attrs: func(rec corpus.Record) map[string]string {
				return map[string]string{
					"asset":      rec.Field("asset"),
					"work_order": rec.Field("work_order"),
				}
			},
		}, true
	default:
		return toolSpec{}, false
	}
}

// Execute answers the plan. It never fails: an unknown tool or a corpus
// with no matching record degrades to an empty, flagged Result.
func (r *Retriever) Execute(plan planner.TaskPlan) Result {
	spec, ok := specFor(plan.Tool)
	if !ok {
		return Result{
			Task:      plan.Task,
			Query:     plan.Query,
			ToolError: fmt.Sprintf("no tool named %s", plan.Tool),
		}
	}

	best, score := bestMatch(r.store.Records(spec.kind), plan.Query, spec.fields)
	if best == nil {
		return Result{
			Task:    plan.Task,
			Query:   plan.Query,
			Warning: "no matching entry",
		}
	}

	return Result{
		Task:       plan.Task,
		Query:      plan.Query,
		Context:    spec.compose(best),
		Source:     fmt.Sprintf("%s#%s", spec.kind, best.Field(spec.keyName)),
		Score:      score,
		Attributes: spec.attrs(best),
	}
}

// bestMatch scans records in load order and keeps the record with the
// strictly greatest similarity between the query and the space-joined
// searchable fields. Equal scores never replace the current best, so
// ties resolve to the first record encountered; a record only wins at
// all with a score above zero.
func bestMatch(records []corpus.Record, query string, fields []string) (corpus.Record, float64) {
	var best corpus.Record
	bestScore := 0.0
	for _, rec := range records {
		score := similarity.Ratio(query, joinFields(rec, fields))
		if score > bestScore {
			best = rec
			bestScore = score
		}
	}
	return best, bestScore
}

// joinFields concatenates the record's searchable field values with
// single spaces. Absent fields contribute nothing.
func joinFields(rec corpus.Record, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		if value, ok := rec[name]; ok {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " ")
}
