package planner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TaskType identifies a pipeline task category. The builtin rule set
// declares the three maintenance tasks below; rule files may declare
// additional identifiers, which the solver answers with its generic
// template.
type TaskType string

// ToolName selects the retrieval corpus a plan is executed against.
type ToolName string

// Priority is a coarse urgency hint attached to every plan.
type Priority string

const (
	TaskAnomalyDiagnosis        TaskType = "anomaly_diagnosis"
	TaskSOPLookup               TaskType = "sop_lookup"
	TaskWorkorderRecommendation TaskType = "workorder_recommendation"
)

const (
	ToolAnomalyDiagnosis        ToolName = "anomaly_diagnosis"
	ToolSOPLookup               ToolName = "sop_lookup"
	ToolWorkorderRecommendation ToolName = "workorder_recommendation"
)

const (
	PriorityHigh     Priority = "high"
	PriorityStandard Priority = "standard"
)

// Rule maps request keywords to a task and tool. Rules are evaluated in
// declaration order and the first rule with any matching keyword wins,
// so position in the slice is a precedence policy, not an accident.
type Rule struct {
	Task     TaskType
	Tool     ToolName
	Keywords []string
}

// PriorityMarker maps a request substring to a priority level. Markers
// are scanned in declaration order, first match wins.
type PriorityMarker struct {
	Marker string
	Level  Priority
}

// RuleSet is the read-only planner configuration: ordered task rules,
// ordered priority markers, and the fallback task used when no rule
// matches. Construct it once and share it; the planner never mutates it.
type RuleSet struct {
	Rules       []Rule
	Markers     []PriorityMarker
	DefaultTask TaskType
	DefaultTool ToolName
}

// DefaultRuleSet returns the builtin maintenance rule set.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Rules: []Rule{
			{
				Task:     TaskAnomalyDiagnosis,
				Tool:     ToolAnomalyDiagnosis,
				Keywords: []string{"告警", "报警", "异常", "诊断"},
			},
			{
				Task:     TaskSOPLookup,
				Tool:     ToolSOPLookup,
				Keywords: []string{"sop", "保全", "操作规程", "标准作业", "步骤", "检修"},
			},
			{
				Task:     TaskWorkorderRecommendation,
				Tool:     ToolWorkorderRecommendation,
				Keywords: []string{"bom", "工单", "备件", "物料", "更换", "维修任务"},
			},
		},
		Markers: []PriorityMarker{
			{Marker: "紧急", Level: PriorityHigh},
			{Marker: "立即", Level: PriorityHigh},
			{Marker: "尽快", Level: PriorityHigh},
			{Marker: "建议", Level: PriorityStandard},
			{Marker: "优化", Level: PriorityStandard},
		},
		DefaultTask: TaskSOPLookup,
		DefaultTool: ToolSOPLookup,
	}
}

type rawRuleSet struct {
	DefaultTask string        `yaml:"default_task"`
	DefaultTool string        `yaml:"default_tool"`
	Rules       []rawRule     `yaml:"rules"`
	Markers     []rawPriority `yaml:"priority_markers"`
}

type rawRule struct {
	Task     string   `yaml:"task"`
	Tool     string   `yaml:"tool"`
	Keywords []string `yaml:"keywords"`
}

type rawPriority struct {
	Marker string `yaml:"marker"`
	Level  string `yaml:"level"`
}

// ValidationError captures a single field-specific rule file issue.
type ValidationError struct {
	File    string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
}

// ValidationErrors aggregates multiple rule file problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// LoadRuleSet reads and validates a YAML rule file.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rule file: %w", err)
	}
	return ParseRuleSet(data, path)
}

// ParseRuleSet unmarshals and validates a YAML rule set document.
// Declaration order in the file is preserved in the returned slices.
func ParseRuleSet(data []byte, source string) (RuleSet, error) {
	var raw rawRuleSet
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return RuleSet{}, ValidationErrors{{
			File:    source,
			Field:   "yaml",
			Message: err.Error(),
		}}
	}
	return validateRawRuleSet(raw, source)
}

func validateRawRuleSet(raw rawRuleSet, source string) (RuleSet, error) {
	var errs ValidationErrors

	if len(raw.Rules) == 0 {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   "rules",
			Message: "must contain at least one rule",
		})
	}

	rs := RuleSet{}
	for idx, r := range raw.Rules {
		path := fmt.Sprintf("rules[%d]", idx)
		task := strings.TrimSpace(r.Task)
		if task == "" {
			errs = append(errs, ValidationError{
				File:    source,
				Field:   path + ".task",
				Message: "task is required",
			})
		}
		tool := strings.TrimSpace(r.Tool)
		if tool == "" {
			tool = task
		}
		var keywords []string
		for kidx, kw := range r.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				errs = append(errs, ValidationError{
					File:    source,
					Field:   fmt.Sprintf("%s.keywords[%d]", path, kidx),
					Message: "keyword must not be blank",
				})
				continue
			}
			keywords = append(keywords, kw)
		}
		if len(keywords) == 0 {
			errs = append(errs, ValidationError{
				File:    source,
				Field:   path + ".keywords",
				Message: "must contain at least one keyword",
			})
		}
		rs.Rules = append(rs.Rules, Rule{
			Task:     TaskType(task),
			Tool:     ToolName(tool),
			Keywords: keywords,
		})
	}

	for idx, m := range raw.Markers {
		path := fmt.Sprintf("priority_markers[%d]", idx)
		marker := strings.TrimSpace(m.Marker)
		if marker == "" {
			errs = append(errs, ValidationError{
				File:    source,
				Field:   path + ".marker",
				Message: "marker is required",
			})
		}
		level := Priority(strings.TrimSpace(m.Level))
		if level != PriorityHigh && level != PriorityStandard {
			errs = append(errs, ValidationError{
				File:    source,
				Field:   path + ".level",
				Message: fmt.Sprintf("level must be %q or %q", PriorityHigh, PriorityStandard),
			})
		}
		rs.Markers = append(rs.Markers, PriorityMarker{Marker: marker, Level: level})
	}

	defaultTask := strings.TrimSpace(raw.DefaultTask)
	if defaultTask == "" {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   "default_task",
			Message: "default_task is required",
		})
	}
	defaultTool := strings.TrimSpace(raw.DefaultTool)
	if defaultTool == "" {
		defaultTool = defaultTask
	}
	rs.DefaultTask = TaskType(defaultTask)
	rs.DefaultTool = ToolName(defaultTool)

	if len(errs) > 0 {
		return RuleSet{}, errs
	}
	return rs, nil
}
