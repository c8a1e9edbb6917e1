// Package planner classifies free-text maintenance requests into task
// plans by ordered keyword matching against a read-only rule set.
package planner

import "strings"

// TaskPlan describes how the downstream pipeline stages should process
// one request. It is created once per request and never mutated.
type TaskPlan struct {
	Task  TaskType
	Tool  ToolName
	Query string

	// MatchedKeywords lists the winning rule's keywords found in the
	// request, in the rule's declared order. Empty on fallback.
	MatchedKeywords []string
	Priority        Priority

	// FallbackReason is set to "fallback" when no rule matched and the
	// default task was used.
	FallbackReason string
}

// Planner maps a natural-language request to a TaskPlan. It is a pure
// function of the request and its rule set, so a single Planner is safe
// for concurrent use.
type Planner struct {
	rules RuleSet
}

// New returns a Planner over the given rule set.
func New(rules RuleSet) *Planner {
	return &Planner{rules: rules}
}

// Plan classifies the request. It never fails: when no rule keyword
// occurs in the request the configured default task is used and
// FallbackReason is set.
//
// Matching is case-folded but not trimmed; Query keeps the original
// text with surrounding whitespace removed.
func (p *Planner) Plan(request string) TaskPlan {
	normalized := strings.ToLower(request)
	query := strings.TrimSpace(request)
	priority := p.estimatePriority(normalized)

	for _, rule := range p.rules.Rules {
		var matched []string
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, strings.ToLower(kw)) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			return TaskPlan{
				Task:            rule.Task,
				Tool:            rule.Tool,
				Query:           query,
				MatchedKeywords: matched,
				Priority:        priority,
			}
		}
	}

	return TaskPlan{
		Task:           p.rules.DefaultTask,
		Tool:           p.rules.DefaultTool,
		Query:          query,
		Priority:       priority,
		FallbackReason: "fallback",
	}
}

// estimatePriority scans the marker table in declared order and returns
// the first matching level, defaulting to standard.
func (p *Planner) estimatePriority(normalized string) Priority {
	for _, m := range p.rules.Markers {
		if strings.Contains(normalized, strings.ToLower(m.Marker)) {
			return m.Level
		}
	}
	return PriorityStandard
}
