package planner

import (
	"errors"
	"testing"
)

const validRulesYAML = `default_task: sop_lookup
rules:
  - task: anomaly_diagnosis
    keywords: ["告警", "报警"]
  - task: sop_lookup
    tool: sop_lookup
    keywords: ["sop", "步骤"]
priority_markers:
  - marker: 紧急
    level: high
  - marker: 建议
    level: standard
`

func TestParseRuleSetValid(t *testing.T) {
	rs, err := ParseRuleSet([]byte(validRulesYAML), "rules.yml")
	if err != nil {
		t.Fatalf("ParseRuleSet: %v", err)
	}
	if got, want := len(rs.Rules), 2; got != want {
		t.Fatalf("rules = %d, want %d", got, want)
	}
	if got, want := rs.Rules[0].Task, TaskAnomalyDiagnosis; got != want {
		t.Fatalf("first rule task = %q, want %q", got, want)
	}
	// tool defaults to the task identifier when omitted
	if got, want := rs.Rules[0].Tool, ToolAnomalyDiagnosis; got != want {
		t.Fatalf("first rule tool = %q, want %q", got, want)
	}
	if got, want := rs.DefaultTool, ToolSOPLookup; got != want {
		t.Fatalf("default tool = %q, want %q", got, want)
	}
	if got, want := rs.Markers[0].Level, PriorityHigh; got != want {
		t.Fatalf("first marker level = %q, want %q", got, want)
	}
}

func TestParseRuleSetPreservesOrder(t *testing.T) {
	rs, err := ParseRuleSet([]byte(validRulesYAML), "rules.yml")
	if err != nil {
		t.Fatalf("ParseRuleSet: %v", err)
	}
	if rs.Rules[0].Task != TaskAnomalyDiagnosis || rs.Rules[1].Task != TaskSOPLookup {
		t.Fatalf("rule order not preserved: %v", rs.Rules)
	}
	if rs.Markers[0].Marker != "紧急" || rs.Markers[1].Marker != "建议" {
		t.Fatalf("marker order not preserved: %v", rs.Markers)
	}
}

func TestParseRuleSetMissingKeywords(t *testing.T) {
	doc := `default_task: sop_lookup
rules:
  - task: anomaly_diagnosis
    keywords: []
`
	_, err := ParseRuleSet([]byte(doc), "rules.yml")
	if err == nil {
		t.Fatal("ParseRuleSet should fail for a rule without keywords")
	}
	var vErrs ValidationErrors
	if !errors.As(err, &vErrs) {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}
	if got, want := vErrs[0].Field, "rules[0].keywords"; got != want {
		t.Fatalf("field = %q, want %q", got, want)
	}
}

func TestParseRuleSetMissingDefaultTask(t *testing.T) {
	doc := `rules:
  - task: anomaly_diagnosis
    keywords: ["告警"]
`
	_, err := ParseRuleSet([]byte(doc), "rules.yml")
	if err == nil {
		t.Fatal("ParseRuleSet should fail without default_task")
	}
}

func TestParseRuleSetBadMarkerLevel(t *testing.T) {
	doc := `default_task: sop_lookup
rules:
  - task: sop_lookup
    keywords: ["sop"]
priority_markers:
  - marker: 紧急
    level: urgent
`
	_, err := ParseRuleSet([]byte(doc), "rules.yml")
	if err == nil {
		t.Fatal("ParseRuleSet should reject unknown priority levels")
	}
}

func TestParseRuleSetInvalidYAML(t *testing.T) {
	_, err := ParseRuleSet([]byte("rules: ["), "rules.yml")
	if err == nil {
		t.Fatal("ParseRuleSet should fail on malformed YAML")
	}
}
