package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"maintpilot/internal/corpus"
	"maintpilot/internal/planner"
)

func TestExtractWorkspaceFlag(t *testing.T) {
	ws, rest, err := extractWorkspaceFlag([]string{"ask", "--workspace", "/tmp/ws", "设备告警"})
	if err != nil {
		t.Fatalf("extractWorkspaceFlag: %v", err)
	}
	if ws != "/tmp/ws" {
		t.Fatalf("workspace = %q, want /tmp/ws", ws)
	}
	if len(rest) != 2 || rest[0] != "ask" {
		t.Fatalf("remaining = %v", rest)
	}

	ws, _, err = extractWorkspaceFlag([]string{"--workspace=/tmp/other", "demo"})
	if err != nil {
		t.Fatalf("extractWorkspaceFlag: %v", err)
	}
	if ws != "/tmp/other" {
		t.Fatalf("workspace = %q, want /tmp/other", ws)
	}

	if _, _, err := extractWorkspaceFlag([]string{"--workspace"}); err == nil {
		t.Fatal("missing value should error")
	}
}

func TestResolveRuleSetFallsBackToBuiltin(t *testing.T) {
	rules, err := resolveRuleSet(filepath.Join(t.TempDir(), "rules.yml"), false)
	if err != nil {
		t.Fatalf("resolveRuleSet: %v", err)
	}
	if got, want := rules.DefaultTask, planner.TaskSOPLookup; got != want {
		t.Fatalf("default task = %q, want %q", got, want)
	}
}

func TestResolveRuleSetRequiredMustExist(t *testing.T) {
	if _, err := resolveRuleSet(filepath.Join(t.TempDir(), "rules.yml"), true); err == nil {
		t.Fatal("explicitly requested rule file should be required")
	}
}

func TestStarterTemplatesLoad(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		corpus.DiagnosticsFile: starterDiagnosticsTemplate,
		corpus.SOPFile:         starterSOPTemplate,
		corpus.WorkordersFile:  starterWorkordersTemplate,
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store, err := corpus.Load(&corpus.DirProvider{Dir: dir})
	if err != nil {
		t.Fatalf("load starter corpora: %v", err)
	}
	for _, kind := range corpus.Kinds() {
		if store.Count(kind) != 3 {
			t.Fatalf("starter %s corpus = %d records, want 3", kind, store.Count(kind))
		}
	}

	if _, err := planner.ParseRuleSet([]byte(starterRulesTemplate), "rules.yml"); err != nil {
		t.Fatalf("starter rules invalid: %v", err)
	}
}

func TestStarterRulesMatchBuiltin(t *testing.T) {
	parsed, err := planner.ParseRuleSet([]byte(starterRulesTemplate), "rules.yml")
	if err != nil {
		t.Fatalf("parse starter rules: %v", err)
	}
	builtin := planner.DefaultRuleSet()
	if len(parsed.Rules) != len(builtin.Rules) {
		t.Fatalf("starter rules = %d, builtin = %d", len(parsed.Rules), len(builtin.Rules))
	}
	for i := range parsed.Rules {
		if parsed.Rules[i].Task != builtin.Rules[i].Task {
			t.Fatalf("rule %d task = %q, builtin %q", i, parsed.Rules[i].Task, builtin.Rules[i].Task)
		}
		if strings.Join(parsed.Rules[i].Keywords, ",") != strings.Join(builtin.Rules[i].Keywords, ",") {
			t.Fatalf("rule %d keywords diverge from builtin", i)
		}
	}
}
