package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"maintpilot/internal/audit"
	"maintpilot/internal/corpus"
	"maintpilot/internal/pipeline"
	"maintpilot/internal/planner"
	"maintpilot/internal/workspace"
)

const appName = "maintpilot"

func main() {
	flag.String("workspace", "", "Path to workspace root")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: maintenance-assistant reasoning pipeline\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  ask     Answer a single maintenance request")
		fmt.Fprintln(os.Stderr, "  demo    Run the sample requests")
		fmt.Fprintln(os.Stderr, "  init    Initialize a new workspace")
		fmt.Fprintln(os.Stderr, "  corpus  Show loaded corpus record counts")
		fmt.Fprintln(os.Stderr, "  rules   Validate a planner rule file")
		fmt.Fprintln(os.Stderr, "  audit   Show recent audit events")
		fmt.Fprintln(os.Stderr, "  help    Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	workspacePath, remaining, err := extractWorkspaceFlag(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := remaining
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	switch args[0] {
	case "ask":
		if err := runAsk(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "demo":
		if err := runDemo(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "corpus":
		if err := runCorpus(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "rules":
		if err := runRules(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "audit":
		if err := runAudit(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
}

func extractWorkspaceFlag(args []string) (string, []string, error) {
	var workspacePath string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--workspace" {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--workspace requires a value")
			}
			workspacePath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--workspace=") {
			workspacePath = strings.TrimPrefix(arg, "--workspace=")
			continue
		}
		remaining = append(remaining, arg)
	}
	return workspacePath, remaining, nil
}

type buildOverrides struct {
	DataDir   string
	RulesPath string
	AuditDB   string
}

type builtPipeline struct {
	Workspace *workspace.Workspace
	Pipeline  *pipeline.Pipeline
	Store     *corpus.Store
	Logger    *audit.Logger
}

// buildPipeline resolves the workspace, loads the rule set and the
// corpora, and wires the four stages.
func buildPipeline(workspacePath string, overrides buildOverrides) (*builtPipeline, error) {
	if strings.TrimSpace(workspacePath) == "" {
		return nil, fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(workspacePath)
	if err != nil {
		return nil, err
	}

	dataDir := ws.DataDir
	if overrides.DataDir != "" {
		dataDir, err = ws.ResolvePath(overrides.DataDir)
		if err != nil {
			return nil, fmt.Errorf("resolve --data: %w", err)
		}
	}
	rulesPath := ws.RulesPath
	if overrides.RulesPath != "" {
		rulesPath, err = ws.ResolvePath(overrides.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("resolve --rules: %w", err)
		}
	}
	auditDB := ws.AuditDBPath
	if overrides.AuditDB != "" {
		auditDB, err = ws.ResolvePath(overrides.AuditDB)
		if err != nil {
			return nil, fmt.Errorf("resolve --audit-db: %w", err)
		}
	}

	rules, err := resolveRuleSet(rulesPath, overrides.RulesPath != "")
	if err != nil {
		return nil, err
	}

	store, err := corpus.Load(&corpus.DirProvider{Dir: dataDir})
	if err != nil {
		return nil, err
	}

	return &builtPipeline{
		Workspace: ws,
		Pipeline:  pipeline.New(rules, store),
		Store:     store,
		Logger:    audit.NewLogger(auditDB),
	}, nil
}

// resolveRuleSet loads the rule file when present, falling back to the
// builtin rules. An explicitly requested file must exist.
func resolveRuleSet(path string, required bool) (planner.RuleSet, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return planner.DefaultRuleSet(), nil
		}
		return planner.RuleSet{}, fmt.Errorf("rule file: %w", err)
	}
	return planner.LoadRuleSet(path)
}

func runAsk(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dataDir := fs.String("data", "", "Corpus data directory (default: <workspace>/data)")
	rulesPath := fs.String("rules", "", "Planner rule file (default: <workspace>/rules.yml)")
	auditDB := fs.String("audit-db", "", "Audit database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	request := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if request == "" {
		return fmt.Errorf("%s ask: a request is required", appName)
	}

	built, err := buildPipeline(workspacePath, buildOverrides{
		DataDir:   *dataDir,
		RulesPath: *rulesPath,
		AuditDB:   *auditDB,
	})
	if err != nil {
		return err
	}

	answerRequest(built, request)
	return nil
}

func runDemo(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dataDir := fs.String("data", "", "Corpus data directory (default: <workspace>/data)")
	rulesPath := fs.String("rules", "", "Planner rule file (default: <workspace>/rules.yml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	built, err := buildPipeline(workspacePath, buildOverrides{
		DataDir:   *dataDir,
		RulesPath: *rulesPath,
	})
	if err != nil {
		return err
	}

	requests := []string{
		"冲压线告警提示伺服电机振动异常，给个诊断建议",
		"SOP 查询：注塑机-03 保压阶段压力不足该如何处理",
		"BOM 显示 Line-Assembly-02 夹具气缸漏气，推荐工单",
	}
	for _, request := range requests {
		answerRequest(built, request)
		fmt.Println()
	}
	return nil
}

// answerRequest runs one pipeline pass, prints every stage artifact,
// and records audit events best-effort.
func answerRequest(built *builtPipeline, request string) {
	if err := built.Logger.LogEvent("cli", "request_received", map[string]any{
		"request": request,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	out := built.Pipeline.Run(request)

	fmt.Println("== 请求 ==")
	fmt.Println(out.Request)
	fmt.Println("== 规划 ==")
	fmt.Printf("task=%s tool=%s priority=%s\n", out.Plan.Task, out.Plan.Tool, out.Plan.Priority)
	if len(out.Plan.MatchedKeywords) > 0 {
		fmt.Printf("matched=%s\n", strings.Join(out.Plan.MatchedKeywords, ","))
	}
	if out.Plan.FallbackReason != "" {
		fmt.Printf("reason=%s\n", out.Plan.FallbackReason)
	}
	fmt.Println("== 检索上下文 ==")
	if out.Retrieval.Context == "" {
		fmt.Println("<无>")
	} else {
		fmt.Println(out.Retrieval.Context)
		fmt.Printf("source=%s score=%.2f\n", out.Retrieval.Source, out.Retrieval.Score)
	}
	fmt.Println("== 生成结果 ==")
	fmt.Println(out.Solve.Answer)
	fmt.Println("== 校验 ==")
	fmt.Printf("passed=%t feedback=%s confidence=%.2f\n",
		out.Verification.Passed, out.Verification.Feedback, out.Verification.Confidence)

	_ = built.Logger.LogEvent("cli", "request_answered", map[string]any{
		"request":    request,
		"task":       string(out.Plan.Task),
		"tool":       string(out.Plan.Tool),
		"priority":   string(out.Plan.Priority),
		"source":     out.Retrieval.Source,
		"score":      out.Retrieval.Score,
		"passed":     out.Verification.Passed,
		"confidence": out.Verification.Confidence,
	})
}

func runInit(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}

	root, err := workspace.ResolveRoot(workspacePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	if err := writeFileIfMissing(ws.RulesPath, starterRulesTemplate); err != nil {
		return err
	}
	if err := writeFileIfMissing(filepath.Join(ws.DataDir, corpus.DiagnosticsFile), starterDiagnosticsTemplate); err != nil {
		return err
	}
	if err := writeFileIfMissing(filepath.Join(ws.DataDir, corpus.SOPFile), starterSOPTemplate); err != nil {
		return err
	}
	if err := writeFileIfMissing(filepath.Join(ws.DataDir, corpus.WorkordersFile), starterWorkordersTemplate); err != nil {
		return err
	}

	logger := audit.NewLogger(ws.AuditDBPath)
	_ = logger.LogEvent("cli", "workspace_initialized", map[string]any{
		"workspace": ws.Root,
	})

	fmt.Fprintf(os.Stdout, "Initialized workspace: %s\n", ws.Root)
	fmt.Fprintln(os.Stdout, "Next steps:")
	fmt.Fprintf(os.Stdout, "  %s demo --workspace %s\n", appName, ws.Root)
	fmt.Fprintf(os.Stdout, "  %s ask --workspace %s \"冲压线告警提示伺服电机振动异常，给个诊断建议\"\n", appName, ws.Root)
	return nil
}

func runCorpus(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("corpus", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dataDir := fs.String("data", "", "Corpus data directory (default: <workspace>/data)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	built, err := buildPipeline(workspacePath, buildOverrides{DataDir: *dataDir})
	if err != nil {
		return err
	}
	for _, kind := range corpus.Kinds() {
		fmt.Printf("%-12s %d records\n", kind, built.Store.Count(kind))
	}
	return nil
}

func runRules(args []string, workspacePath string) error {
	if len(args) == 0 || args[0] != "validate" {
		return fmt.Errorf("%s rules: expected subcommand \"validate\"", appName)
	}
	fs := flag.NewFlagSet("rules validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	rulesPath := fs.String("rules", "", "Planner rule file (default: <workspace>/rules.yml)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(workspacePath)
	if err != nil {
		return err
	}
	path := ws.RulesPath
	if *rulesPath != "" {
		path, err = ws.ResolvePath(*rulesPath)
		if err != nil {
			return fmt.Errorf("resolve --rules: %w", err)
		}
	}

	rules, err := planner.LoadRuleSet(path)
	if err != nil {
		return err
	}
	fmt.Printf("OK: %d rules, %d priority markers, default task %s\n",
		len(rules.Rules), len(rules.Markers), rules.DefaultTask)
	return nil
}

func runAudit(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 20, "Maximum number of events to show")
	auditDB := fs.String("audit-db", "", "Audit database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(workspacePath)
	if err != nil {
		return err
	}
	dbPath := ws.AuditDBPath
	if *auditDB != "" {
		dbPath, err = ws.ResolvePath(*auditDB)
		if err != nil {
			return fmt.Errorf("resolve --audit-db: %w", err)
		}
	}

	events, err := audit.NewLogger(dbPath).RecentEvents(*limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no audit events")
		return nil
	}
	for _, e := range events {
		fmt.Printf("%s  %-8s %-22s %s\n",
			e.Timestamp.UTC().Format("2006-01-02T15:04:05Z"), e.Actor, e.Type, e.PayloadJSON)
	}
	return nil
}

func writeFileIfMissing(path string, contents string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure dir for %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}

const starterRulesTemplate = `default_task: sop_lookup
rules:
  - task: anomaly_diagnosis
    keywords: ["告警", "报警", "异常", "诊断"]
  - task: sop_lookup
    keywords: ["sop", "保全", "操作规程", "标准作业", "步骤", "检修"]
  - task: workorder_recommendation
    keywords: ["bom", "工单", "备件", "物料", "更换", "维修任务"]
priority_markers:
  - marker: 紧急
    level: high
  - marker: 立即
    level: high
  - marker: 尽快
    level: high
  - marker: 建议
    level: standard
  - marker: 优化
    level: standard
`

const starterDiagnosticsTemplate = `alert_id,symptom,probable_causes,recommended_actions
ALM-1001,伺服电机振动异常,轴承磨损或联轴器松动,停机检查轴承并紧固联轴器
ALM-1002,液压站油温过高,冷却器堵塞或油位过低,清洗冷却器并补充液压油
ALM-1003,输送带跑偏,托辊偏磨或张紧不均,调整张紧装置并更换磨损托辊
`

const starterSOPTemplate = `equipment,issue,sop_steps
注塑机-03,保压阶段压力不足,1. 检查液压泵出口压力；2. 校验压力传感器；3. 检查保压阀泄漏；4. 记录并上报
冲压线-01,模具闭合异响,1. 停机断电；2. 检查导柱润滑；3. 清理模面异物；4. 试运行确认
空压机-02,排气压力波动,1. 检查进气阀；2. 排查管路泄漏；3. 校准压力开关
`

const starterWorkordersTemplate = `# 资产 | 问题 | 工单 | 建议
Line-Assembly-02 | 夹具气缸漏气 | 工单: WO-2043 | 建议: 更换气缸密封件并检测气路
Line-Press-01 | 伺服阀响应迟缓 | 工单: WO-2051 | 建议: 清洗伺服阀并更换过滤器
Line-Weld-03 | 焊枪冷却水流量低 | 工单: WO-2060 | 建议: 清理冷却水路并检查水泵
`
