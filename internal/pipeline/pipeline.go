// Package pipeline sequences the four reasoning stages for one
// request: plan, retrieve, solve, verify. The flow is strictly linear
// with no retries; retry or escalation policy belongs to the caller.
package pipeline

import (
	"maintpilot/internal/corpus"
	"maintpilot/internal/planner"
	"maintpilot/internal/retrieval"
	"maintpilot/internal/solver"
	"maintpilot/internal/verify"
)

// Outcome bundles every stage artifact of one run for the presentation
// layer. All fields are immutable once returned.
type Outcome struct {
	Request      string
	Plan         planner.TaskPlan
	Retrieval    retrieval.Result
	Solve        solver.Result
	Verification verify.Result
}

// Pipeline wires the stages over a shared read-only corpus store. All
// stages are pure, so one Pipeline may serve concurrent requests.
type Pipeline struct {
	planner   *planner.Planner
	retriever *retrieval.Retriever
	solver    *solver.Solver
	verifier  *verify.Verifier
}

// New builds a Pipeline from a rule set and a loaded corpus store.
func New(rules planner.RuleSet, store *corpus.Store) *Pipeline {
	return &Pipeline{
		planner:   planner.New(rules),
		retriever: retrieval.New(store),
		solver:    solver.New(),
		verifier:  verify.New(),
	}
}

// Run processes one request through all four stages. It never fails;
// degraded outcomes are reported inside the stage results.
func (p *Pipeline) Run(request string) Outcome {
	plan := p.planner.Plan(request)
	ret := p.retriever.Execute(plan)
	solved := p.solver.Solve(plan, ret)
	verdict := p.verifier.Verify(plan, solved, ret)
	return Outcome{
		Request:      request,
		Plan:         plan,
		Retrieval:    ret,
		Solve:        solved,
		Verification: verdict,
	}
}

// Plan exposes the planning stage for callers driving stages manually.
func (p *Pipeline) Plan(request string) planner.TaskPlan {
	return p.planner.Plan(request)
}

// Retrieve exposes the retrieval stage.
func (p *Pipeline) Retrieve(plan planner.TaskPlan) retrieval.Result {
	return p.retriever.Execute(plan)
}

// Solve exposes the answer-composition stage.
func (p *Pipeline) Solve(plan planner.TaskPlan, ret retrieval.Result) solver.Result {
	return p.solver.Solve(plan, ret)
}

// Verify exposes the terminal verification stage.
func (p *Pipeline) Verify(plan planner.TaskPlan, solved solver.Result, ret retrieval.Result) verify.Result {
	return p.verifier.Verify(plan, solved, ret)
}
