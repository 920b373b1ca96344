// Package router couples query classification to engine dispatch.
package router

import (
	"context"

	"github.com/TFMV/janus/pkg/classifier"
	"github.com/TFMV/janus/pkg/engines"
	"github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
	"github.com/TFMV/janus/pkg/planner"
)

// Router is the single point where a QueryType becomes an engine choice.
// It holds exactly two engine handles, fixed at construction, and nothing
// else: no logging, no caching, no retries. Every call is an independent
// one-shot, which makes a single Router safe for any number of concurrent
// callers.
//
// Engine lifecycle (open, close, pooling) belongs to whoever constructs
// the Router; the Router only dispatches.
type Router struct {
	transactional engines.Engine
	analytical    engines.Engine
	classifier    *classifier.Classifier
	planner       *planner.Planner
}

// NewRouter builds a Router over the two required engines. Both handles are
// mandatory and non-swappable afterwards.
func NewRouter(transactional, analytical engines.Engine) *Router {
	c := classifier.NewClassifier()
	return &Router{
		transactional: transactional,
		analytical:    analytical,
		classifier:    c,
		planner:       planner.NewPlanner(c),
	}
}

// RouteQuery classifies the statement and dispatches it to the matching
// engine. Transactional statements run on the transactional engine;
// Analytical and Hybrid statements run on the analytical engine, which is
// the capability superset for anything involving joins or aggregation.
//
// Exactly one engine is invoked per call. If ctx is already done before
// dispatch, no engine is invoked and a cancellation error is returned.
// Engine failures come back wrapped with the QueryType and engine name
// that were selected, never swallowed.
func (r *Router) RouteQuery(ctx context.Context, query string, args ...interface{}) (*models.QueryResult, error) {
	queryType := r.classifier.Classify(query)

	if err := ctx.Err(); err != nil {
		return nil, errors.Cancellation(err, queryType.String())
	}

	engine := r.engineFor(queryType)
	result, err := engine.Execute(ctx, query, args...)
	if err != nil {
		return nil, errors.EngineExecution(err, queryType.String(), engine.GetName())
	}
	return result, nil
}

// RouteWithPlan executes a caller-supplied plan tree. A plan whose root is
// a bare Scan runs on the transactional engine; any other root runs on the
// analytical engine, mirroring how the equivalent statement would route by
// text.
func (r *Router) RouteWithPlan(ctx context.Context, plan *models.PlanNode) (*models.QueryResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidPlan, "plan rejected")
	}

	queryType := queryTypeForRoot(plan.Kind)

	if err := ctx.Err(); err != nil {
		return nil, errors.Cancellation(err, queryType.String())
	}

	engine := r.analytical
	if plan.Kind == models.PlanKindScan {
		engine = r.transactional
	}

	result, err := engine.ExecuteWithPlan(ctx, plan)
	if err != nil {
		return nil, errors.EngineExecution(err, queryType.String(), engine.GetName())
	}
	return result, nil
}

// ExplainQuery plans the statement and returns its rendered plan without
// executing anything. The error channel is reserved for parser-backed
// planning; the heuristic planner never fails.
func (r *Router) ExplainQuery(ctx context.Context, query string) (string, error) {
	plan := r.planner.Plan(query)
	return planner.ExplainPlan(plan, planner.DefaultIndent), nil
}

// Explain returns the full routing summary for a statement: its
// classification, the engine that would serve it, the plan tree, and the
// rendered explanation. Nothing is executed.
func (r *Router) Explain(ctx context.Context, query string) (*models.ExplainResult, error) {
	queryType := r.classifier.Classify(query)
	plan := r.planner.Plan(query)
	return &models.ExplainResult{
		QueryType:   queryType.String(),
		Engine:      r.engineFor(queryType).GetName(),
		Plan:        plan,
		Explanation: planner.ExplainPlan(plan, planner.DefaultIndent),
	}, nil
}

// ClassifyQuery exposes classification directly, for callers that want to
// branch without executing.
func (r *Router) ClassifyQuery(query string) models.QueryType {
	return r.classifier.Classify(query)
}

// PlanQuery exposes planning directly, for callers that want the tree
// without executing.
func (r *Router) PlanQuery(query string) *models.PlanNode {
	return r.planner.Plan(query)
}

// engineFor maps a classification to the engine that serves it. Hybrid
// never goes to the transactional engine.
func (r *Router) engineFor(queryType models.QueryType) engines.Engine {
	if queryType == models.QueryTypeTransactional {
		return r.transactional
	}
	return r.analytical
}

// queryTypeForRoot reports the classification a plan root corresponds to,
// used to attribute plan-dispatch failures.
func queryTypeForRoot(kind models.PlanKind) models.QueryType {
	switch kind {
	case models.PlanKindScan:
		return models.QueryTypeTransactional
	case models.PlanKindJoin:
		return models.QueryTypeHybrid
	default:
		return models.QueryTypeAnalytical
	}
}
