// Package engines defines the execution engine contract and the shared
// database/sql plumbing behind the concrete backends.
package engines

import (
	"context"

	"github.com/TFMV/janus/pkg/models"
)

// Stable engine names reported by GetName. The names identify a routing
// role for diagnostics and logs; routing logic never branches on them.
const (
	NameTransactional = "Transactional"
	NameAnalytical    = "Analytical"
)

// Engine is the capability contract both backends implement.
type Engine interface {
	// Execute runs raw statement text and adapts the backend's native
	// result into a QueryResult.
	Execute(ctx context.Context, query string, args ...interface{}) (*models.QueryResult, error)
	// ExecuteWithPlan runs a pre-built logical plan. The statement text is
	// recovered from the plan's scan leaf.
	ExecuteWithPlan(ctx context.Context, plan *models.PlanNode) (*models.QueryResult, error)
	// GetName returns the engine's stable diagnostic name.
	GetName() string
}
