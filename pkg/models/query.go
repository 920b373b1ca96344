// Package models provides data structures shared across the query router.
package models

import "time"

// QueryType classifies a statement for routing purposes.
type QueryType int

const (
	QueryTypeTransactional QueryType = iota // point lookups and mutations
	QueryTypeAnalytical                     // scans, aggregation, sorting
	QueryTypeHybrid                         // joins spanning both profiles
)

// String returns the string representation of the query type.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeTransactional:
		return "Transactional"
	case QueryTypeAnalytical:
		return "Analytical"
	case QueryTypeHybrid:
		return "Hybrid"
	default:
		return "Unknown"
	}
}

// QueryRequest represents a query execution request.
type QueryRequest struct {
	Query      string        `json:"query"`
	Parameters []interface{} `json:"parameters,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
}

// QueryResult represents the result of a query execution. It is produced
// once per execution and never mutated after being returned; both engines
// adapt their native result shape into it at the boundary.
type QueryResult struct {
	Columns         []string        `json:"columns"`
	Rows            [][]interface{} `json:"rows"`
	ExecutionTime   time.Duration   `json:"execution_time"`
	PlanExplanation string          `json:"plan_explanation,omitempty"`
}

// RowsAffectedColumn is the single column name used for mutation results,
// whose one row carries the affected row count.
const RowsAffectedColumn = "rows_affected"
