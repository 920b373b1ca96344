package models

// ExplainResult represents a routing and planning summary for a statement,
// produced without executing it.
type ExplainResult struct {
	QueryType   string    `json:"query_type"`
	Engine      string    `json:"engine"`
	Plan        *PlanNode `json:"plan"`
	Explanation string    `json:"explanation"`
}

// ClassifyResult represents a bare classification answer.
type ClassifyResult struct {
	QueryType string `json:"query_type"`
}
