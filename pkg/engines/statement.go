package engines

import (
	"regexp"

	"github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
)

// mutationPattern matches statements that change data or schema. It is
// anchored to the statement start: the routing classifier's broader DML
// detection is a separate concern from choosing the execution path here.
var mutationPattern = regexp.MustCompile(`(?i)^\s*(INSERT|UPDATE|DELETE|CREATE|DROP|ALTER|TRUNCATE|REPLACE|MERGE)\b`)

// IsMutation reports whether a statement must run through Exec rather than
// Query. Statements that return no row set report their affected-row count
// instead.
func IsMutation(query string) bool {
	return mutationPattern.MatchString(query)
}

// PlanQueryText pulls the executable statement out of a plan's scan leaf.
// Plans describe shape; the leaf carries the text an engine actually runs.
func PlanQueryText(plan *models.PlanNode) (string, error) {
	if plan == nil {
		return "", errors.ErrInvalidPlan
	}

	leaf := plan.ScanLeaf()
	if leaf == nil {
		return "", errors.New(errors.CodeInvalidPlan, "plan has no scan leaf")
	}

	query := leaf.Attribute(models.PlanAttrQuery)
	if query == "" {
		return "", errors.New(errors.CodeInvalidPlan, "plan scan leaf carries no query text")
	}

	return query, nil
}
