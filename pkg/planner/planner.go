// Package planner builds logical plan trees from raw SQL statement text.
package planner

import (
	"fmt"
	"strings"

	"github.com/TFMV/janus/pkg/classifier"
	"github.com/TFMV/janus/pkg/models"
)

// DefaultIndent is the per-level indentation used when rendering plans.
const DefaultIndent = "  "

// Planner derives a plan tree from the same structural cues the classifier
// uses, so a statement's plan always agrees with its routing decision. It is
// a pure function of statement text: no engine is consulted and planning
// never fails for input the classifier accepts.
//
// A Planner is immutable after construction and safe for concurrent use.
type Planner struct {
	classifier *classifier.Classifier
}

// NewPlanner creates a planner that shares the given classifier's statement
// analysis.
func NewPlanner(c *classifier.Classifier) *Planner {
	return &Planner{classifier: c}
}

// Plan builds a fresh plan tree for the statement. Construction starts from
// a Scan leaf and wraps it, innermost first, with Join, Aggregation, Sort,
// and Limit nodes as the corresponding clauses are detected. The root is
// therefore the last applicable wrapper; a statement with no recognized
// clauses plans as a bare Scan.
//
// The Scan leaf always carries the normalized statement text, which is how
// engines executing by plan recover the query.
func (p *Planner) Plan(query string) *models.PlanNode {
	f := p.classifier.Analyze(query)

	scanAttrs := map[string]string{
		models.PlanAttrQuery: classifier.Normalize(query),
	}
	if f.Table != "" {
		scanAttrs[models.PlanAttrTable] = f.Table
	}
	node := models.NewScanNode(scanAttrs)

	if f.Join {
		attrs := make(map[string]string)
		if f.JoinTable != "" {
			attrs[models.PlanAttrTable] = f.JoinTable
		}
		if f.JoinCondition != "" {
			attrs[models.PlanAttrCondition] = f.JoinCondition
		}
		node = models.NewJoinNode(models.JoinKindInner, node, attrs)
	}

	if f.Grouping {
		attrs := make(map[string]string)
		if f.GroupByColumns != "" {
			attrs[models.PlanAttrGroupBy] = f.GroupByColumns
		}
		if len(f.Aggregates) > 0 {
			attrs[models.PlanAttrAggregates] = strings.Join(f.Aggregates, ", ")
		}
		node = models.NewAggregationNode(node, attrs)
	}

	if f.OrderBy {
		attrs := make(map[string]string)
		if f.OrderByColumns != "" {
			attrs[models.PlanAttrOrderBy] = f.OrderByColumns
		}
		node = models.NewSortNode(node, attrs)
	}

	if f.TopLevelLimit {
		attrs := make(map[string]string)
		if f.LimitCount != "" {
			attrs[models.PlanAttrLimit] = f.LimitCount
		}
		node = models.NewLimitNode(node, attrs)
	}

	return node
}

// ExplainPlan renders a plan tree one node per line, each child indented one
// level deeper than its parent. The indent string is repeated per level.
// Every well-formed tree renders non-empty, including a bare Scan; a nil
// plan renders as the empty string.
func ExplainPlan(plan *models.PlanNode, indent string) string {
	if plan == nil {
		return ""
	}

	var b strings.Builder
	explainNode(&b, plan, 0, indent)
	return b.String()
}

func explainNode(b *strings.Builder, node *models.PlanNode, depth int, indent string) {
	b.WriteString(strings.Repeat(indent, depth))
	b.WriteString(renderNode(node))
	b.WriteByte('\n')

	for _, child := range node.Children {
		explainNode(b, child, depth+1, indent)
	}
}

// renderNode formats a single node with its most useful attributes.
func renderNode(node *models.PlanNode) string {
	switch node.Kind {
	case models.PlanKindScan:
		if table := node.Attribute(models.PlanAttrTable); table != "" {
			return fmt.Sprintf("Scan on %s", table)
		}
		return "Scan"
	case models.PlanKindJoin:
		s := fmt.Sprintf("Join (%s)", node.Join)
		if cond := node.Attribute(models.PlanAttrCondition); cond != "" {
			s += " on " + cond
		}
		return s
	case models.PlanKindAggregation:
		s := "Aggregation"
		if aggs := node.Attribute(models.PlanAttrAggregates); aggs != "" {
			s += " (" + aggs + ")"
		}
		if group := node.Attribute(models.PlanAttrGroupBy); group != "" {
			s += " group by " + group
		}
		return s
	case models.PlanKindSort:
		s := "Sort"
		if order := node.Attribute(models.PlanAttrOrderBy); order != "" {
			s += " by " + order
		}
		return s
	case models.PlanKindLimit:
		s := "Limit"
		if count := node.Attribute(models.PlanAttrLimit); count != "" {
			s += " " + count
		}
		return s
	default:
		return node.Kind.String()
	}
}
