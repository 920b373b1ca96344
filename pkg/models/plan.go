package models

import "fmt"

// PlanKind identifies the kind of a logical plan node.
type PlanKind int

const (
	PlanKindScan        PlanKind = iota // leaf table/index scan
	PlanKindJoin                        // join of the wrapped input
	PlanKindAggregation                 // grouping / aggregate functions
	PlanKindSort                        // ORDER BY
	PlanKindLimit                       // row count cap
)

// String returns the string representation of the plan kind.
func (k PlanKind) String() string {
	switch k {
	case PlanKindScan:
		return "Scan"
	case PlanKindJoin:
		return "Join"
	case PlanKindAggregation:
		return "Aggregation"
	case PlanKindSort:
		return "Sort"
	case PlanKindLimit:
		return "Limit"
	default:
		return "Unknown"
	}
}

// JoinKind identifies the join variant carried by a Join node.
type JoinKind int

const (
	JoinKindInner JoinKind = iota
	JoinKindLeft
	JoinKindRight
	JoinKindFull
)

// String returns the string representation of the join kind.
func (k JoinKind) String() string {
	switch k {
	case JoinKindInner:
		return "INNER"
	case JoinKindLeft:
		return "LEFT"
	case JoinKindRight:
		return "RIGHT"
	case JoinKindFull:
		return "FULL"
	default:
		return "UNKNOWN"
	}
}

// Attribute keys used on plan nodes. Values are always strings; numeric
// attributes (e.g. the limit count) are stored in decimal form.
const (
	PlanAttrQuery      = "query"      // original statement text, set on the Scan leaf
	PlanAttrTable      = "table"      // primary table name when one could be extracted
	PlanAttrCondition  = "condition"  // join condition text
	PlanAttrGroupBy    = "group_by"   // GROUP BY column list
	PlanAttrAggregates = "aggregates" // aggregate function calls found in the statement
	PlanAttrOrderBy    = "order_by"   // ORDER BY expression list
	PlanAttrLimit      = "limit"      // row cap as a decimal string
)

// PlanNode is one node of a logical query plan tree. A Scan node has no
// children; every other kind wraps exactly one child. Nodes are built once
// per query and must not be mutated after the tree is returned to a caller.
type PlanNode struct {
	Kind       PlanKind          `json:"kind"`
	Join       JoinKind          `json:"join_kind,omitempty"`
	Children   []*PlanNode       `json:"children,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// NewScanNode creates a leaf scan node.
func NewScanNode(attributes map[string]string) *PlanNode {
	return &PlanNode{
		Kind:       PlanKindScan,
		Attributes: attributes,
	}
}

// NewJoinNode wraps child in a join node of the given kind.
func NewJoinNode(join JoinKind, child *PlanNode, attributes map[string]string) *PlanNode {
	return &PlanNode{
		Kind:       PlanKindJoin,
		Join:       join,
		Children:   []*PlanNode{child},
		Attributes: attributes,
	}
}

// NewAggregationNode wraps child in an aggregation node.
func NewAggregationNode(child *PlanNode, attributes map[string]string) *PlanNode {
	return &PlanNode{
		Kind:       PlanKindAggregation,
		Children:   []*PlanNode{child},
		Attributes: attributes,
	}
}

// NewSortNode wraps child in a sort node.
func NewSortNode(child *PlanNode, attributes map[string]string) *PlanNode {
	return &PlanNode{
		Kind:       PlanKindSort,
		Children:   []*PlanNode{child},
		Attributes: attributes,
	}
}

// NewLimitNode wraps child in a limit node.
func NewLimitNode(child *PlanNode, attributes map[string]string) *PlanNode {
	return &PlanNode{
		Kind:       PlanKindLimit,
		Children:   []*PlanNode{child},
		Attributes: attributes,
	}
}

// Attribute returns the value for key, or "" when the node carries no such
// attribute.
func (n *PlanNode) Attribute(key string) string {
	if n == nil || n.Attributes == nil {
		return ""
	}
	return n.Attributes[key]
}

// ScanLeaf walks the tree to its scan leaf. Returns nil if the tree is
// malformed and no scan leaf is reachable.
func (n *PlanNode) ScanLeaf() *PlanNode {
	node := n
	for node != nil {
		if node.Kind == PlanKindScan {
			return node
		}
		if len(node.Children) == 0 {
			return nil
		}
		node = node.Children[0]
	}
	return nil
}

// Validate checks the structural invariants of the tree: a Scan carries no
// children, every other kind carries exactly one, and the tree terminates in
// a Scan leaf.
func (n *PlanNode) Validate() error {
	if n == nil {
		return fmt.Errorf("plan node is nil")
	}
	switch n.Kind {
	case PlanKindScan:
		if len(n.Children) != 0 {
			return fmt.Errorf("scan node must have no children, has %d", len(n.Children))
		}
		return nil
	case PlanKindJoin, PlanKindAggregation, PlanKindSort, PlanKindLimit:
		if len(n.Children) != 1 {
			return fmt.Errorf("%s node must have exactly one child, has %d", n.Kind, len(n.Children))
		}
		return n.Children[0].Validate()
	default:
		return fmt.Errorf("unknown plan kind %d", int(n.Kind))
	}
}
