// Package classifier assigns a routing QueryType to raw SQL statement text.
package classifier

import (
	"regexp"
	"strings"

	"github.com/TFMV/janus/pkg/models"
)

// Classifier decides which engine profile a statement fits. Classification
// runs over a normalized (case-insensitive, whitespace-collapsed) view of
// the statement and is a lexical heuristic, not a parse: clause keywords
// appearing inside string literals can trigger false positives. That
// limitation is accepted; callers needing exact semantics must supply a
// parsed plan instead.
//
// A Classifier is immutable after construction and safe for concurrent use.
// Classification is deterministic: the same input always yields the same
// QueryType.
type Classifier struct {
	mutationPatterns []*regexp.Regexp
	joinPattern      *regexp.Regexp
	groupByPattern   *regexp.Regexp
	orderByPattern   *regexp.Regexp
	limitPattern     *regexp.Regexp
	aggregatePattern *regexp.Regexp

	tablePattern     *regexp.Regexp
	joinTablePattern *regexp.Regexp
	joinOnPattern    *regexp.Regexp
	groupByColumns   *regexp.Regexp
	orderByColumns   *regexp.Regexp
	limitCount       *regexp.Regexp
	clauseBreak      *regexp.Regexp
}

// StatementFeatures holds the structural cues detected in one statement.
// Classification and planning both derive from the same features, so a
// statement's plan always agrees with its routing decision.
type StatementFeatures struct {
	Mutation      bool
	Join          bool
	Grouping      bool
	OrderBy       bool
	TopLevelLimit bool

	Table          string
	JoinTable      string
	JoinCondition  string
	GroupByColumns string
	Aggregates     []string
	OrderByColumns string
	LimitCount     string
}

// NewClassifier creates a classifier with all detection patterns compiled.
func NewClassifier() *Classifier {
	c := &Classifier{}
	c.initializePatterns()
	return c
}

// initializePatterns compiles the regex patterns used for detection and
// attribute extraction.
func (c *Classifier) initializePatterns() {
	c.mutationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bINSERT\b`),
		regexp.MustCompile(`(?i)\bUPDATE\b`),
		regexp.MustCompile(`(?i)\bDELETE\b`),
	}

	c.joinPattern = regexp.MustCompile(`(?i)\bJOIN\b`)
	c.groupByPattern = regexp.MustCompile(`(?i)\bGROUP BY\b`)
	c.orderByPattern = regexp.MustCompile(`(?i)\bORDER BY\b`)
	c.limitPattern = regexp.MustCompile(`(?i)\bLIMIT\b`)
	c.aggregatePattern = regexp.MustCompile(`(?i)\b(COUNT|SUM|AVG|MIN|MAX|STDDEV|VARIANCE|MEDIAN)\s*\(`)

	c.tablePattern = regexp.MustCompile(`(?i)\bFROM\s+([A-Za-z_][\w.]*)`)
	c.joinTablePattern = regexp.MustCompile(`(?i)\bJOIN\s+([A-Za-z_][\w.]*)`)
	c.joinOnPattern = regexp.MustCompile(`(?i)\bON\s+(.+)$`)
	c.groupByColumns = regexp.MustCompile(`(?i)\bGROUP BY\s+(.+)$`)
	c.orderByColumns = regexp.MustCompile(`(?i)\bORDER BY\s+(.+)$`)
	c.limitCount = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)`)
	c.clauseBreak = regexp.MustCompile(`(?i)\s+(WHERE|GROUP BY|ORDER BY|HAVING|LIMIT)\b`)
}

// Classify resolves a QueryType for any input, including malformed SQL.
// The checks run in priority order and the first match wins:
//
//  1. mutations (INSERT, UPDATE, DELETE) are Transactional
//  2. joins are Hybrid
//  3. grouping or aggregate functions are Analytical
//  4. ORDER BY is Analytical
//  5. a top-level LIMIT is Analytical
//  6. everything else, including unclassifiable text, is Transactional
func (c *Classifier) Classify(query string) models.QueryType {
	f := c.Analyze(query)
	switch {
	case f.Mutation:
		return models.QueryTypeTransactional
	case f.Join:
		return models.QueryTypeHybrid
	case f.Grouping:
		return models.QueryTypeAnalytical
	case f.OrderBy:
		return models.QueryTypeAnalytical
	case f.TopLevelLimit:
		return models.QueryTypeAnalytical
	default:
		return models.QueryTypeTransactional
	}
}

// Analyze extracts the structural features of a statement. It never fails;
// text with no recognizable structure yields the zero feature set.
func (c *Classifier) Analyze(query string) StatementFeatures {
	normalized := Normalize(query)

	f := StatementFeatures{
		Join:    c.joinPattern.MatchString(normalized),
		OrderBy: c.orderByPattern.MatchString(normalized),
	}

	for _, pattern := range c.mutationPatterns {
		if pattern.MatchString(normalized) {
			f.Mutation = true
			break
		}
	}

	f.Grouping = c.groupByPattern.MatchString(normalized) || c.aggregatePattern.MatchString(normalized)
	f.TopLevelLimit = c.limitPattern.MatchString(topLevelView(normalized))

	if m := c.tablePattern.FindStringSubmatch(normalized); len(m) > 1 {
		f.Table = m[1]
	}
	if f.Join {
		if m := c.joinTablePattern.FindStringSubmatch(normalized); len(m) > 1 {
			f.JoinTable = m[1]
		}
		if m := c.joinOnPattern.FindStringSubmatch(normalized); len(m) > 1 {
			f.JoinCondition = c.trimAtClause(m[1])
		}
	}
	if f.Grouping {
		if m := c.groupByColumns.FindStringSubmatch(normalized); len(m) > 1 {
			f.GroupByColumns = c.trimAtClause(m[1])
		}
		f.Aggregates = c.extractAggregates(normalized)
	}
	if f.OrderBy {
		if m := c.orderByColumns.FindStringSubmatch(normalized); len(m) > 1 {
			f.OrderByColumns = c.trimAtClause(m[1])
		}
	}
	if f.TopLevelLimit {
		if m := c.limitCount.FindStringSubmatch(normalized); len(m) > 1 {
			f.LimitCount = m[1]
		}
	}

	return f
}

// trimAtClause cuts extracted clause text at the next clause keyword.
func (c *Classifier) trimAtClause(s string) string {
	if loc := c.clauseBreak.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

// extractAggregates returns the distinct aggregate function names called in
// the statement, uppercased, in order of first appearance.
func (c *Classifier) extractAggregates(normalized string) []string {
	matches := c.aggregatePattern.FindAllStringSubmatch(normalized, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var aggregates []string
	for _, m := range matches {
		name := strings.ToUpper(m[1])
		if !seen[name] {
			seen[name] = true
			aggregates = append(aggregates, name)
		}
	}
	return aggregates
}

// Normalize collapses all whitespace runs to single spaces and trims the
// statement. Case is preserved so extracted attributes keep the caller's
// spelling; detection patterns are case-insensitive on their own.
func Normalize(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// topLevelView blanks out quoted literals and parenthesized sub-expressions
// so clause keywords match only at the outermost statement level. Used for
// LIMIT, which only counts when it applies to the whole statement rather
// than a subquery.
func topLevelView(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	depth := 0
	inString := false
	var stringChar byte

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case inString:
			if ch == stringChar {
				inString = false
			}
			b.WriteByte(' ')
		case ch == '\'' || ch == '"':
			inString = true
			stringChar = ch
			b.WriteByte(' ')
		case ch == '(':
			depth++
			b.WriteByte(' ')
		case ch == ')':
			if depth > 0 {
				depth--
			}
			b.WriteByte(' ')
		case depth > 0:
			b.WriteByte(' ')
		default:
			b.WriteByte(ch)
		}
	}

	return b.String()
}
