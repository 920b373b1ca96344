package services

import (
	"context"
	"strings"
	"time"

	"github.com/TFMV/janus/pkg/cache"
	"github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
	"github.com/TFMV/janus/pkg/router"
)

// DefaultMaxQueryLength bounds accepted statement text when no limit is
// configured.
const DefaultMaxQueryLength = 100_000

// Limits bounds what the service accepts and how long it waits.
type Limits struct {
	// MaxQueryLength is the maximum statement length in bytes.
	MaxQueryLength int
	// DefaultTimeout applies when a request carries no timeout of its own.
	// Zero means no timeout.
	DefaultTimeout time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.MaxQueryLength <= 0 {
		l.MaxQueryLength = DefaultMaxQueryLength
	}
	return l
}

// queryService implements QueryService on top of the Router. The Router
// stays pure; validation, logging, metrics, and explanation caching all
// live here.
type queryService struct {
	router       *router.Router
	explanations cache.Cache
	limits       Limits
	logger       Logger
	metrics      MetricsCollector
}

// NewQueryService creates a new query service. The explanation cache is
// optional; pass nil to disable caching.
func NewQueryService(
	r *router.Router,
	explanations cache.Cache,
	limits Limits,
	logger Logger,
	metrics MetricsCollector,
) QueryService {
	return &queryService{
		router:       r,
		explanations: explanations,
		limits:       limits.withDefaults(),
		logger:       logger,
		metrics:      metrics,
	}
}

// ExecuteQuery executes a query with proper error handling and metrics.
func (s *queryService) ExecuteQuery(ctx context.Context, req *models.QueryRequest) (*models.QueryResult, error) {
	timer := s.metrics.StartTimer("query_execution")
	defer timer.Stop()

	if err := s.validateQueryRequest(req); err != nil {
		s.metrics.IncrementCounter("query_validation_errors")
		return nil, err
	}

	queryType := s.router.ClassifyQuery(req.Query)

	s.logger.Debug("Executing query",
		"query", truncateQuery(req.Query),
		"query_type", queryType.String(),
		"args_count", len(req.Parameters))

	queryCtx := ctx
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.limits.DefaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.router.RouteQuery(queryCtx, req.Query, req.Parameters...)
	executionTime := time.Since(start)

	if err != nil {
		s.metrics.IncrementCounter("query_execution_errors", "query_type", queryType.String())
		s.logger.Error("Query execution failed",
			"error", err,
			"query", truncateQuery(req.Query),
			"query_type", queryType.String(),
			"execution_time", executionTime)
		return nil, err
	}

	s.metrics.IncrementCounter("successful_queries", "query_type", queryType.String())
	s.metrics.RecordHistogram("query_execution_time", executionTime.Seconds(), "query_type", queryType.String())
	s.metrics.RecordHistogram("query_result_rows", float64(len(result.Rows)))

	s.logger.Info("Query executed successfully",
		"query", truncateQuery(req.Query),
		"query_type", queryType.String(),
		"rows", len(result.Rows),
		"execution_time", executionTime)

	return result, nil
}

// ExplainQuery returns the routing summary for a statement, consulting the
// explanation cache when one is configured. Explanations derive purely
// from statement text, so cached entries never go stale.
func (s *queryService) ExplainQuery(ctx context.Context, query string) (*models.ExplainResult, error) {
	timer := s.metrics.StartTimer("query_explanation")
	defer timer.Stop()

	if err := s.ValidateQuery(ctx, query); err != nil {
		return nil, err
	}

	key := cache.Key(query)
	if s.explanations != nil {
		if cached, err := s.explanations.Get(ctx, key); err == nil && cached != nil {
			s.metrics.IncrementCounter("explanation_cache_hits")
			return cached, nil
		}
		s.metrics.IncrementCounter("explanation_cache_misses")
	}

	result, err := s.router.Explain(ctx, query)
	if err != nil {
		s.metrics.IncrementCounter("explanation_errors")
		s.logger.Error("Explain failed", "error", err, "query", truncateQuery(query))
		return nil, err
	}

	if s.explanations != nil {
		if err := s.explanations.Put(ctx, key, result); err != nil {
			s.logger.Warn("Failed to cache explanation", "error", err)
		}
	}

	s.logger.Debug("Query explained",
		"query", truncateQuery(query),
		"query_type", result.QueryType,
		"engine", result.Engine)

	return result, nil
}

// ClassifyQuery returns the classification for a statement.
func (s *queryService) ClassifyQuery(ctx context.Context, query string) (*models.ClassifyResult, error) {
	if err := s.ValidateQuery(ctx, query); err != nil {
		return nil, err
	}

	queryType := s.router.ClassifyQuery(query)
	s.metrics.IncrementCounter("classifications", "query_type", queryType.String())

	return &models.ClassifyResult{QueryType: queryType.String()}, nil
}

// ValidateQuery validates a statement without executing it.
func (s *queryService) ValidateQuery(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.ErrEmptyQuery
	}
	if len(query) > s.limits.MaxQueryLength {
		return errors.New(errors.CodeInvalidRequest, "query exceeds maximum length").
			WithDetail("max_length", s.limits.MaxQueryLength)
	}
	return nil
}

// validateQueryRequest validates a query request.
func (s *queryService) validateQueryRequest(req *models.QueryRequest) error {
	if req == nil {
		return errors.New(errors.CodeInvalidRequest, "query request cannot be nil")
	}
	if err := s.ValidateQuery(context.Background(), req.Query); err != nil {
		return err
	}
	if req.Timeout < 0 {
		return errors.New(errors.CodeInvalidRequest, "timeout cannot be negative")
	}
	return nil
}

// truncateQuery truncates long queries for logging.
func truncateQuery(query string) string {
	const maxLen = 100
	if len(query) <= maxLen {
		return query
	}
	return query[:maxLen] + "..."
}
