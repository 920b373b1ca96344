// Package handlers contains the HTTP handlers for the query API.
package handlers

import (
	"encoding/json"
	stdErrors "errors" // Standard library errors aliased
	"net/http"

	routerErrors "github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
)

// maxRequestBody caps the accepted request body size.
const maxRequestBody = 1 << 20

// statusClientClosedRequest is the nginx convention for a client that went
// away before the response was written.
const statusClientClosedRequest = 499

// queryPayload is the request body for POST /v1/query.
type queryPayload struct {
	Query string        `json:"query"`
	Args  []interface{} `json:"args,omitempty"`
}

// statementPayload is the request body for explain and classify.
type statementPayload struct {
	Query string `json:"query"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error *routerErrors.RouterError `json:"error"`
}

// QueryHandler serves the query, explain, and classify endpoints.
type QueryHandler struct {
	queryService QueryService
	logger       Logger
	metrics      MetricsCollector
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(
	queryService QueryService,
	logger Logger,
	metrics MetricsCollector,
) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		logger:       logger,
		metrics:      metrics,
	}
}

// HandleQuery executes a statement and writes its result.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	timer := h.metrics.StartTimer("handler_query")
	defer timer.Stop()

	var payload queryPayload
	if !h.decode(w, r, &payload) {
		return
	}

	h.logger.Debug("Executing query",
		"query", truncateQuery(payload.Query),
		"args_count", len(payload.Args))

	result, err := h.queryService.ExecuteQuery(r.Context(), &models.QueryRequest{
		Query:      payload.Query,
		Parameters: payload.Args,
	})
	if err != nil {
		h.metrics.IncrementCounter("handler_query_errors")
		h.logger.Error("Failed to execute query",
			"error", err,
			"query", truncateQuery(payload.Query))
		h.writeServiceError(w, err)
		return
	}

	h.metrics.RecordHistogram("handler_query_rows", float64(len(result.Rows)))
	writeJSON(w, http.StatusOK, result)
}

// HandleExplain returns the routing summary for a statement without
// executing it.
func (h *QueryHandler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	timer := h.metrics.StartTimer("handler_explain")
	defer timer.Stop()

	var payload statementPayload
	if !h.decode(w, r, &payload) {
		return
	}

	result, err := h.queryService.ExplainQuery(r.Context(), payload.Query)
	if err != nil {
		h.metrics.IncrementCounter("handler_explain_errors")
		h.logger.Error("Failed to explain query",
			"error", err,
			"query", truncateQuery(payload.Query))
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleClassify returns the classification for a statement.
func (h *QueryHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	timer := h.metrics.StartTimer("handler_classify")
	defer timer.Stop()

	var payload statementPayload
	if !h.decode(w, r, &payload) {
		return
	}

	result, err := h.queryService.ClassifyQuery(r.Context(), payload.Query)
	if err != nil {
		h.metrics.IncrementCounter("handler_classify_errors")
		h.logger.Error("Failed to classify query",
			"error", err,
			"query", truncateQuery(payload.Query))
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// decode reads a JSON request body into v, writing a 400 on failure.
func (h *QueryHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.metrics.IncrementCounter("handler_bad_request")
		h.writeServiceError(w, routerErrors.New(routerErrors.CodeInvalidRequest, "invalid JSON body"))
		return false
	}
	return true
}

// writeServiceError maps a service error to an HTTP status and writes the
// error envelope.
func (h *QueryHandler) writeServiceError(w http.ResponseWriter, err error) {
	var routerErr *routerErrors.RouterError
	if !stdErrors.As(err, &routerErr) {
		routerErr = routerErrors.New(routerErrors.CodeInternal, err.Error())
	}
	writeJSON(w, statusForError(err), errorResponse{Error: routerErr})
}

// statusForError maps service error codes to HTTP status codes.
func statusForError(err error) int {
	switch routerErrors.GetCode(err) {
	case routerErrors.CodeInvalidRequest, routerErrors.CodeInvalidPlan:
		return http.StatusBadRequest
	case routerErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case routerErrors.CodeCanceled:
		return statusClientClosedRequest
	case routerErrors.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case routerErrors.CodeConnectionFailed, routerErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes data as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// truncateQuery truncates long queries for logging.
func truncateQuery(query string) string {
	const maxLen = 100
	if len(query) <= maxLen {
		return query
	}
	return query[:maxLen] + "..."
}
