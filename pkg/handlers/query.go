package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
	"github.com/askdb-labs/askdb-engine/pkg/audit"
	"github.com/askdb-labs/askdb-engine/pkg/executor"
	"github.com/askdb-labs/askdb-engine/pkg/middleware"
	"github.com/askdb-labs/askdb-engine/pkg/models"
	"github.com/askdb-labs/askdb-engine/pkg/retrieval"
	"github.com/askdb-labs/askdb-engine/pkg/services"
	"github.com/askdb-labs/askdb-engine/pkg/sql"
)

// GenerateRequest asks for a SQL query from a natural-language question.
type GenerateRequest struct {
	NaturalLanguage string `json:"natural_language"`
}

// GenerateResponse carries the generated SQL and the token that authorizes
// its execution.
type GenerateResponse struct {
	Token string `json:"token"`
	SQL   string `json:"sql"`
}

// ExecuteRequest confirms execution of a previously generated query.
type ExecuteRequest struct {
	Token  string `json:"token"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// FeedbackRequest records a verdict about a generated query.
type FeedbackRequest struct {
	Token        string `json:"token"`
	Verdict      string `json:"verdict"`
	CorrectedSQL string `json:"corrected_sql,omitempty"`
}

// QueryHandler exposes the generate, execute, feedback, and similar-rows
// endpoints.
type QueryHandler struct {
	generation *services.GenerationService
	feedback   *services.FeedbackService
	tokens     services.QueryTokenStore
	executor   executor.Executor

	generateLimiter *middleware.RateLimiter
	feedbackLimiter *middleware.RateLimiter

	logger *zap.Logger
	audit  *audit.Logger
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(
	generation *services.GenerationService,
	feedback *services.FeedbackService,
	tokens services.QueryTokenStore,
	exec executor.Executor,
	generateLimiter *middleware.RateLimiter,
	feedbackLimiter *middleware.RateLimiter,
	logger *zap.Logger,
) *QueryHandler {
	return &QueryHandler{
		generation:      generation,
		feedback:        feedback,
		tokens:          tokens,
		executor:        exec,
		generateLimiter: generateLimiter,
		feedbackLimiter: feedbackLimiter,
		logger:          logger.Named("query_handler"),
		audit:           audit.NewLogger(logger),
	}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/v1/generate", h.generateLimiter.Middleware(http.HandlerFunc(h.Generate)))
	mux.HandleFunc("POST /api/v1/execute", h.Execute)
	mux.Handle("POST /api/v1/feedback", h.feedbackLimiter.Middleware(http.HandlerFunc(h.Feedback)))
	mux.HandleFunc("GET /api/v1/similar-rows", h.SimilarRows)
}

// Generate handles POST /api/v1/generate.
func (h *QueryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	query, err := h.generation.Generate(r.Context(), req.NaturalLanguage)
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, GenerateResponse{Token: query.Token, SQL: query.SQL}); err != nil {
		h.logger.Error("Failed to encode generate response", zap.Error(err))
	}
}

func (h *QueryHandler) writeGenerationError(w http.ResponseWriter, err error) {
	var unsafeErr *apperrors.UnsafeQueryError
	var completionErr *apperrors.CompletionError

	switch {
	case errors.Is(err, apperrors.ErrEmptyInput):
		_ = ErrorResponse(w, http.StatusBadRequest, "empty_input", err.Error())
	case errors.As(err, &unsafeErr):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "unsafe_query", unsafeErr.Error())
	case errors.Is(err, apperrors.ErrSchemaUnavailable):
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "schema_unavailable", "database schema could not be read")
	case errors.As(err, &completionErr):
		_ = ErrorResponse(w, http.StatusBadGateway, "completion_failed", "model completion failed")
	default:
		h.logger.Error("generation failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "query generation failed")
	}
}

// Execute handles POST /api/v1/execute. The token is consumed; a second
// execute with the same token fails.
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if req.Token == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_token", "token is required")
		return
	}

	query, err := h.tokens.Consume(req.Token)
	if err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "token_not_found", "token is unknown, expired, or already used")
		return
	}

	// Defense in depth: the stored SQL passed validation at generation time,
	// but nothing may execute without passing it again.
	if err := sql.ValidateReadOnly(query.SQL); err != nil {
		var unsafeErr *apperrors.UnsafeQueryError
		if errors.As(err, &unsafeErr) {
			h.audit.UnsafeQueryRejected(unsafeErr.Keyword, unsafeErr.Reason)
		}
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "unsafe_query", err.Error())
		return
	}

	start := time.Now()
	result, err := h.executor.Execute(r.Context(), query.SQL, executor.Options{Limit: req.Limit, Offset: req.Offset})
	if err != nil {
		var timeoutErr *apperrors.ExecutionTimeoutError
		if errors.As(err, &timeoutErr) {
			_ = ErrorResponse(w, http.StatusGatewayTimeout, "execution_timeout", timeoutErr.Error())
			return
		}
		h.logger.Error("execution failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "execution_failed", "query execution failed")
		return
	}

	h.audit.QueryExecuted(req.Token, len(result.Rows), time.Since(start))
	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode execute response", zap.Error(err))
	}
}

// Feedback handles POST /api/v1/feedback.
func (h *QueryHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if req.Token == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_token", "token is required")
		return
	}

	query, err := h.tokens.Peek(req.Token)
	if err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "token_not_found", "token is unknown or expired")
		return
	}

	verdict := models.FeedbackVerdict(req.Verdict)
	if err := h.feedback.Record(r.Context(), query.NaturalLanguage, query.SQL, verdict, req.CorrectedSQL); err != nil {
		if errors.Is(err, apperrors.ErrInvalidFeedbackVerdict) {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_verdict", err.Error())
			return
		}
		h.logger.Error("feedback recording failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "feedback_failed", "feedback could not be recorded")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "recorded"}); err != nil {
		h.logger.Error("Failed to encode feedback response", zap.Error(err))
	}
}

// SimilarRows handles GET /api/v1/similar-rows?q=...&page=1&page_size=10.
func (h *QueryHandler) SimilarRows(w http.ResponseWriter, r *http.Request) {
	queryText := r.URL.Query().Get("q")
	if queryText == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_query", "q parameter is required")
		return
	}

	page := queryParamInt(r, "page", 1)
	// k caps the neighbor count; page_size narrows the window within it.
	k := queryParamInt(r, "k", 10)
	pageSize := queryParamInt(r, "page_size", k)

	rows, err := h.generation.SimilarRows(r.Context(), queryText, page, pageSize)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyInput) {
			_ = ErrorResponse(w, http.StatusBadRequest, "empty_input", err.Error())
			return
		}
		h.logger.Error("similar-row lookup failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "retrieval_failed", "similar-row lookup failed")
		return
	}

	if rows == nil {
		rows = []models.RetrievedRow{}
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"context":   retrieval.FormatRows(rows),
		"rows":      rows,
		"page":      page,
		"page_size": pageSize,
	}); err != nil {
		h.logger.Error("Failed to encode similar-rows response", zap.Error(err))
	}
}

func queryParamInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
