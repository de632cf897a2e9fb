// Package server is the HTTP transport for the query engine. POST /query
// takes a JSON body, GET /query takes ?q= for quick manual testing, and
// /healthz and /metrics serve operations.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campaign-query/internal/common/config"
	commonerrors "campaign-query/internal/common/errors"
	"campaign-query/internal/common/logger"
	"campaign-query/internal/common/validation"
	"campaign-query/internal/query"
	"campaign-query/internal/query/orchestrator"
)

// QueryRequest is the POST /query body.
type QueryRequest struct {
	Query       string `json:"query"`
	ToolContext string `json:"toolContext,omitempty"`
	TestMode    bool   `json:"testMode,omitempty"`
}

// ErrorResponse is the non-200 error body.
type ErrorResponse struct {
	Error   string                       `json:"error"`
	Code    string                       `json:"code"`
	Details []validation.ValidationError `json:"details,omitempty"`
}

// Server wires the orchestrator to net/http.
type Server struct {
	orch      *orchestrator.Orchestrator
	validator *validation.Validator
	httpSrv   *http.Server
	logger    logger.Logger
}

func New(cfg config.ServerConfig, orch *orchestrator.Orchestrator, log logger.Logger) (*Server, error) {
	validator, err := validation.NewValidator(validation.QueryRequestSchema)
	if err != nil {
		return nil, err
	}

	s := &Server{
		orch:      orch,
		validator: validator,
		logger:    log.WithFields(map[string]interface{}{"component": "server"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
	return s, nil
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.httpSrv.Addr})
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodGet:
		s.handleGet(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", commonerrors.ErrCodeInvalidRequest, nil)
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON", commonerrors.ErrCodeInvalidRequest, nil)
		return
	}

	if res := s.validator.ValidateBytes(raw); !res.Valid {
		s.logger.Warn("invalid query request", map[string]interface{}{
			"requestId": requestID,
			"errors":    len(res.Errors),
		})
		s.writeError(w, http.StatusBadRequest, "request failed validation", commonerrors.ErrCodeInvalidRequest, res.Errors)
		return
	}

	var req QueryRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON", commonerrors.ErrCodeInvalidRequest, nil)
		return
	}

	s.respond(w, r, requestID, req)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter q is required", commonerrors.ErrCodeInvalidRequest, nil)
		return
	}
	s.respond(w, r, uuid.NewString(), QueryRequest{Query: q, TestMode: true})
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, requestID string, req QueryRequest) {
	start := time.Now()

	result := s.processSafely(r.Context(), req.Query)
	result.Metadata.RequestID = requestID

	s.logger.Info("query handled", map[string]interface{}{
		"requestId":  requestID,
		"handler":    result.Metadata.HandlerName,
		"intent":     string(result.Metadata.MatchedIntent),
		"success":    result.Success,
		"durationMs": time.Since(start).Milliseconds(),
		"testMode":   req.TestMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("response encode failed", map[string]interface{}{"requestId": requestID, "error": err.Error()})
	}
}

// processSafely shields the transport from orchestrator faults: a panic
// past the orchestrator's own recovery still yields a 200 envelope.
func (s *Server) processSafely(ctx context.Context, text string) (result *query.HandlerResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("query processing panicked", map[string]interface{}{"panic": r})
			result = &query.HandlerResult{
				Success:          false,
				Response:         "Something went wrong while answering that. Please try again.",
				MapCommands:      []query.MapCommand{},
				SuggestedActions: []query.SuggestedAction{},
				Metadata: query.ResultMetadata{
					HandlerName: "none",
					ErrorCode:   string(commonerrors.ErrCodeInternal),
				},
			}
		}
	}()
	return s.orch.ProcessQuery(ctx, text)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, code commonerrors.ErrorCode, details []validation.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg,
		Code:    string(code),
		Details: details,
	})
}
