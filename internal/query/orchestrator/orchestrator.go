// Package orchestrator dispatches parsed queries to the capability
// handlers. Registration order is the only dispatch priority: the first
// registered handler whose CanHandle accepts the parse wins, and the
// fallback handler registered last guarantees every query produces a
// well-formed result.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	commonerrors "campaign-query/internal/common/errors"
	"campaign-query/internal/common/logger"
	"campaign-query/internal/common/metrics"
	"campaign-query/internal/common/observability"
	"campaign-query/internal/enrichment"
	"campaign-query/internal/query"
	"campaign-query/internal/query/parser"
)

// Orchestrator owns the handler registry and the parse-dispatch-respond
// pipeline. It is safe for concurrent use once registration is complete.
type Orchestrator struct {
	parser   *parser.Parser
	handlers []query.Handler
	scorer   enrichment.Scorer
	obs      *observability.Observability
	timeout  time.Duration
	logger   logger.Logger
}

// Option customizes an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithEnrichment attaches a relevance scorer. Scoring is telemetry only:
// a score never changes which handler runs or what it returns.
func WithEnrichment(s enrichment.Scorer) Option {
	return func(o *Orchestrator) { o.scorer = s }
}

// WithObservability attaches OTel recording alongside the Prometheus
// collectors.
func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

// WithHandlerTimeout bounds each handler invocation. Zero disables the
// per-handler deadline.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func New(p *parser.Parser, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		parser: p,
		logger: log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register appends a handler to the registry. Order matters: earlier
// handlers take precedence for cross-cutting intents.
func (o *Orchestrator) Register(h query.Handler) {
	o.handlers = append(o.handlers, h)
	o.logger.Debug("handler registered", map[string]interface{}{
		"handler": h.Name(),
		"intents": len(h.OwnedIntents()),
	})
}

// Handlers returns the registry in registration order.
func (o *Orchestrator) Handlers() []query.Handler {
	return o.handlers
}

// CanHandleQuery reports whether any registered handler would accept the
// query, without running it.
func (o *Orchestrator) CanHandleQuery(text string) bool {
	parsed := o.parser.Parse(text)
	for _, h := range o.handlers {
		if h.CanHandle(parsed) {
			return true
		}
	}
	return false
}

// ProcessQuery runs the full pipeline for one query text. It always
// returns a non-nil result with HandlerName, MatchedIntent, Confidence,
// and ProcessingTimeMs populated.
func (o *Orchestrator) ProcessQuery(ctx context.Context, text string) *query.HandlerResult {
	start := time.Now()
	parsed := o.parser.Parse(text)

	handler := o.selectHandler(parsed)
	if handler == nil {
		// Only possible with an empty or misconfigured registry.
		o.logger.Error("no handler accepted query", map[string]interface{}{
			"intent": string(parsed.Intent),
		})
		result := o.unroutable(parsed)
		o.finish(ctx, result, parsed, "none", start)
		return result
	}

	o.logger.Info("dispatching query", map[string]interface{}{
		"handler":    handler.Name(),
		"intent":     string(parsed.Intent),
		"confidence": parsed.Confidence,
	})

	result := o.invoke(ctx, handler, parsed)
	o.enrich(ctx, result, parsed)
	o.finish(ctx, result, parsed, handler.Name(), start)
	return result
}

func (o *Orchestrator) selectHandler(parsed *query.ParsedQuery) query.Handler {
	for _, h := range o.handlers {
		if h.CanHandle(parsed) {
			return h
		}
	}
	return nil
}

// invoke runs one handler under the configured deadline, converting
// panics into a well-formed failure envelope.
func (o *Orchestrator) invoke(ctx context.Context, handler query.Handler, parsed *query.ParsedQuery) (result *query.HandlerResult) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("handler panicked", map[string]interface{}{
				"handler": handler.Name(),
				"panic":   fmt.Sprintf("%v", r),
			})
			result = &query.HandlerResult{
				Success:  false,
				Response: "Something went wrong while answering that. Please try again.",
				SuggestedActions: []query.SuggestedAction{
					{ID: "retry", Label: "Try again", Action: "retry-operation"},
				},
				Metadata: query.ResultMetadata{
					HandlerName: handler.Name(),
					ErrorCode:   string(commonerrors.ErrCodeInternal),
				},
			}
		}
	}()

	result = handler.Handle(ctx, parsed)
	if result == nil {
		result = &query.HandlerResult{
			Success:  false,
			Response: "Something went wrong while answering that. Please try again.",
			Metadata: query.ResultMetadata{
				HandlerName: handler.Name(),
				ErrorCode:   string(commonerrors.ErrCodeInternal),
			},
		}
	}
	return result
}

// enrich asks the relevance scorer for a score and records it in
// metadata. Failures are logged and swallowed.
func (o *Orchestrator) enrich(ctx context.Context, result *query.HandlerResult, parsed *query.ParsedQuery) {
	if o.scorer == nil {
		return
	}
	jurisdiction := ""
	if len(parsed.Entities.Jurisdictions) > 0 {
		jurisdiction = parsed.Entities.Jurisdictions[0]
	}
	score, err := o.scorer.Score(ctx, parsed.OriginalQuery, string(parsed.Intent), jurisdiction)
	if err != nil {
		o.logger.Warn("relevance scoring failed", map[string]interface{}{"error": err.Error()})
		return
	}
	result.Metadata.Relevance = &score
}

// finish stamps the envelope invariants and records telemetry.
func (o *Orchestrator) finish(ctx context.Context, result *query.HandlerResult, parsed *query.ParsedQuery, handlerName string, start time.Time) {
	elapsed := time.Since(start)

	if result.Metadata.HandlerName == "" {
		result.Metadata.HandlerName = handlerName
	}
	result.Metadata.MatchedIntent = parsed.Intent
	result.Metadata.Confidence = parsed.Confidence
	result.Metadata.ProcessingTimeMs = elapsed.Milliseconds()
	if result.MapCommands == nil {
		result.MapCommands = []query.MapCommand{}
	}
	if result.SuggestedActions == nil {
		result.SuggestedActions = []query.SuggestedAction{}
	}

	metrics.QueriesProcessed.WithLabelValues(result.Metadata.HandlerName, string(parsed.Intent)).Inc()
	metrics.QueryDuration.WithLabelValues(result.Metadata.HandlerName).Observe(elapsed.Seconds())
	if !result.Success {
		code := result.Metadata.ErrorCode
		if code == "" {
			code = "none"
		}
		metrics.QueriesFailed.WithLabelValues(result.Metadata.HandlerName, code).Inc()
	}
	if o.obs != nil {
		o.obs.RecordQueryProcessed(ctx, result.Metadata.HandlerName, result.Success)
		o.obs.RecordQueryDuration(ctx, result.Metadata.HandlerName, elapsed)
	}
}

func (o *Orchestrator) unroutable(parsed *query.ParsedQuery) *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "I couldn't route that question to any capability. Please try rephrasing.",
		Metadata: query.ResultMetadata{
			HandlerName: "none",
			ErrorCode:   string(commonerrors.ErrCodeInternal),
		},
	}
}
